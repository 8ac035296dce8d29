package data

import "time"

// Movie represents the movies table. Seq is a monotonic insertion counter
// so FindAll can reproduce insertion order.
type Movie struct {
	ID          string   `gorm:"primaryKey;size:64"`
	Seq         int64    `gorm:"autoIncrement;uniqueIndex"`
	Title       string   `gorm:"not null;size:255;index:idx_movies_title,expression:LOWER(title)"`
	Year        int      `gorm:"not null;index"`
	Description string   `gorm:"type:text"`
	Rating      *float64 `gorm:"type:decimal(3,1);check:rating >= 0.0 AND rating <= 10.0"`
	Tags        []string `gorm:"serializer:json;type:jsonb"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (Movie) TableName() string {
	return "movies"
}
