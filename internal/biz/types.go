package biz

import (
	"context"
	"time"
)

// Movie domain model. Identity is the ID; two movies are the same entity
// when their IDs are equal. Rating is nil for unrated movies. Tags are
// normalized (trimmed, lower-cased, deduplicated) in first-occurrence order.
type Movie struct {
	ID          string
	Title       string
	Year        int
	Description string
	Rating      *float64
	Tags        []string
}

// Equal reports identifier-based entity equality.
func (m *Movie) Equal(other *Movie) bool {
	return other != nil && m.ID == other.ID
}

// HasTag reports whether the movie carries the given tag. The tag is
// normalized before comparison.
func (m *Movie) HasTag(tag string) bool {
	tag = normalizeTag(tag)
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MovieInput carries raw field values for creating a movie.
type MovieInput struct {
	Title       string
	Year        int
	Description string
	Rating      *float64
	Tags        []string
}

// MoviePatch carries partial field values for updating a movie. Nil fields
// are left unchanged; a non-nil Tags replaces the whole tag set.
type MoviePatch struct {
	Title       *string
	Year        *int
	Description *string
	Rating      *float64
	Tags        []string
}

// MovieFilter holds list criteria. A movie must match every set field.
// Rating bounds are inclusive and exclude unrated movies when set.
type MovieFilter struct {
	Title     *string
	Year      *int
	YearFrom  *int
	YearTo    *int
	MinRating *float64
	MaxRating *float64
	Tags      []string
}

// TagCount is one entry of the top-tag ranking.
type TagCount struct {
	Tag   string
	Count int
}

// CatalogStats is the fixed-shape statistics record. AverageRating is nil
// when no movie is rated; YearMin/YearMax are nil for an empty catalog.
type CatalogStats struct {
	Count           int
	RatedCount      int
	AverageRating   *float64
	TopTags         []TagCount
	RatingHistogram map[int]int
	YearMin         *int
	YearMax         *int
}

// CatalogEvent is published after every successful catalog mutation.
type CatalogEvent struct {
	Type    string
	MovieID string
	Title   string
	At      time.Time
}

// Catalog event types.
const (
	EventMovieCreated = "movie.created"
	EventMovieUpdated = "movie.updated"
	EventMovieDeleted = "movie.deleted"
)

// MovieRepo defines the repository port for movies. Save overwrites on an
// existing ID and inserts otherwise; FindAll preserves insertion order;
// FindByID and Delete return *NotFoundError for unknown IDs.
type MovieRepo interface {
	Save(ctx context.Context, movie *Movie) error
	FindByID(ctx context.Context, id string) (*Movie, error)
	FindAll(ctx context.Context) ([]*Movie, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// EventPublisher defines the port for emitting catalog events. Implementations
// must not block catalog operations on delivery.
type EventPublisher interface {
	Publish(ctx context.Context, event *CatalogEvent) error
}
