package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moviecatalog/internal/biz"

	json "github.com/goccy/go-json"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// movieCacheTTL bounds staleness of the by-ID read cache.
const movieCacheTTL = 15 * time.Minute

// gormMovieRepo implements biz.MovieRepo on postgres with an optional redis
// read-through cache for by-ID lookups, invalidated on every write.
type gormMovieRepo struct {
	data *Data
	log  *log.Helper
}

func newGormMovieRepo(data *Data, logger log.Logger) biz.MovieRepo {
	return &gormMovieRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *gormMovieRepo) Save(ctx context.Context, movie *biz.Movie) error {
	row := bizToModel(movie)

	err := r.data.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "year", "description", "rating", "tags", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to save movie: %w", err)
	}

	r.invalidate(ctx, movie.ID)
	return nil
}

func (r *gormMovieRepo) FindByID(ctx context.Context, id string) (*biz.Movie, error) {
	if r.data.rdb != nil {
		cached, err := r.data.rdb.Get(ctx, cacheKey(id)).Result()
		if err == nil {
			var movie biz.Movie
			if err := json.Unmarshal([]byte(cached), &movie); err == nil {
				r.log.Debugf("cache hit for movie: %s", id)
				return &movie, nil
			}
		}
	}

	var row Movie
	if err := r.data.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &biz.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to load movie: %w", err)
	}
	movie := modelToBiz(&row)

	if r.data.rdb != nil {
		if data, err := json.Marshal(movie); err == nil {
			r.data.rdb.Set(ctx, cacheKey(id), data, movieCacheTTL)
		}
	}
	return movie, nil
}

func (r *gormMovieRepo) FindAll(ctx context.Context) ([]*biz.Movie, error) {
	var rows []Movie
	if err := r.data.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	out := make([]*biz.Movie, 0, len(rows))
	for i := range rows {
		out = append(out, modelToBiz(&rows[i]))
	}
	return out, nil
}

func (r *gormMovieRepo) Delete(ctx context.Context, id string) error {
	res := r.data.db.WithContext(ctx).Where("id = ?", id).Delete(&Movie{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete movie: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &biz.NotFoundError{ID: id}
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *gormMovieRepo) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.data.db.WithContext(ctx).Model(&Movie{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return int(n), nil
}

func (r *gormMovieRepo) invalidate(ctx context.Context, id string) {
	if r.data.rdb != nil {
		r.data.rdb.Del(ctx, cacheKey(id))
	}
}

func cacheKey(id string) string {
	return "movie:" + id
}

func bizToModel(m *biz.Movie) *Movie {
	return &Movie{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year,
		Description: m.Description,
		Rating:      m.Rating,
		Tags:        m.Tags,
	}
}

func modelToBiz(row *Movie) *biz.Movie {
	return &biz.Movie{
		ID:          row.ID,
		Title:       row.Title,
		Year:        row.Year,
		Description: row.Description,
		Rating:      row.Rating,
		Tags:        row.Tags,
	}
}
