package data

import (
	"context"
	"sync"

	"moviecatalog/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
)

// memoryMovieRepo keeps the catalog in a map keyed by movie ID. A single
// RWMutex serializes access so concurrent transports stay safe; an order
// slice preserves insertion order for FindAll. Nothing survives a restart.
type memoryMovieRepo struct {
	mu     sync.RWMutex
	movies map[string]*biz.Movie
	order  []string
	log    *log.Helper
}

// NewMemoryMovieRepo creates the in-memory movie repository.
func NewMemoryMovieRepo(logger log.Logger) biz.MovieRepo {
	return &memoryMovieRepo{
		movies: make(map[string]*biz.Movie),
		log:    log.NewHelper(logger),
	}
}

// NewMovieRepo selects the repository adapter backing the Data instance.
func NewMovieRepo(data *Data, logger log.Logger) biz.MovieRepo {
	if data.db == nil {
		return NewMemoryMovieRepo(logger)
	}
	return newGormMovieRepo(data, logger)
}

func (r *memoryMovieRepo) Save(_ context.Context, movie *biz.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.movies[movie.ID]; !ok {
		r.order = append(r.order, movie.ID)
	}
	r.movies[movie.ID] = cloneMovie(movie)
	return nil
}

func (r *memoryMovieRepo) FindByID(_ context.Context, id string) (*biz.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	movie, ok := r.movies[id]
	if !ok {
		return nil, &biz.NotFoundError{ID: id}
	}
	return cloneMovie(movie), nil
}

func (r *memoryMovieRepo) FindAll(_ context.Context) ([]*biz.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*biz.Movie, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneMovie(r.movies[id]))
	}
	return out, nil
}

func (r *memoryMovieRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.movies[id]; !ok {
		return &biz.NotFoundError{ID: id}
	}
	delete(r.movies, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryMovieRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.movies), nil
}

// cloneMovie copies a movie so the store and its callers never share state.
func cloneMovie(m *biz.Movie) *biz.Movie {
	out := *m
	if m.Rating != nil {
		r := *m.Rating
		out.Rating = &r
	}
	out.Tags = append([]string(nil), m.Tags...)
	return &out
}
