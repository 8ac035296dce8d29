package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// Movie validation bounds. The lower year bound is the dawn of motion
// pictures; the upper bound allows announced next-year releases.
const (
	MinYear   = 1888
	MinRating = 0.0
	MaxRating = 10.0
)

// MaxYear returns the highest accepted release year.
func MaxYear() int {
	return time.Now().Year() + 1
}

// NewMovie builds a validated Movie from raw input. Every field is checked
// and all failures are reported together in a single *ValidationError; a
// valid input yields a movie with a trimmed title and normalized tags.
func NewMovie(id string, in MovieInput) (*Movie, error) {
	verr := &ValidationError{}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		verr.add("title", "must not be empty")
	}
	if in.Year < MinYear {
		verr.add("year", "%d is before the first motion pictures (%d)", in.Year, MinYear)
	} else if max := MaxYear(); in.Year > max {
		verr.add("year", "%d is too far in the future (max %d)", in.Year, max)
	}
	if in.Rating != nil && (*in.Rating < MinRating || *in.Rating > MaxRating) {
		verr.add("rating", "%.1f must be between %.1f and %.1f", *in.Rating, MinRating, MaxRating)
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	var rating *float64
	if in.Rating != nil {
		r := *in.Rating
		rating = &r
	}
	return &Movie{
		ID:          id,
		Title:       title,
		Year:        in.Year,
		Description: in.Description,
		Rating:      rating,
		Tags:        normalizeTags(in.Tags),
	}, nil
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// normalizeTags trims, lower-cases and deduplicates tags, keeping
// first-occurrence order and dropping empties.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = normalizeTag(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// CatalogUseCase handles catalog mutations
type CatalogUseCase struct {
	repo   MovieRepo
	events EventPublisher
	log    *log.Helper
}

// NewCatalogUseCase creates a new CatalogUseCase instance
func NewCatalogUseCase(repo MovieRepo, events EventPublisher, logger log.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		repo:   repo,
		events: events,
		log:    log.NewHelper(logger),
	}
}

// AddMovie validates the input, assigns a fresh identifier and persists the
// movie. Returns *ValidationError on invalid input.
func (uc *CatalogUseCase) AddMovie(ctx context.Context, in MovieInput) (*Movie, error) {
	// UUID v7: time-ordered, distributed-friendly
	movieID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate movie ID: %w", err)
	}

	movie, err := NewMovie(movieID.String(), in)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Save(ctx, movie); err != nil {
		return nil, fmt.Errorf("failed to save movie: %w", err)
	}

	uc.publish(ctx, EventMovieCreated, movie)
	return movie, nil
}

// UpdateMovie applies a partial patch to an existing movie, re-validating
// the whole entity before persisting. Returns *NotFoundError for unknown
// IDs and *ValidationError when the patched state is invalid.
func (uc *CatalogUseCase) UpdateMovie(ctx context.Context, id string, patch MoviePatch) (*Movie, error) {
	movie, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in := MovieInput{
		Title:       movie.Title,
		Year:        movie.Year,
		Description: movie.Description,
		Rating:      movie.Rating,
		Tags:        movie.Tags,
	}
	if patch.Title != nil {
		in.Title = *patch.Title
	}
	if patch.Year != nil {
		in.Year = *patch.Year
	}
	if patch.Description != nil {
		in.Description = *patch.Description
	}
	if patch.Rating != nil {
		in.Rating = patch.Rating
	}
	if patch.Tags != nil {
		in.Tags = patch.Tags
	}

	updated, err := NewMovie(movie.ID, in)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save movie: %w", err)
	}

	uc.publish(ctx, EventMovieUpdated, updated)
	return updated, nil
}

// RateMovie sets or replaces the rating of an existing movie.
func (uc *CatalogUseCase) RateMovie(ctx context.Context, id string, rating float64) (*Movie, error) {
	return uc.UpdateMovie(ctx, id, MoviePatch{Rating: &rating})
}

// TagMovie adds a tag to an existing movie. Adding a tag the movie already
// carries is a no-op success.
func (uc *CatalogUseCase) TagMovie(ctx context.Context, id, tag string) (*Movie, error) {
	movie, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if movie.HasTag(tag) || normalizeTag(tag) == "" {
		return movie, nil
	}
	tags := append(append([]string{}, movie.Tags...), tag)
	return uc.UpdateMovie(ctx, id, MoviePatch{Tags: tags})
}

// UntagMovie removes a tag from an existing movie. Removing an absent tag
// is a no-op success.
func (uc *CatalogUseCase) UntagMovie(ctx context.Context, id, tag string) (*Movie, error) {
	movie, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !movie.HasTag(tag) {
		return movie, nil
	}
	tag = normalizeTag(tag)
	tags := make([]string, 0, len(movie.Tags))
	for _, t := range movie.Tags {
		if t != tag {
			tags = append(tags, t)
		}
	}
	return uc.UpdateMovie(ctx, id, MoviePatch{Tags: tags})
}

// DeleteMovie removes a movie from the catalog. Returns *NotFoundError for
// unknown IDs, including a second delete of the same ID.
func (uc *CatalogUseCase) DeleteMovie(ctx context.Context, id string) error {
	movie, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	uc.publish(ctx, EventMovieDeleted, movie)
	return nil
}

// publish emits a catalog event. Delivery failure only logs: events are a
// side channel and must never fail the mutation that produced them.
func (uc *CatalogUseCase) publish(ctx context.Context, eventType string, movie *Movie) {
	event := &CatalogEvent{
		Type:    eventType,
		MovieID: movie.ID,
		Title:   movie.Title,
		At:      time.Now().UTC(),
	}
	if err := uc.events.Publish(ctx, event); err != nil {
		uc.log.Warnf("failed to publish %s event for movie '%s': %v", eventType, movie.ID, err)
	}
}
