package biz

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/shopspring/decimal"
)

// topTagsLimit caps the statistics tag ranking.
const topTagsLimit = 5

// QueryUseCase handles read-only catalog operations
type QueryUseCase struct {
	repo MovieRepo
	log  *log.Helper
}

// NewQueryUseCase creates a new QueryUseCase instance
func NewQueryUseCase(repo MovieRepo, logger log.Logger) *QueryUseCase {
	return &QueryUseCase{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// GetMovie retrieves a single movie by its identifier.
func (uc *QueryUseCase) GetMovie(ctx context.Context, id string) (*Movie, error) {
	return uc.repo.FindByID(ctx, id)
}

// ListMovies returns the movies matching every set filter field, preserving
// repository (insertion) order. A nil filter returns the whole catalog.
// Returns *InvalidFilterError for out-of-range or contradictory criteria.
func (uc *QueryUseCase) ListMovies(ctx context.Context, filter *MovieFilter) ([]*Movie, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	movies, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	if filter == nil {
		return movies, nil
	}

	tags := normalizeTags(filter.Tags)
	out := make([]*Movie, 0, len(movies))
	for _, m := range movies {
		if matchesFilter(m, filter, tags) {
			out = append(out, m)
		}
	}
	return out, nil
}

// SearchByTitle returns the movies whose title contains the query,
// case-insensitively, in repository order.
func (uc *QueryUseCase) SearchByTitle(ctx context.Context, query string) ([]*Movie, error) {
	return uc.ListMovies(ctx, &MovieFilter{Title: &query})
}

// Statistics computes the catalog statistics record over the current
// repository snapshot.
func (uc *QueryUseCase) Statistics(ctx context.Context) (*CatalogStats, error) {
	movies, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	count, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog: %w", err)
	}

	stats := &CatalogStats{
		Count:           count,
		RatingHistogram: make(map[int]int),
	}

	ratingSum := decimal.Zero
	tagCounts := make(map[string]int)
	for _, m := range movies {
		if m.Rating != nil {
			stats.RatedCount++
			ratingSum = ratingSum.Add(decimal.NewFromFloat(*m.Rating))
			stats.RatingHistogram[ratingBucket(*m.Rating)]++
		}
		for _, t := range m.Tags {
			tagCounts[t]++
		}
		if stats.YearMin == nil || m.Year < *stats.YearMin {
			y := m.Year
			stats.YearMin = &y
		}
		if stats.YearMax == nil || m.Year > *stats.YearMax {
			y := m.Year
			stats.YearMax = &y
		}
	}

	if stats.RatedCount > 0 {
		avg := ratingSum.Div(decimal.NewFromInt(int64(stats.RatedCount))).Round(2).InexactFloat64()
		stats.AverageRating = &avg
	}
	stats.TopTags = rankTags(tagCounts)
	return stats, nil
}

// ratingBucket maps a rating onto its integer histogram bucket (0..10).
func ratingBucket(rating float64) int {
	b := int(math.Round(rating))
	if b < 0 {
		b = 0
	}
	if b > 10 {
		b = 10
	}
	return b
}

// rankTags orders tags by frequency, breaking ties lexically, and keeps the
// top entries.
func rankTags(counts map[string]int) []TagCount {
	ranked := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		ranked = append(ranked, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Tag < ranked[j].Tag
	})
	if len(ranked) > topTagsLimit {
		ranked = ranked[:topTagsLimit]
	}
	return ranked
}

func validateFilter(f *MovieFilter) error {
	if f == nil {
		return nil
	}
	if f.MinRating != nil && (*f.MinRating < MinRating || *f.MinRating > MaxRating) {
		return &InvalidFilterError{Reason: fmt.Sprintf("min_rating %.1f must be between %.1f and %.1f", *f.MinRating, MinRating, MaxRating)}
	}
	if f.MaxRating != nil && (*f.MaxRating < MinRating || *f.MaxRating > MaxRating) {
		return &InvalidFilterError{Reason: fmt.Sprintf("max_rating %.1f must be between %.1f and %.1f", *f.MaxRating, MinRating, MaxRating)}
	}
	if f.MinRating != nil && f.MaxRating != nil && *f.MinRating > *f.MaxRating {
		return &InvalidFilterError{Reason: fmt.Sprintf("min_rating %.1f exceeds max_rating %.1f", *f.MinRating, *f.MaxRating)}
	}
	if f.YearFrom != nil && f.YearTo != nil && *f.YearFrom > *f.YearTo {
		return &InvalidFilterError{Reason: fmt.Sprintf("year_from %d exceeds year_to %d", *f.YearFrom, *f.YearTo)}
	}
	return nil
}

func matchesFilter(m *Movie, f *MovieFilter, tags []string) bool {
	if f.Title != nil && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(strings.TrimSpace(*f.Title))) {
		return false
	}
	if f.Year != nil && m.Year != *f.Year {
		return false
	}
	if f.YearFrom != nil && m.Year < *f.YearFrom {
		return false
	}
	if f.YearTo != nil && m.Year > *f.YearTo {
		return false
	}
	if f.MinRating != nil && (m.Rating == nil || *m.Rating < *f.MinRating) {
		return false
	}
	if f.MaxRating != nil && (m.Rating == nil || *m.Rating > *f.MaxRating) {
		return false
	}
	for _, t := range tags {
		if !m.HasTag(t) {
			return false
		}
	}
	return true
}
