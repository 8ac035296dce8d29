package biz_test

import (
	"context"
	"io"
	"testing"
	"time"

	"moviecatalog/internal/biz"
	"moviecatalog/internal/data"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUseCases(t *testing.T) (*biz.CatalogUseCase, *biz.QueryUseCase) {
	t.Helper()
	logger := log.NewStdLogger(io.Discard)
	repo := data.NewMemoryMovieRepo(logger)
	return biz.NewCatalogUseCase(repo, data.NopEventPublisher(), logger),
		biz.NewQueryUseCase(repo, logger)
}

func ratingOf(r float64) *float64 { return &r }

func TestNewMovieReportsAllInvalidFields(t *testing.T) {
	_, err := biz.NewMovie("id-1", biz.MovieInput{
		Title:  "   ",
		Year:   1200,
		Rating: ratingOf(11.0),
	})
	require.Error(t, err)

	var verr *biz.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := verr.FieldMap()
	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "year")
	assert.Contains(t, fields, "rating")
}

func TestNewMovieBoundaries(t *testing.T) {
	maxYear := time.Now().Year() + 1

	valid := []biz.MovieInput{
		{Title: "A", Year: 1888},
		{Title: "A", Year: maxYear},
		{Title: "A", Year: 2000, Rating: ratingOf(0.0)},
		{Title: "A", Year: 2000, Rating: ratingOf(10.0)},
	}
	for _, in := range valid {
		_, err := biz.NewMovie("id", in)
		assert.NoError(t, err)
	}

	invalid := []biz.MovieInput{
		{Title: "A", Year: 1887},
		{Title: "A", Year: maxYear + 1},
		{Title: "A", Year: 2000, Rating: ratingOf(-0.1)},
		{Title: "A", Year: 2000, Rating: ratingOf(10.1)},
		{Title: "", Year: 2000},
	}
	for _, in := range invalid {
		_, err := biz.NewMovie("id", in)
		var verr *biz.ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

func TestNewMovieNormalizesTags(t *testing.T) {
	movie, err := biz.NewMovie("id", biz.MovieInput{
		Title: "The Matrix",
		Year:  1999,
		Tags:  []string{" Sci-Fi ", "sci-fi", "Action", "", "action"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sci-fi", "action"}, movie.Tags)
}

func TestAddMovieRetrievableByID(t *testing.T) {
	catalog, query := newTestUseCases(t)
	ctx := context.Background()

	movie, err := catalog.AddMovie(ctx, biz.MovieInput{
		Title:       "The Matrix",
		Year:        1999,
		Description: "Sci-fi classic",
		Rating:      ratingOf(9.0),
		Tags:        []string{"sci-fi", "action"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, movie.ID)

	got, err := query.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(movie))
	assert.Equal(t, "The Matrix", got.Title)
	assert.Equal(t, 1999, got.Year)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 9.0, *got.Rating)
	assert.Equal(t, []string{"sci-fi", "action"}, got.Tags)
}

func TestAddMovieTrimsTitle(t *testing.T) {
	catalog, _ := newTestUseCases(t)

	movie, err := catalog.AddMovie(context.Background(), biz.MovieInput{Title: "  Alien  ", Year: 1979})
	require.NoError(t, err)
	assert.Equal(t, "Alien", movie.Title)
}

func TestUpdateMovieNotFound(t *testing.T) {
	catalog, _ := newTestUseCases(t)

	title := "New"
	_, err := catalog.UpdateMovie(context.Background(), "missing", biz.MoviePatch{Title: &title})
	var nferr *biz.NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "missing", nferr.ID)
}

func TestUpdateMoviePartialRetainsOtherFields(t *testing.T) {
	catalog, query := newTestUseCases(t)
	ctx := context.Background()

	movie, err := catalog.AddMovie(ctx, biz.MovieInput{
		Title:       "Inception",
		Year:        2010,
		Description: "Dreams within dreams",
		Rating:      ratingOf(8.8),
		Tags:        []string{"sci-fi", "thriller"},
	})
	require.NoError(t, err)

	newYear := 2011
	updated, err := catalog.UpdateMovie(ctx, movie.ID, biz.MoviePatch{Year: &newYear})
	require.NoError(t, err)
	assert.Equal(t, 2011, updated.Year)
	assert.Equal(t, "Inception", updated.Title)
	assert.Equal(t, "Dreams within dreams", updated.Description)
	require.NotNil(t, updated.Rating)
	assert.Equal(t, 8.8, *updated.Rating)
	assert.Equal(t, []string{"sci-fi", "thriller"}, updated.Tags)

	stored, err := query.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, 2011, stored.Year)
}

func TestUpdateMovieRevalidates(t *testing.T) {
	catalog, _ := newTestUseCases(t)
	ctx := context.Background()

	movie, err := catalog.AddMovie(ctx, biz.MovieInput{Title: "Alien", Year: 1979})
	require.NoError(t, err)

	empty := ""
	_, err = catalog.UpdateMovie(ctx, movie.ID, biz.MoviePatch{Title: &empty})
	var verr *biz.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRateMovie(t *testing.T) {
	catalog, _ := newTestUseCases(t)
	ctx := context.Background()

	movie, err := catalog.AddMovie(ctx, biz.MovieInput{Title: "Alien", Year: 1979})
	require.NoError(t, err)
	require.Nil(t, movie.Rating)

	rated, err := catalog.RateMovie(ctx, movie.ID, 8.5)
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 8.5, *rated.Rating)

	_, err = catalog.RateMovie(ctx, movie.ID, 10.5)
	var verr *biz.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestTagAndUntagMovie(t *testing.T) {
	catalog, _ := newTestUseCases(t)
	ctx := context.Background()

	movie, err := catalog.AddMovie(ctx, biz.MovieInput{Title: "Alien", Year: 1979, Tags: []string{"horror"}})
	require.NoError(t, err)

	tagged, err := catalog.TagMovie(ctx, movie.ID, "Sci-Fi")
	require.NoError(t, err)
	assert.Equal(t, []string{"horror", "sci-fi"}, tagged.Tags)

	// tagging an existing tag is a no-op success
	tagged, err = catalog.TagMovie(ctx, movie.ID, "sci-fi")
	require.NoError(t, err)
	assert.Equal(t, []string{"horror", "sci-fi"}, tagged.Tags)

	untagged, err := catalog.UntagMovie(ctx, movie.ID, "horror")
	require.NoError(t, err)
	assert.Equal(t, []string{"sci-fi"}, untagged.Tags)

	// removing an absent tag is a no-op success
	untagged, err = catalog.UntagMovie(ctx, movie.ID, "western")
	require.NoError(t, err)
	assert.Equal(t, []string{"sci-fi"}, untagged.Tags)
}

func TestDeleteMovieIdempotentFailure(t *testing.T) {
	catalog, query := newTestUseCases(t)
	ctx := context.Background()

	movie, err := catalog.AddMovie(ctx, biz.MovieInput{Title: "Alien", Year: 1979})
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteMovie(ctx, movie.ID))

	var nferr *biz.NotFoundError
	_, err = query.GetMovie(ctx, movie.ID)
	require.ErrorAs(t, err, &nferr)

	err = catalog.DeleteMovie(ctx, movie.ID)
	require.ErrorAs(t, err, &nferr)
}
