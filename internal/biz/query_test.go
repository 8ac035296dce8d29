package biz_test

import (
	"context"
	"testing"

	"moviecatalog/internal/biz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, catalog *biz.CatalogUseCase, inputs ...biz.MovieInput) []*biz.Movie {
	t.Helper()
	out := make([]*biz.Movie, 0, len(inputs))
	for _, in := range inputs {
		movie, err := catalog.AddMovie(context.Background(), in)
		require.NoError(t, err)
		out = append(out, movie)
	}
	return out
}

func titles(movies []*biz.Movie) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Title)
	}
	return out
}

func TestListMoviesNoFilterReturnsAllInInsertionOrder(t *testing.T) {
	catalog, query := newTestUseCases(t)
	seedCatalog(t, catalog,
		biz.MovieInput{Title: "C", Year: 2003},
		biz.MovieInput{Title: "A", Year: 2001},
		biz.MovieInput{Title: "B", Year: 2002},
	)

	movies, err := query.ListMovies(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, titles(movies))
}

func TestListMoviesByTags(t *testing.T) {
	catalog, query := newTestUseCases(t)
	seedCatalog(t, catalog,
		biz.MovieInput{Title: "The Matrix", Year: 1999, Tags: []string{"sci-fi", "action"}},
		biz.MovieInput{Title: "Heat", Year: 1995, Tags: []string{"action"}},
		biz.MovieInput{Title: "Solaris", Year: 1972, Tags: []string{"sci-fi"}},
	)

	movies, err := query.ListMovies(context.Background(), &biz.MovieFilter{Tags: []string{"sci-fi"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"The Matrix", "Solaris"}, titles(movies))

	// all listed tags must be present
	movies, err = query.ListMovies(context.Background(), &biz.MovieFilter{Tags: []string{"sci-fi", "action"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"The Matrix"}, titles(movies))
}

func TestListMoviesMinRatingExcludesUnrated(t *testing.T) {
	catalog, query := newTestUseCases(t)
	seedCatalog(t, catalog,
		biz.MovieInput{Title: "Rated High", Year: 2000, Rating: ratingOf(9.0)},
		biz.MovieInput{Title: "Rated Low", Year: 2000, Rating: ratingOf(6.0)},
		biz.MovieInput{Title: "Unrated", Year: 2000},
	)

	min := 8.0
	movies, err := query.ListMovies(context.Background(), &biz.MovieFilter{MinRating: &min})
	require.NoError(t, err)
	assert.Equal(t, []string{"Rated High"}, titles(movies))
}

func TestListMoviesYearBounds(t *testing.T) {
	catalog, query := newTestUseCases(t)
	seedCatalog(t, catalog,
		biz.MovieInput{Title: "Old", Year: 1950},
		biz.MovieInput{Title: "Mid", Year: 1999},
		biz.MovieInput{Title: "New", Year: 2020},
	)

	from, to := 1990, 2010
	movies, err := query.ListMovies(context.Background(), &biz.MovieFilter{YearFrom: &from, YearTo: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mid"}, titles(movies))

	year := 2020
	movies, err = query.ListMovies(context.Background(), &biz.MovieFilter{Year: &year})
	require.NoError(t, err)
	assert.Equal(t, []string{"New"}, titles(movies))
}

func TestListMoviesInvalidFilter(t *testing.T) {
	_, query := newTestUseCases(t)
	ctx := context.Background()

	var ferr *biz.InvalidFilterError

	bad := 10.5
	_, err := query.ListMovies(ctx, &biz.MovieFilter{MinRating: &bad})
	require.ErrorAs(t, err, &ferr)

	neg := -1.0
	_, err = query.ListMovies(ctx, &biz.MovieFilter{MaxRating: &neg})
	require.ErrorAs(t, err, &ferr)

	min, max := 8.0, 6.0
	_, err = query.ListMovies(ctx, &biz.MovieFilter{MinRating: &min, MaxRating: &max})
	require.ErrorAs(t, err, &ferr)

	from, to := 2010, 2000
	_, err = query.ListMovies(ctx, &biz.MovieFilter{YearFrom: &from, YearTo: &to})
	require.ErrorAs(t, err, &ferr)
}

func TestSearchByTitleCaseInsensitive(t *testing.T) {
	catalog, query := newTestUseCases(t)
	seedCatalog(t, catalog,
		biz.MovieInput{Title: "The Matrix", Year: 1999},
		biz.MovieInput{Title: "The Matrix Reloaded", Year: 2003},
		biz.MovieInput{Title: "Inception", Year: 2010},
	)

	movies, err := query.SearchByTitle(context.Background(), "matrix")
	require.NoError(t, err)
	assert.Equal(t, []string{"The Matrix", "The Matrix Reloaded"}, titles(movies))

	movies, err = query.SearchByTitle(context.Background(), "nothing here")
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestListAndStatisticsScenario(t *testing.T) {
	catalog, query := newTestUseCases(t)
	ctx := context.Background()
	seedCatalog(t, catalog,
		biz.MovieInput{Title: "The Matrix", Year: 1999, Description: "Sci-fi classic", Rating: ratingOf(9.0), Tags: []string{"sci-fi", "action"}},
		biz.MovieInput{Title: "Inception", Year: 2010, Description: "Dreams within dreams", Rating: ratingOf(8.8), Tags: []string{"sci-fi", "thriller"}},
	)

	min := 8.5
	movies, err := query.ListMovies(ctx, &biz.MovieFilter{Tags: []string{"sci-fi"}, MinRating: &min})
	require.NoError(t, err)
	assert.Equal(t, []string{"The Matrix", "Inception"}, titles(movies))

	stats, err := query.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 2, stats.RatedCount)
	require.NotNil(t, stats.AverageRating)
	assert.Equal(t, 8.9, *stats.AverageRating)
}

func TestStatisticsEmptyCatalog(t *testing.T) {
	_, query := newTestUseCases(t)

	stats, err := query.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, 0, stats.RatedCount)
	assert.Nil(t, stats.AverageRating)
	assert.Empty(t, stats.TopTags)
	assert.Empty(t, stats.RatingHistogram)
	assert.Nil(t, stats.YearMin)
	assert.Nil(t, stats.YearMax)
}

func TestStatisticsAverageIgnoresUnrated(t *testing.T) {
	catalog, query := newTestUseCases(t)
	seedCatalog(t, catalog,
		biz.MovieInput{Title: "A", Year: 2000, Rating: ratingOf(6.0)},
		biz.MovieInput{Title: "B", Year: 2000, Rating: ratingOf(8.0)},
		biz.MovieInput{Title: "C", Year: 2000},
	)

	stats, err := query.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 2, stats.RatedCount)
	require.NotNil(t, stats.AverageRating)
	assert.Equal(t, 7.0, *stats.AverageRating)
}

func TestStatisticsTopTagsRankingAndTies(t *testing.T) {
	catalog, query := newTestUseCases(t)
	seedCatalog(t, catalog,
		biz.MovieInput{Title: "A", Year: 2000, Tags: []string{"drama", "noir"}},
		biz.MovieInput{Title: "B", Year: 2000, Tags: []string{"drama", "action"}},
		biz.MovieInput{Title: "C", Year: 2000, Tags: []string{"noir"}},
		biz.MovieInput{Title: "D", Year: 2000, Tags: []string{"action"}},
	)

	stats, err := query.Statistics(context.Background())
	require.NoError(t, err)
	// drama/noir/action all tie-break lexically within equal counts
	assert.Equal(t, []biz.TagCount{
		{Tag: "action", Count: 2},
		{Tag: "drama", Count: 2},
		{Tag: "noir", Count: 2},
	}, stats.TopTags)
}

func TestStatisticsTopTagsCapped(t *testing.T) {
	catalog, query := newTestUseCases(t)
	seedCatalog(t, catalog, biz.MovieInput{
		Title: "A", Year: 2000,
		Tags: []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7"},
	})

	stats, err := query.Statistics(context.Background())
	require.NoError(t, err)
	assert.Len(t, stats.TopTags, 5)
}

func TestStatisticsHistogramAndYearRange(t *testing.T) {
	catalog, query := newTestUseCases(t)
	seedCatalog(t, catalog,
		biz.MovieInput{Title: "A", Year: 1972, Rating: ratingOf(8.6)},
		biz.MovieInput{Title: "B", Year: 1999, Rating: ratingOf(9.4)},
		biz.MovieInput{Title: "C", Year: 2010, Rating: ratingOf(3.2)},
		biz.MovieInput{Title: "D", Year: 2020},
	)

	stats, err := query.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int]int{9: 2, 3: 1}, stats.RatingHistogram)
	require.NotNil(t, stats.YearMin)
	require.NotNil(t, stats.YearMax)
	assert.Equal(t, 1972, *stats.YearMin)
	assert.Equal(t, 2020, *stats.YearMax)
}
