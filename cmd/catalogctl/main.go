package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"moviecatalog/internal/biz"
	"moviecatalog/internal/data"

	json "github.com/goccy/go-json"

	"github.com/go-kratos/kratos/v2/log"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	if len(args) == 0 || isHelp(args[0]) {
		printUsage(out)
		return 0
	}

	a := newCLI(out, errOut)
	switch args[0] {
	case "add":
		return a.addCmd(args[1:])
	case "list":
		return a.listCmd(args[1:])
	case "search":
		return a.searchCmd(args[1:])
	case "get":
		return a.getCmd(args[1:])
	case "rate":
		return a.rateCmd(args[1:])
	case "tag":
		return a.tagCmd(args[1:])
	case "untag":
		return a.untagCmd(args[1:])
	case "delete":
		return a.deleteCmd(args[1:])
	case "stats":
		return a.statsCmd(args[1:])
	case "demo":
		return a.demoCmd(args[1:])
	default:
		fmt.Fprintf(errOut, "unknown command %q\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func isHelp(s string) bool {
	return s == "help" || s == "-h" || s == "--help"
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `catalogctl - personal movie catalog

Usage:
  catalogctl <command> [flags] [args]

Commands:
  add     [-rating R] [-tags a,b] TITLE YEAR [DESCRIPTION]   add a movie
  list    [-title S] [-year Y] [-year-from Y] [-year-to Y]
          [-min-rating R] [-max-rating R] [-tags a,b] [-json] list movies
  search  QUERY                                              search by title
  get     ID                                                 show one movie
  rate    ID RATING                                          set a rating
  tag     ID TAG                                             add a tag
  untag   ID TAG                                             remove a tag
  delete  ID                                                 delete a movie
  stats   [-json]                                            catalog statistics
  demo                                                       seeded walkthrough

The catalog lives in process memory: each invocation starts empty, so the
single-shot commands are mostly useful scripted together or via demo.
`)
}

// cli drives the catalog use cases against an in-memory repository that
// lives for the duration of one invocation.
type cli struct {
	out     io.Writer
	errOut  io.Writer
	catalog *biz.CatalogUseCase
	query   *biz.QueryUseCase
}

func newCLI(out, errOut io.Writer) *cli {
	logger := log.NewFilter(log.NewStdLogger(errOut), log.FilterLevel(log.LevelWarn))
	repo := data.NewMemoryMovieRepo(logger)
	publisher := data.NopEventPublisher()
	return &cli{
		out:     out,
		errOut:  errOut,
		catalog: biz.NewCatalogUseCase(repo, publisher, logger),
		query:   biz.NewQueryUseCase(repo, logger),
	}
}

func (a *cli) addCmd(args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	rating := fs.String("rating", "", "rating (0.0-10.0)")
	tags := fs.String("tags", "", "comma-separated tags")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) < 2 || len(rest) > 3 {
		fmt.Fprintln(a.errOut, "usage: catalogctl add [-rating R] [-tags a,b] TITLE YEAR [DESCRIPTION]")
		return 2
	}

	year, err := strconv.Atoi(rest[1])
	if err != nil {
		fmt.Fprintf(a.errOut, "invalid year %q\n", rest[1])
		return 2
	}
	in := biz.MovieInput{Title: rest[0], Year: year, Tags: splitTags(*tags)}
	if len(rest) == 3 {
		in.Description = rest[2]
	}
	if *rating != "" {
		r, err := strconv.ParseFloat(*rating, 64)
		if err != nil {
			fmt.Fprintf(a.errOut, "invalid rating %q\n", *rating)
			return 2
		}
		in.Rating = &r
	}

	movie, err := a.catalog.AddMovie(context.Background(), in)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "added %s\n", movie.ID)
	a.printMovie(movie)
	return 0
}

func (a *cli) listCmd(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	title := fs.String("title", "", "title substring filter")
	year := fs.String("year", "", "exact year filter")
	yearFrom := fs.String("year-from", "", "lower year bound")
	yearTo := fs.String("year-to", "", "upper year bound")
	minRating := fs.String("min-rating", "", "minimum rating filter")
	maxRating := fs.String("max-rating", "", "maximum rating filter")
	tags := fs.String("tags", "", "comma-separated tags, all required")
	asJSON := fs.Bool("json", false, "JSON output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	filter := &biz.MovieFilter{Tags: splitTags(*tags)}
	if *title != "" {
		filter.Title = title
	}
	var code int
	if filter.Year, code = a.intFlag(*year, "year"); code != 0 {
		return code
	}
	if filter.YearFrom, code = a.intFlag(*yearFrom, "year-from"); code != 0 {
		return code
	}
	if filter.YearTo, code = a.intFlag(*yearTo, "year-to"); code != 0 {
		return code
	}
	if filter.MinRating, code = a.floatFlag(*minRating, "min-rating"); code != 0 {
		return code
	}
	if filter.MaxRating, code = a.floatFlag(*maxRating, "max-rating"); code != 0 {
		return code
	}

	movies, err := a.query.ListMovies(context.Background(), filter)
	if err != nil {
		return a.fail(err)
	}
	return a.printMovies(movies, *asJSON)
}

func (a *cli) searchCmd(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(a.errOut, "usage: catalogctl search QUERY")
		return 2
	}
	movies, err := a.query.SearchByTitle(context.Background(), args[0])
	if err != nil {
		return a.fail(err)
	}
	return a.printMovies(movies, false)
}

func (a *cli) getCmd(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(a.errOut, "usage: catalogctl get ID")
		return 2
	}
	movie, err := a.query.GetMovie(context.Background(), args[0])
	if err != nil {
		return a.fail(err)
	}
	a.printMovie(movie)
	return 0
}

func (a *cli) rateCmd(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(a.errOut, "usage: catalogctl rate ID RATING")
		return 2
	}
	rating, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fmt.Fprintf(a.errOut, "invalid rating %q\n", args[1])
		return 2
	}
	movie, err := a.catalog.RateMovie(context.Background(), args[0], rating)
	if err != nil {
		return a.fail(err)
	}
	a.printMovie(movie)
	return 0
}

func (a *cli) tagCmd(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(a.errOut, "usage: catalogctl tag ID TAG")
		return 2
	}
	movie, err := a.catalog.TagMovie(context.Background(), args[0], args[1])
	if err != nil {
		return a.fail(err)
	}
	a.printMovie(movie)
	return 0
}

func (a *cli) untagCmd(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(a.errOut, "usage: catalogctl untag ID TAG")
		return 2
	}
	movie, err := a.catalog.UntagMovie(context.Background(), args[0], args[1])
	if err != nil {
		return a.fail(err)
	}
	a.printMovie(movie)
	return 0
}

func (a *cli) deleteCmd(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(a.errOut, "usage: catalogctl delete ID")
		return 2
	}
	if err := a.catalog.DeleteMovie(context.Background(), args[0]); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "deleted %s\n", args[0])
	return 0
}

func (a *cli) statsCmd(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	asJSON := fs.Bool("json", false, "JSON output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	stats, err := a.query.Statistics(context.Background())
	if err != nil {
		return a.fail(err)
	}
	if *asJSON {
		return a.printJSON(statsJSON(stats))
	}
	a.printStats(stats)
	return 0
}

// demoCmd seeds a small catalog and walks the main operations, mirroring
// how the service behaves end to end without needing a running server.
func (a *cli) demoCmd([]string) int {
	ctx := context.Background()
	seed := []biz.MovieInput{
		{Title: "The Matrix", Year: 1999, Description: "Sci-fi classic", Rating: ptr(9.0), Tags: []string{"sci-fi", "action"}},
		{Title: "Inception", Year: 2010, Description: "Dreams within dreams", Rating: ptr(8.8), Tags: []string{"sci-fi", "thriller"}},
		{Title: "Paprika", Year: 2006, Description: "Dream detective anime", Tags: []string{"anime", "sci-fi"}},
	}
	for _, in := range seed {
		if _, err := a.catalog.AddMovie(ctx, in); err != nil {
			return a.fail(err)
		}
	}

	fmt.Fprintln(a.out, "== all movies ==")
	movies, err := a.query.ListMovies(ctx, nil)
	if err != nil {
		return a.fail(err)
	}
	a.printMovies(movies, false)

	fmt.Fprintln(a.out, "== sci-fi rated 8.5+ ==")
	minRating := 8.5
	filtered, err := a.query.ListMovies(ctx, &biz.MovieFilter{Tags: []string{"sci-fi"}, MinRating: &minRating})
	if err != nil {
		return a.fail(err)
	}
	a.printMovies(filtered, false)

	fmt.Fprintln(a.out, "== search \"matrix\" ==")
	found, err := a.query.SearchByTitle(ctx, "matrix")
	if err != nil {
		return a.fail(err)
	}
	a.printMovies(found, false)

	fmt.Fprintln(a.out, "== statistics ==")
	stats, err := a.query.Statistics(ctx)
	if err != nil {
		return a.fail(err)
	}
	a.printStats(stats)
	return 0
}

func (a *cli) fail(err error) int {
	fmt.Fprintf(a.errOut, "error: %v\n", err)
	return 1
}

func (a *cli) intFlag(s, name string) (*int, int) {
	if s == "" {
		return nil, 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Fprintf(a.errOut, "invalid %s %q\n", name, s)
		return nil, 2
	}
	return &n, 0
}

func (a *cli) floatFlag(s, name string) (*float64, int) {
	if s == "" {
		return nil, 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fmt.Fprintf(a.errOut, "invalid %s %q\n", name, s)
		return nil, 2
	}
	return &f, 0
}

func (a *cli) printMovies(movies []*biz.Movie, asJSON bool) int {
	if asJSON {
		items := make([]movieJSON, 0, len(movies))
		for _, m := range movies {
			items = append(items, toMovieJSON(m))
		}
		return a.printJSON(items)
	}
	if len(movies) == 0 {
		fmt.Fprintln(a.out, "no movies")
		return 0
	}
	for _, m := range movies {
		a.printMovie(m)
	}
	return 0
}

func (a *cli) printMovie(m *biz.Movie) {
	rating := "n/a"
	if m.Rating != nil {
		rating = strconv.FormatFloat(*m.Rating, 'f', 1, 64)
	}
	fmt.Fprintf(a.out, "%s (%d) rating=%s tags=%s id=%s\n", m.Title, m.Year, rating, strings.Join(m.Tags, ","), m.ID)
	if m.Description != "" {
		fmt.Fprintf(a.out, "  %s\n", m.Description)
	}
}

func (a *cli) printStats(s *biz.CatalogStats) {
	fmt.Fprintf(a.out, "movies: %d (rated: %d)\n", s.Count, s.RatedCount)
	if s.AverageRating != nil {
		fmt.Fprintf(a.out, "average rating: %.2f\n", *s.AverageRating)
	} else {
		fmt.Fprintln(a.out, "average rating: n/a")
	}
	if len(s.TopTags) > 0 {
		parts := make([]string, 0, len(s.TopTags))
		for _, tc := range s.TopTags {
			parts = append(parts, fmt.Sprintf("%s=%d", tc.Tag, tc.Count))
		}
		fmt.Fprintf(a.out, "top tags: %s\n", strings.Join(parts, ", "))
	}
	if len(s.RatingHistogram) > 0 {
		parts := make([]string, 0, len(s.RatingHistogram))
		for bucket := 0; bucket <= 10; bucket++ {
			if n, ok := s.RatingHistogram[bucket]; ok {
				parts = append(parts, fmt.Sprintf("%d:%d", bucket, n))
			}
		}
		fmt.Fprintf(a.out, "rating histogram: %s\n", strings.Join(parts, " "))
	}
	if s.YearMin != nil && s.YearMax != nil {
		fmt.Fprintf(a.out, "years: %d-%d\n", *s.YearMin, *s.YearMax)
	}
}

func (a *cli) printJSON(v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, string(data))
	return 0
}

type movieJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Rating      *float64 `json:"rating"`
	Tags        []string `json:"tags"`
}

func toMovieJSON(m *biz.Movie) movieJSON {
	return movieJSON{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year,
		Description: m.Description,
		Rating:      m.Rating,
		Tags:        m.Tags,
	}
}

type statsOut struct {
	Count           int            `json:"count"`
	RatedCount      int            `json:"rated_count"`
	AverageRating   *float64       `json:"average_rating"`
	TopTags         []biz.TagCount `json:"top_tags"`
	RatingHistogram map[int]int    `json:"rating_histogram"`
	YearMin         *int           `json:"year_min"`
	YearMax         *int           `json:"year_max"`
}

func statsJSON(s *biz.CatalogStats) statsOut {
	return statsOut{
		Count:           s.Count,
		RatedCount:      s.RatedCount,
		AverageRating:   s.AverageRating,
		TopTags:         s.TopTags,
		RatingHistogram: s.RatingHistogram,
		YearMin:         s.YearMin,
		YearMax:         s.YearMax,
	}
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func ptr(f float64) *float64 { return &f }
