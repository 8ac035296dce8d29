package service

import (
	"context"
	stderrors "errors"
	"strings"

	"moviecatalog/internal/biz"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/google/wire"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewCatalogService)

// CatalogService translates transport requests into catalog use-case calls
// and domain errors into transport error codes.
type CatalogService struct {
	catalogUC *biz.CatalogUseCase
	queryUC   *biz.QueryUseCase
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(catalogUC *biz.CatalogUseCase, queryUC *biz.QueryUseCase) *CatalogService {
	return &CatalogService{
		catalogUC: catalogUC,
		queryUC:   queryUC,
	}
}

// CreateMovieRequest is the POST /movies payload.
type CreateMovieRequest struct {
	Title       string   `json:"title"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Rating      *float64 `json:"rating"`
	Tags        []string `json:"tags"`
}

// UpdateMovieRequest is the PUT /movies/{id} payload. Absent fields are
// left unchanged; tags, when present, replace the whole set.
type UpdateMovieRequest struct {
	Title       *string  `json:"title"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Rating      *float64 `json:"rating"`
	Tags        []string `json:"tags"`
}

// RateMovieRequest is the PUT /movies/{id}/rating payload.
type RateMovieRequest struct {
	Rating float64 `json:"rating"`
}

// TagRequest is the POST /movies/{id}/tags payload.
type TagRequest struct {
	Tag string `json:"tag"`
}

// ListMoviesRequest carries the GET /movies query parameters. Tags is a
// comma-separated list.
type ListMoviesRequest struct {
	Title     *string  `json:"title"`
	Year      *int     `json:"year"`
	YearFrom  *int     `json:"year_from"`
	YearTo    *int     `json:"year_to"`
	MinRating *float64 `json:"min_rating"`
	MaxRating *float64 `json:"max_rating"`
	Tags      string   `json:"tags"`
}

// MovieReply is the transport representation of a movie.
type MovieReply struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Rating      *float64 `json:"rating"`
	Tags        []string `json:"tags"`
}

// MovieListReply wraps a movie listing.
type MovieListReply struct {
	Items []*MovieReply `json:"items"`
}

// TagCountReply is one entry of the top-tag ranking.
type TagCountReply struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// StatisticsReply is the GET /statistics payload. AverageRating is null
// when no movie is rated.
type StatisticsReply struct {
	Count           int             `json:"count"`
	RatedCount      int             `json:"rated_count"`
	AverageRating   *float64        `json:"average_rating"`
	TopTags         []TagCountReply `json:"top_tags"`
	RatingHistogram map[int]int     `json:"rating_histogram"`
	YearMin         *int            `json:"year_min"`
	YearMax         *int            `json:"year_max"`
}

// HealthReply is the GET /healthz payload.
type HealthReply struct {
	Status string `json:"status"`
}

// CreateMovie implements movie creation
func (s *CatalogService) CreateMovie(ctx context.Context, req *CreateMovieRequest) (*MovieReply, error) {
	movie, err := s.catalogUC.AddMovie(ctx, biz.MovieInput{
		Title:       req.Title,
		Year:        req.Year,
		Description: req.Description,
		Rating:      req.Rating,
		Tags:        req.Tags,
	})
	if err != nil {
		return nil, toAPIError(err)
	}
	return movieToReply(movie), nil
}

// GetMovie implements single-movie retrieval
func (s *CatalogService) GetMovie(ctx context.Context, id string) (*MovieReply, error) {
	movie, err := s.queryUC.GetMovie(ctx, id)
	if err != nil {
		return nil, toAPIError(err)
	}
	return movieToReply(movie), nil
}

// ListMovies implements filtered movie listing
func (s *CatalogService) ListMovies(ctx context.Context, req *ListMoviesRequest) (*MovieListReply, error) {
	filter := &biz.MovieFilter{
		Title:     req.Title,
		Year:      req.Year,
		YearFrom:  req.YearFrom,
		YearTo:    req.YearTo,
		MinRating: req.MinRating,
		MaxRating: req.MaxRating,
	}
	if req.Tags != "" {
		filter.Tags = strings.Split(req.Tags, ",")
	}

	movies, err := s.queryUC.ListMovies(ctx, filter)
	if err != nil {
		return nil, toAPIError(err)
	}
	return moviesToReply(movies), nil
}

// UpdateMovie implements partial movie update
func (s *CatalogService) UpdateMovie(ctx context.Context, id string, req *UpdateMovieRequest) (*MovieReply, error) {
	movie, err := s.catalogUC.UpdateMovie(ctx, id, biz.MoviePatch{
		Title:       req.Title,
		Year:        req.Year,
		Description: req.Description,
		Rating:      req.Rating,
		Tags:        req.Tags,
	})
	if err != nil {
		return nil, toAPIError(err)
	}
	return movieToReply(movie), nil
}

// RateMovie implements rating assignment
func (s *CatalogService) RateMovie(ctx context.Context, id string, req *RateMovieRequest) (*MovieReply, error) {
	movie, err := s.catalogUC.RateMovie(ctx, id, req.Rating)
	if err != nil {
		return nil, toAPIError(err)
	}
	return movieToReply(movie), nil
}

// AddTag implements tag addition
func (s *CatalogService) AddTag(ctx context.Context, id string, req *TagRequest) (*MovieReply, error) {
	movie, err := s.catalogUC.TagMovie(ctx, id, req.Tag)
	if err != nil {
		return nil, toAPIError(err)
	}
	return movieToReply(movie), nil
}

// RemoveTag implements tag removal
func (s *CatalogService) RemoveTag(ctx context.Context, id, tag string) (*MovieReply, error) {
	movie, err := s.catalogUC.UntagMovie(ctx, id, tag)
	if err != nil {
		return nil, toAPIError(err)
	}
	return movieToReply(movie), nil
}

// DeleteMovie implements movie deletion
func (s *CatalogService) DeleteMovie(ctx context.Context, id string) error {
	if err := s.catalogUC.DeleteMovie(ctx, id); err != nil {
		return toAPIError(err)
	}
	return nil
}

// GetStatistics implements catalog statistics
func (s *CatalogService) GetStatistics(ctx context.Context) (*StatisticsReply, error) {
	stats, err := s.queryUC.Statistics(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}
	reply := &StatisticsReply{
		Count:           stats.Count,
		RatedCount:      stats.RatedCount,
		AverageRating:   stats.AverageRating,
		TopTags:         make([]TagCountReply, 0, len(stats.TopTags)),
		RatingHistogram: stats.RatingHistogram,
		YearMin:         stats.YearMin,
		YearMax:         stats.YearMax,
	}
	for _, tc := range stats.TopTags {
		reply.TopTags = append(reply.TopTags, TagCountReply{Tag: tc.Tag, Count: tc.Count})
	}
	return reply, nil
}

// HealthCheck implements health check
func (s *CatalogService) HealthCheck(context.Context) (*HealthReply, error) {
	return &HealthReply{Status: "ok"}, nil
}

// toAPIError maps domain errors onto transport error codes.
func toAPIError(err error) error {
	var verr *biz.ValidationError
	if stderrors.As(err, &verr) {
		return errors.New(422, "VALIDATION_FAILED", verr.Error()).WithMetadata(verr.FieldMap())
	}
	var nferr *biz.NotFoundError
	if stderrors.As(err, &nferr) {
		return errors.NotFound("MOVIE_NOT_FOUND", nferr.Error()).WithMetadata(map[string]string{"id": nferr.ID})
	}
	var ferr *biz.InvalidFilterError
	if stderrors.As(err, &ferr) {
		return errors.BadRequest("INVALID_FILTER", ferr.Error())
	}
	return err
}

func movieToReply(m *biz.Movie) *MovieReply {
	return &MovieReply{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year,
		Description: m.Description,
		Rating:      m.Rating,
		Tags:        m.Tags,
	}
}

func moviesToReply(movies []*biz.Movie) *MovieListReply {
	reply := &MovieListReply{Items: make([]*MovieReply, 0, len(movies))}
	for _, m := range movies {
		reply.Items = append(reply.Items, movieToReply(m))
	}
	return reply
}
