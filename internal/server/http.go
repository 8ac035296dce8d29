package server

import (
	"context"
	"net/http"
	"time"

	"moviecatalog/internal/conf"
	"moviecatalog/internal/service"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"
)

// ProviderSet is server providers.
var ProviderSet = wire.NewSet(NewHTTPServer)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(c *conf.Server, svc *service.CatalogService, logger log.Logger) *khttp.Server {
	var opts = []khttp.ServerOption{
		khttp.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
	}
	if c.HTTP.Network != "" {
		opts = append(opts, khttp.Network(c.HTTP.Network))
	}
	if c.HTTP.Addr != "" {
		opts = append(opts, khttp.Address(c.HTTP.Addr))
	}
	opts = append(opts, khttp.Timeout(conf.Duration(c.HTTP.Timeout, time.Second)))

	srv := khttp.NewServer(opts...)
	registerRoutes(srv, svc)
	return srv
}

func registerRoutes(srv *khttp.Server, svc *service.CatalogService) {
	r := srv.Route("/")
	r.GET("/healthz", handleHealth(svc))
	r.POST("/movies", handleCreateMovie(svc))
	r.GET("/movies", handleListMovies(svc))
	r.GET("/movies/{id}", handleGetMovie(svc))
	r.PUT("/movies/{id}", handleUpdateMovie(svc))
	r.DELETE("/movies/{id}", handleDeleteMovie(svc))
	r.PUT("/movies/{id}/rating", handleRateMovie(svc))
	r.POST("/movies/{id}/tags", handleAddTag(svc))
	r.DELETE("/movies/{id}/tags/{tag}", handleRemoveTag(svc))
	r.GET("/statistics", handleStatistics(svc))
}

func handleHealth(svc *service.CatalogService) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return svc.HealthCheck(c)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out)
	}
}

func handleCreateMovie(svc *service.CatalogService) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		var in service.CreateMovieRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return svc.CreateMovie(c, req.(*service.CreateMovieRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusCreated, out)
	}
}

func handleListMovies(svc *service.CatalogService) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		var in service.ListMoviesRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return svc.ListMovies(c, req.(*service.ListMoviesRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out)
	}
}

func handleGetMovie(svc *service.CatalogService) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		id := ctx.Vars().Get("id")
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return svc.GetMovie(c, id)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out)
	}
}

func handleUpdateMovie(svc *service.CatalogService) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		id := ctx.Vars().Get("id")
		var in service.UpdateMovieRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return svc.UpdateMovie(c, id, req.(*service.UpdateMovieRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out)
	}
}

func handleDeleteMovie(svc *service.CatalogService) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		id := ctx.Vars().Get("id")
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return nil, svc.DeleteMovie(c, id)
		})
		if _, err := h(ctx, nil); err != nil {
			return err
		}
		return ctx.Result(http.StatusNoContent, nil)
	}
}

func handleRateMovie(svc *service.CatalogService) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		id := ctx.Vars().Get("id")
		var in service.RateMovieRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return svc.RateMovie(c, id, req.(*service.RateMovieRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out)
	}
}

func handleAddTag(svc *service.CatalogService) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		id := ctx.Vars().Get("id")
		var in service.TagRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return svc.AddTag(c, id, req.(*service.TagRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out)
	}
}

func handleRemoveTag(svc *service.CatalogService) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		id := ctx.Vars().Get("id")
		tag := ctx.Vars().Get("tag")
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return svc.RemoveTag(c, id, tag)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out)
	}
}

func handleStatistics(svc *service.CatalogService) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return svc.GetStatistics(c)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out)
	}
}
