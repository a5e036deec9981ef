package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"imdb-scraper/utils"
)

const shutdownTimeout = 10 * time.Second

// RegisterRoutes maps every endpoint onto e. Movie queries go through the
// response cache; the health check never does.
func RegisterRoutes(e *echo.Echo, h *Handler, cache echo.MiddlewareFunc) {
	e.GET("/healthz", Health)
	e.GET("/", h.Index)

	g := e.Group("/movies", cache)
	g.GET("/top-by-decade", h.TopByDecade)
	g.GET("/rating-stddev", h.RatingStddev)
	g.GET("/rating-vs-metascore", h.RatingVsMetascore)
	g.GET("/actors", h.MovieActors)
	g.GET("/:id", h.MovieByID)
}

// NewServer builds the echo instance. rdb may be nil.
func NewServer(h *Handler, rdb *redis.Client, ttl time.Duration, logger *utils.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	RegisterRoutes(e, h, ResponseCache(rdb, ttl, logger))
	return e
}

// Serve runs e on addr until ctx is cancelled, then shuts it down.
func Serve(ctx context.Context, e *echo.Echo, addr string, logger *utils.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("[api] listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("[api] shutting down")
	return e.Shutdown(shutdownCtx)
}
