package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"imdb-scraper/storage"
	"imdb-scraper/utils"
)

// Handler serves the read-only movie queries.
type Handler struct {
	queries *storage.MovieQueries
	logger  *utils.Logger
}

// NewHandler creates a Handler over queries.
func NewHandler(queries *storage.MovieQueries, logger *utils.Logger) *Handler {
	return &Handler{queries: queries, logger: logger}
}

// Health reports that the process is up.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Index lists the available endpoints.
func (h *Handler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "IMDb top movies API",
		"endpoints": []string{
			"/movies/top-by-decade",
			"/movies/rating-stddev",
			"/movies/rating-vs-metascore",
			"/movies/actors?actor_name=",
			"/movies/:id",
		},
	})
}

func (h *Handler) TopByDecade(c echo.Context) error {
	rows, err := h.queries.TopByDecade(c.Request().Context())
	if err != nil {
		return h.serverError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) RatingStddev(c echo.Context) error {
	rows, err := h.queries.RatingStddevByYear(c.Request().Context())
	if err != nil {
		return h.serverError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) RatingVsMetascore(c echo.Context) error {
	rows, err := h.queries.RatingVsMetascore(c.Request().Context())
	if err != nil {
		return h.serverError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// MovieActors reads movie_actor_view; actor_name narrows it to one actor.
func (h *Handler) MovieActors(c echo.Context) error {
	rows, err := h.queries.MovieActors(c.Request().Context(), c.QueryParam("actor_name"))
	if err != nil {
		return h.serverError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) MovieByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	m, err := h.queries.MovieByID(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	if err != nil {
		return h.serverError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) serverError(c echo.Context, err error) error {
	h.logger.Error("[api] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
}
