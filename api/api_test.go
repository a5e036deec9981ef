package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"imdb-scraper/models"
	"imdb-scraper/storage"
	"imdb-scraper/utils"
)

func ptr[T any](v T) *T { return &v }

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	ctx := context.Background()
	logger := utils.NewNopLogger()

	s, err := storage.NewSQLiteStrategy(storage.ConnectionParams{Path: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureSchema(ctx))

	movies := []*models.Movie{
		{Title: "The Godfather", Year: ptr(1972), Rating: ptr(9.2), Duration: ptr(175), Metascore: ptr(100.0),
			Actors: []models.Actor{{Name: "Marlon Brando"}, {Name: "Al Pacino"}}},
		{Title: "Heat", Year: ptr(1995), Rating: ptr(8.3), Duration: ptr(170), Metascore: ptr(76.0),
			Actors: []models.Actor{{Name: "Al Pacino"}, {Name: "Robert De Niro"}}},
	}
	conn, err := s.Connect(ctx)
	require.NoError(t, err)
	tx, err := conn.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, storage.InsertMovies(ctx, tx, s.Dialect(), movies))
	require.NoError(t, tx.Commit())
	require.NoError(t, conn.Close())

	return NewServer(NewHandler(storage.NewMovieQueries(s), logger), nil, 0, logger)
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(newTestServer(t), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestIndexListsEndpoints(t *testing.T) {
	rec := get(newTestServer(t), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/movies/top-by-decade")
}

func TestMovieByID(t *testing.T) {
	e := newTestServer(t)

	rec := get(e, "/movies/1")
	require.Equal(t, http.StatusOK, rec.Code)

	var m models.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	require.Equal(t, "The Godfather", m.Title)
	require.Equal(t, []string{"Marlon Brando", "Al Pacino"}, m.ActorNames())

	require.Equal(t, http.StatusNotFound, get(e, "/movies/99").Code)
	require.Equal(t, http.StatusBadRequest, get(e, "/movies/abc").Code)
}

func TestTopByDecade(t *testing.T) {
	rec := get(newTestServer(t), "/movies/top-by-decade")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []models.DecadeMovie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	require.Equal(t, 1970, rows[0].Decade)
	require.Equal(t, 1990, rows[1].Decade)
}

func TestRatingQueries(t *testing.T) {
	e := newTestServer(t)

	rec := get(e, "/movies/rating-stddev")
	require.Equal(t, http.StatusOK, rec.Code)
	var stddev []models.YearRatingStddev
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stddev))
	require.Len(t, stddev, 2)

	rec = get(e, "/movies/rating-vs-metascore")
	require.Equal(t, http.StatusOK, rec.Code)
	var gaps []models.RatingGap
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gaps))
	require.Empty(t, gaps)
}

func TestMovieActorsFilter(t *testing.T) {
	e := newTestServer(t)

	var all, pacino []models.MovieActorRow
	rec := get(e, "/movies/actors")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 4)

	rec = get(e, "/movies/actors?actor_name=Al+Pacino")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pacino))
	require.Len(t, pacino, 2)
	for _, r := range pacino {
		require.Equal(t, "Al Pacino", r.ActorName)
	}
}

func TestResponseCacheDisabledWithoutRedis(t *testing.T) {
	require.Nil(t, NewRedisClient("", "", utils.NewNopLogger()))

	rec := get(newTestServer(t), "/movies/top-by-decade")
	require.Empty(t, rec.Header().Get("X-Cache"))
}

func TestCacheKeyIncludesQuery(t *testing.T) {
	e := echo.New()
	key := func(target string) string {
		return cacheKey(e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder()))
	}

	require.Equal(t, key("/movies/actors?actor_name=A"), key("/movies/actors?actor_name=A"))
	require.NotEqual(t, key("/movies/actors?actor_name=A"), key("/movies/actors?actor_name=B"))
	require.Contains(t, key("/movies/1"), cacheKeyPrefix+":")
}
