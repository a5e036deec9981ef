package exporter

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"imdb-scraper/models"
	"imdb-scraper/storage"
	"imdb-scraper/utils"
)

// countingStrategy wraps a real strategy and counts Connect calls. The first
// failConnects calls fail with a database error.
type countingStrategy struct {
	storage.ConnectionStrategy
	connects     int
	failConnects int
}

func (c *countingStrategy) Connect(ctx context.Context) (*sql.Conn, error) {
	c.connects++
	if c.connects <= c.failConnects {
		return nil, utils.Classify(utils.DatabaseError, errors.New("connection reset"))
	}
	return c.ConnectionStrategy.Connect(ctx)
}

func fastRetry() *utils.RetryConfig {
	return &utils.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Factor: 2}
}

func newStrategy(t *testing.T) *countingStrategy {
	t.Helper()
	s, err := storage.NewSQLiteStrategy(storage.ConnectionParams{Path: ":memory:"}, utils.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return &countingStrategy{ConnectionStrategy: s}
}

func record(title string) models.RawMovieRecord {
	return models.RawMovieRecord{
		Title:         title,
		Rating:        "9.3",
		DatePublished: "1994-09-23",
		Duration:      "PT2H22M",
		Metascore:     "80",
		Actors:        "A;B",
		MovieURL:      "https://x",
	}
}

func countMovies(t *testing.T, s storage.ConnectionStrategy) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM movies").Scan(&n))
	return n
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New("parquet", Options{})
	require.Error(t, err)

	_, err = New(KindDatabase, Options{})
	require.Error(t, err, "database exporter without strategy")

	e, err := New(KindJSON, Options{})
	require.NoError(t, err)
	require.Equal(t, KindJSON, e.Name())
}

func TestDatabaseExportEndToEnd(t *testing.T) {
	s := newStrategy(t)
	e := NewDatabaseExporter(Options{Strategy: s, Retry: fastRetry()})

	require.True(t, e.Export(context.Background(), []models.RawMovieRecord{record("X")}, ""))

	movies, err := storage.NewMovieQueries(s).AllMovies(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 1)

	m := movies[0]
	require.Equal(t, "X", m.Title)
	require.Equal(t, 1994, *m.Year)
	require.Equal(t, 9.3, *m.Rating)
	require.Equal(t, 142, *m.Duration)
	require.Equal(t, 80.0, *m.Metascore)
	require.Equal(t, []string{"A", "B"}, m.ActorNames())
}

func TestDatabaseExportEmptyBatchDoesNotConnect(t *testing.T) {
	s := newStrategy(t)
	e := NewDatabaseExporter(Options{Strategy: s, Retry: fastRetry()})

	require.False(t, e.Export(context.Background(), nil, ""))
	require.False(t, e.Export(context.Background(), []models.RawMovieRecord{{Title: "  "}}, ""))
	require.Zero(t, s.connects)
	require.Equal(t, 2, e.ErrorSummary()[string(utils.DataValidationError)+":export:database"])
}

func TestDatabaseExportSkipsUnbuildableRows(t *testing.T) {
	s := newStrategy(t)
	e := NewDatabaseExporter(Options{Strategy: s, Retry: fastRetry()})

	build := e.build
	e.build = func(row models.MovieRow) (*models.Movie, error) {
		if row.Title == "bad" {
			return nil, errors.New("no usable title")
		}
		return build(row)
	}

	records := []models.RawMovieRecord{record("a"), record("b"), record("bad"), record("c"), record("d")}
	require.True(t, e.Export(context.Background(), records, ""))

	require.Equal(t, Report{Records: 5, Valid: 5, Inserted: 4, Skipped: 1}, e.LastReport())
	require.Equal(t, 4, countMovies(t, s))
	require.Equal(t, 1, s.connects)
}

func TestDatabaseExportDropsInvalidRecords(t *testing.T) {
	s := newStrategy(t)
	e := NewDatabaseExporter(Options{Strategy: s, Retry: fastRetry()})

	records := []models.RawMovieRecord{record("a"), {Title: ""}, record("b")}
	require.True(t, e.Export(context.Background(), records, ""))
	require.Equal(t, Report{Records: 3, Valid: 2, Inserted: 2}, e.LastReport())
}

func TestDatabaseExportBatchesAcrossOneTransaction(t *testing.T) {
	s := newStrategy(t)
	e := NewDatabaseExporter(Options{Strategy: s, Retry: fastRetry()})

	records := make([]models.RawMovieRecord, 0, 120)
	for i := 0; i < 120; i++ {
		records = append(records, record("movie"))
	}
	require.True(t, e.Export(context.Background(), records, ""))
	require.Equal(t, 120, countMovies(t, s))
}

func TestDatabaseExportRetriesWholeAttempt(t *testing.T) {
	s := newStrategy(t)
	s.failConnects = 2
	e := NewDatabaseExporter(Options{Strategy: s, Retry: fastRetry()})

	require.True(t, e.Export(context.Background(), []models.RawMovieRecord{record("X")}, ""))
	require.Equal(t, 3, s.connects)
	require.Equal(t, 1, countMovies(t, s))
}

func TestDatabaseExportGivesUpAfterMaxAttempts(t *testing.T) {
	s := newStrategy(t)
	s.failConnects = 10
	e := NewDatabaseExporter(Options{Strategy: s, Retry: fastRetry()})

	require.False(t, e.Export(context.Background(), []models.RawMovieRecord{record("X")}, ""))
	require.Equal(t, 3, s.connects)
	require.Equal(t, 1, e.ErrorSummary()[string(utils.DatabaseError)+":export:database"])
}

func TestDatabaseExportRetryDoesNotRecountRejections(t *testing.T) {
	s := newStrategy(t)
	s.failConnects = 2
	e := NewDatabaseExporter(Options{Strategy: s, Retry: fastRetry()})

	records := []models.RawMovieRecord{record("a"), {Title: ""}, {Title: " "}, {Title: ""}, {Title: "\t"}}
	require.True(t, e.Export(context.Background(), records, ""))
	require.Equal(t, 3, s.connects)
	require.Equal(t, Report{Records: 5, Valid: 1, Inserted: 1}, e.LastReport())
	require.Equal(t, 4, e.ErrorSummary()[string(utils.DataValidationError)+":exporter:database"])
}

func TestDatabaseExportReusedAcrossCalls(t *testing.T) {
	s := newStrategy(t)
	e := NewDatabaseExporter(Options{Strategy: s, Retry: fastRetry()})

	records := []models.RawMovieRecord{record("a"), {Title: ""}, {Title: ""}, {Title: ""}, {Title: ""}}
	for i := 0; i < 4; i++ {
		require.True(t, e.Export(context.Background(), records, ""), "call %d", i+1)
	}
	require.Equal(t, 4, countMovies(t, s))
	require.Equal(t, 16, e.ErrorSummary()[string(utils.DataValidationError)+":exporter:database"])
}

func TestDatabaseExportNullsOutOfRangeDuration(t *testing.T) {
	s := newStrategy(t)
	e := NewDatabaseExporter(Options{Strategy: s, Retry: fastRetry()})

	long := record("Long")
	long.Duration = "PT20H"
	negative := record("Negative")
	negative.Duration = "-PT2H"
	require.True(t, e.Export(context.Background(), []models.RawMovieRecord{long, negative}, ""))

	movies, err := storage.NewMovieQueries(s).AllMovies(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 2)
	for _, m := range movies {
		require.Nil(t, m.Duration, m.Title)
	}
}

func TestDatabaseExportYearFromDatePrefix(t *testing.T) {
	s := newStrategy(t)
	e := NewDatabaseExporter(Options{Strategy: s, Retry: fastRetry()})

	rec := record("Odd Date")
	rec.DatePublished = "1994-13-01"
	require.True(t, e.Export(context.Background(), []models.RawMovieRecord{rec}, ""))

	movies, err := storage.NewMovieQueries(s).AllMovies(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 1)
	require.NotNil(t, movies[0].Year)
	require.Equal(t, 1994, *movies[0].Year)
}

func TestCSVExportNullsOutOfRangeDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	e := NewCSVExporter(Options{Retry: fastRetry()})

	long := record("Long")
	long.Duration = "PT20H"
	require.True(t, e.Export(context.Background(), []models.RawMovieRecord{long}, path))

	header, _, err := storage.ReadCSV(path)
	require.NoError(t, err)
	require.NotContains(t, header, models.ColDurationMinutes)
}

func TestJSONExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "movies.json")
	e := NewJSONExporter(Options{Retry: fastRetry()})

	require.True(t, e.Export(context.Background(), []models.RawMovieRecord{record("X"), {Title: ""}}, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var items []models.ValidatedItem
	require.NoError(t, json.Unmarshal(b, &items))
	require.Len(t, items, 1)
	require.Equal(t, "X", items[0].InfoMovie.Title)
	require.Equal(t, []string{"A", "B"}, items[0].InfoMovie.Actors)
}

func TestJSONExportEmptyBatchLeavesDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))

	e := NewJSONExporter(Options{Retry: fastRetry()})
	require.False(t, e.Export(context.Background(), []models.RawMovieRecord{{Title: ""}}, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[]", string(b))
}

func TestCSVExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	e := NewCSVExporter(Options{Retry: fastRetry()})

	require.True(t, e.Export(context.Background(), []models.RawMovieRecord{record("X")}, path))

	header, rows, err := storage.ReadCSV(path)
	require.NoError(t, err)
	require.Equal(t, models.OutputColumns, header)
	require.Equal(t, [][]string{{"X", "1994-09-23", "9.3", "142", "80", `["A","B"]`, "https://x"}}, rows)
}

func TestCSVExportWritesPresentColumnsOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	e := NewCSVExporter(Options{Retry: fastRetry()})

	require.True(t, e.Export(context.Background(), []models.RawMovieRecord{{Title: "Bare", Rating: "7.5"}}, path))

	header, _, err := storage.ReadCSV(path)
	require.NoError(t, err)
	require.Equal(t, []string{models.ColTitle, models.ColRating}, header)
}

func TestCSVExportNoDesiredColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	e := NewCSVExporter(Options{
		Retry:   fastRetry(),
		Columns: []string{models.ColMetascore, models.ColActors},
	})

	require.False(t, e.Export(context.Background(), []models.RawMovieRecord{{Title: "Bare", Rating: "7.5"}}, path))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "output file must not be created")
}
