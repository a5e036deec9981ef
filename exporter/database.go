package exporter

import (
	"context"
	"fmt"
	"sync"

	"imdb-scraper/models"
	"imdb-scraper/services"
	"imdb-scraper/storage"
	"imdb-scraper/utils"
)

const insertBatchSize = 50

// Report counts what happened to the records of one database export.
type Report struct {
	Records  int // raw records handed to Export
	Valid    int // records that passed validation
	Inserted int // movies written in the committed transaction
	Skipped  int // valid rows RecordBuilder could not build
}

// DatabaseExporter persists movies and actors through a ConnectionStrategy.
// One Export call is one transaction.
type DatabaseExporter struct {
	base
	strategy storage.ConnectionStrategy
	build    func(models.MovieRow) (*models.Movie, error)

	mu   sync.Mutex
	last Report
}

func NewDatabaseExporter(opts Options) *DatabaseExporter {
	return &DatabaseExporter{
		base:     newBase(KindDatabase, opts, utils.DatabaseError),
		strategy: opts.Strategy,
		build:    services.BuildMovie,
	}
}

// LastReport returns the counters of the last committed export.
func (e *DatabaseExporter) LastReport() Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Export validates, builds and inserts records in one transaction. A
// database failure restarts the whole attempt under the retry policy.
func (e *DatabaseExporter) Export(ctx context.Context, records []models.RawMovieRecord, destination string) bool {
	if destination == "" {
		destination = e.strategy.Name()
	}

	// Only the last attempt's rejections count; earlier attempts saw the
	// same records.
	var rejects *utils.ErrorHandler
	err := e.retry.Do(ctx, "database export", func() error {
		rejects = utils.NewErrorHandler(e.logger)
		return e.exportOnce(ctx, records, rejects)
	})
	e.errors.Merge(rejects)
	if err != nil {
		return e.fail(destination, err)
	}

	r := e.LastReport()
	e.logger.Info("[exporter:db] committed %d/%d rows to %s (%d skipped, %d rejected)",
		r.Inserted, r.Valid, destination, r.Skipped, r.Records-r.Valid)
	return true
}

func (e *DatabaseExporter) exportOnce(ctx context.Context, records []models.RawMovieRecord, rejects *utils.ErrorHandler) (err error) {
	valid, err := e.validateBatch(records, rejects)
	if err != nil {
		return err
	}
	if len(valid) == 0 {
		return utils.Classify(utils.DataValidationError, errEmptyBatch)
	}

	rows := make([]models.MovieRow, 0, len(valid))
	for _, v := range valid {
		rows = append(rows, e.transform.FromValidated(v))
	}

	if err := e.strategy.EnsureSchema(ctx); err != nil {
		return err
	}

	conn, err := e.strategy.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return utils.Classify(utils.DatabaseError, fmt.Errorf("begin: %w", err))
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				e.logger.Warn("[exporter:db] rollback: %v", rbErr)
			}
		}
	}()

	report := Report{Records: len(records), Valid: len(valid)}
	for i := 0; i < len(rows); i += insertBatchSize {
		end := min(i+insertBatchSize, len(rows))

		movies := make([]*models.Movie, 0, end-i)
		for j, row := range rows[i:end] {
			m, buildErr := e.build(row)
			if buildErr != nil {
				report.Skipped++
				e.logger.Warn("[exporter:db] row %d skipped: %v", i+j, buildErr)
				continue
			}
			movies = append(movies, m)
		}
		if len(movies) == 0 {
			continue
		}

		if err = storage.InsertMovies(ctx, tx, e.strategy.Dialect(), movies); err != nil {
			return utils.Classify(utils.DatabaseError, err)
		}
		report.Inserted += len(movies)
		e.logger.Debug("[exporter:db] batch %d: %d rows", i/insertBatchSize+1, len(movies))
	}

	if err = tx.Commit(); err != nil {
		return utils.Classify(utils.DatabaseError, fmt.Errorf("commit: %w", err))
	}

	e.mu.Lock()
	e.last = report
	e.mu.Unlock()
	return nil
}
