package exporter

import (
	"context"
	"fmt"

	"imdb-scraper/models"
	"imdb-scraper/services"
	"imdb-scraper/storage"
	"imdb-scraper/utils"
)

// CSVExporter writes validated records through the Refiner's column
// transformations, keeping only the desired columns that hold data.
type CSVExporter struct {
	base
	columns []string
}

func NewCSVExporter(opts Options) *CSVExporter {
	cols := opts.Columns
	if cols == nil {
		cols = models.OutputColumns
	}
	return &CSVExporter{base: newBase(KindCSV, opts, utils.FileIOError), columns: cols}
}

func (e *CSVExporter) Export(ctx context.Context, records []models.RawMovieRecord, destination string) bool {
	rejects := utils.NewErrorHandler(e.logger)
	valid, err := e.validateBatch(records, rejects)
	e.errors.Merge(rejects)
	if err != nil {
		return e.fail(destination, err)
	}
	if len(valid) == 0 {
		return e.fail(destination, utils.Classify(utils.DataValidationError, errEmptyBatch))
	}

	rows := make([]models.MovieRow, 0, len(valid))
	for _, v := range valid {
		rows = append(rows, e.transform.FromValidated(v))
	}
	ds := services.NewDataset(rows)

	cols := services.SelectColumns(ds, e.columns)
	if len(cols) == 0 {
		return e.fail(destination, utils.Classify(utils.DataValidationError,
			fmt.Errorf("none of the columns %v are present", e.columns)))
	}
	if len(cols) < len(e.columns) {
		e.logger.Warn("[exporter:csv] writing %d of %d desired columns: %v", len(cols), len(e.columns), cols)
	}

	err = e.retry.Do(ctx, "csv export", func() error {
		return utils.Classify(utils.FileIOError, storage.WriteCSVAtomic(destination, cols, services.FormatRows(ds, cols)))
	})
	if err != nil {
		return e.fail(destination, err)
	}

	e.logger.Info("[exporter:csv] wrote %d rows to %s", len(rows), destination)
	return true
}
