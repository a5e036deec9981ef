package exporter

import (
	"context"

	"imdb-scraper/models"
	"imdb-scraper/storage"
	"imdb-scraper/utils"
)

// JSONExporter writes validated records as a JSON array shaped like the
// staging file.
type JSONExporter struct {
	base
}

func NewJSONExporter(opts Options) *JSONExporter {
	return &JSONExporter{base: newBase(KindJSON, opts, utils.FileIOError)}
}

func (e *JSONExporter) Export(ctx context.Context, records []models.RawMovieRecord, destination string) bool {
	rejects := utils.NewErrorHandler(e.logger)
	valid, err := e.validateBatch(records, rejects)
	e.errors.Merge(rejects)
	if err != nil {
		return e.fail(destination, err)
	}
	if len(valid) == 0 {
		return e.fail(destination, utils.Classify(utils.DataValidationError, errEmptyBatch))
	}

	items := make([]models.ValidatedItem, 0, len(valid))
	for _, v := range valid {
		items = append(items, models.ValidatedItem{InfoMovie: v})
	}

	err = e.retry.Do(ctx, "json export", func() error {
		return utils.Classify(utils.FileIOError, storage.WriteJSONAtomic(destination, items))
	})
	if err != nil {
		return e.fail(destination, err)
	}

	e.logger.Info("[exporter:json] wrote %d records to %s", len(items), destination)
	return true
}
