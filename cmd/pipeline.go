package cmd

import (
	"context"
	"errors"
	"fmt"

	"imdb-scraper/exporter"
	"imdb-scraper/models"
	"imdb-scraper/scraper/imdb"
	"imdb-scraper/services"
	"imdb-scraper/storage"
)

// Refine levels of a pipeline run.
const (
	levelBasic        = "basic"
	levelIntermediate = "intermediate"
	levelAdvanced     = "advanced"
)

var (
	errNothingScraped = errors.New("no movies were scraped")
	errNotRefined     = errors.New("staging data could not be refined")
	errExportFailed   = errors.New("database export failed")
)

// run executes one pipeline pass:
//
//	basic         scrape and stage
//	intermediate  refine the existing staging file and persist it
//	advanced      scrape, stage, refine, persist and report
func (a *app) run(ctx context.Context, level string) error {
	switch level {
	case levelBasic:
		_, err := a.scrape(ctx)
		return err

	case levelIntermediate:
		if a.refine() == nil {
			return errNotRefined
		}
		items, err := storage.ReadStagingJSON(a.cfg.StagingJSONPath())
		if err != nil {
			return err
		}
		return a.persist(ctx, items, false)

	case levelAdvanced:
		items, err := a.scrape(ctx)
		if err != nil {
			return err
		}
		if a.refine() == nil {
			return errNotRefined
		}
		return a.persist(ctx, items, true)

	default:
		return fmt.Errorf("unknown refine level %q (want %s, %s or %s)",
			level, levelBasic, levelIntermediate, levelAdvanced)
	}
}

// scrape collects the chart and writes the staging JSON.
func (a *app) scrape(ctx context.Context) ([]models.ScrapedItem, error) {
	fetcher, err := imdb.NewFetcher(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	defer fetcher.Close()

	items, err := imdb.New(a.cfg, fetcher, a.logger).Scrape(ctx)
	if err != nil {
		a.logger.Error("[pipeline] scrape failed: %v", err)
	}
	if len(items) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, errNothingScraped
	}

	path := a.cfg.StagingJSONPath()
	if err := storage.WriteJSONAtomic(path, items); err != nil {
		return nil, fmt.Errorf("write staging file: %w", err)
	}
	a.logger.Info("[pipeline] %d movies staged in %s", len(items), path)
	return items, nil
}

func (a *app) refine() *models.Dataset {
	ds := services.NewRefiner(a.logger, a.cfg.RefinedCSVPath()).RefineFile(a.cfg.StagingJSONPath())
	if ds != nil {
		a.logger.Info("[pipeline] %d rows refined into %s", len(ds.Rows), a.cfg.RefinedCSVPath())
	}
	return ds
}

// persist exports items to the database and optionally prints the insight
// report over everything stored.
func (a *app) persist(ctx context.Context, items []models.ScrapedItem, report bool) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	exp, err := exporter.New(exporter.KindDatabase, exporter.Options{
		Logger:   a.logger,
		Retry:    a.retryConfig(),
		Strategy: store,
	})
	if err != nil {
		return err
	}

	ok := exp.Export(ctx, stagedRecords(items), store.Name())
	a.logErrorSummary("pipeline", exp.ErrorSummary())
	if !ok {
		return errExportFailed
	}

	if !report {
		return nil
	}
	movies, err := storage.NewMovieQueries(store).AllMovies(ctx)
	if err != nil {
		return fmt.Errorf("load movies for report: %w", err)
	}
	insights := services.NewInsightService(a.logger)
	insights.Print(a.out, insights.Generate(movies))
	return nil
}

func stagedRecords(items []models.ScrapedItem) []models.RawMovieRecord {
	records := make([]models.RawMovieRecord, 0, len(items))
	for _, it := range items {
		records = append(records, it.InfoMovie)
	}
	return records
}
