package imdb

import (
	"context"
	"fmt"
	"time"

	"imdb-scraper/config"
	"imdb-scraper/models"
	"imdb-scraper/utils"
)

// Scraper collects the top chart and enriches every movie from its detail
// page.
type Scraper struct {
	cfg      *config.Config
	logger   *utils.Logger
	fetcher  Fetcher
	pool     *utils.WorkerPool
	visited  *utils.StringSet
	retry    *utils.RetryConfig
	chartURL string
}

// New creates a ready-to-use IMDb Scraper.
func New(cfg *config.Config, fetcher Fetcher, logger *utils.Logger) *Scraper {
	retry := utils.DefaultRetryConfig(logger)
	retry.MaxAttempts = cfg.MaxRetries
	retry.BaseDelay = cfg.RetryBaseDelay
	retry.RetryOn = utils.RetryKinds(utils.NetworkError)

	return &Scraper{
		cfg:      cfg,
		logger:   logger,
		fetcher:  fetcher,
		pool:     utils.NewWorkerPool(cfg.MaxConcurrency, time.Duration(cfg.RateLimitMs)*time.Millisecond),
		visited:  utils.NewStringSet(),
		retry:    retry,
		chartURL: ChartURL,
	}
}

// Scrape fetches the chart, then every movie's detail page, and returns the
// staged items in chart order. A detail page that cannot be fetched or
// parsed keeps the chart-level record.
func (s *Scraper) Scrape(ctx context.Context) ([]models.ScrapedItem, error) {
	s.logger.Info("[imdb] Starting scrape — limit: %d movies, concurrency: %d",
		s.cfg.ScrapeLimit, s.cfg.MaxConcurrency)

	chart, err := s.fetch(ctx, s.chartURL)
	if err != nil {
		return nil, fmt.Errorf("imdb: fetch chart: %w", err)
	}

	records, err := ParseChart(chart, s.cfg.ScrapeLimit)
	if err != nil {
		return nil, utils.Classify(utils.ParsingError, err)
	}
	s.logger.Info("[imdb] Chart parsed — %d movies", len(records))

	results := make([]*models.ScrapedItem, len(records))
	for i, rec := range records {
		if rec.MovieURL == "" {
			s.logger.Warn("[imdb] %q has no url, skipped", rec.Title)
			continue
		}
		if !s.visited.Add(rec.MovieURL) {
			s.logger.Debug("[imdb] %s already queued", rec.MovieURL)
			continue
		}

		s.pool.Submit(ctx, func(ctx context.Context) {
			s.enrich(ctx, &rec)
			results[i] = &models.ScrapedItem{InfoMovie: rec}
		})
	}
	s.pool.Wait()

	items := make([]models.ScrapedItem, 0, len(results))
	for _, it := range results {
		if it != nil {
			items = append(items, *it)
		}
	}

	s.logger.Info("[imdb] Scrape complete — %d movies", len(items))
	return items, ctx.Err()
}

func (s *Scraper) enrich(ctx context.Context, rec *models.RawMovieRecord) {
	body, err := s.fetch(ctx, rec.MovieURL)
	if err != nil {
		s.logger.Error("[imdb] %q detail page failed: %v", rec.Title, err)
		return
	}
	if err := ParseDetail(body, rec); err != nil {
		s.logger.Warn("[imdb] %q keeps chart data: %v", rec.Title, err)
		return
	}
	s.logger.Debug("[imdb] %q enriched", rec.Title)
}

func (s *Scraper) fetch(ctx context.Context, url string) (string, error) {
	var body string
	err := s.retry.Do(ctx, "fetch "+url, func() error {
		var err error
		body, err = s.fetcher.Fetch(ctx, url)
		return err
	})
	return body, err
}
