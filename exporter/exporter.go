// Package exporter writes validated movie batches to JSON files, CSV files
// or a relational database.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"imdb-scraper/models"
	"imdb-scraper/services"
	"imdb-scraper/storage"
	"imdb-scraper/utils"
)

// Exporter kinds accepted by New.
const (
	KindJSON     = "json"
	KindCSV      = "csv"
	KindDatabase = "database"
)

var (
	errEmptyBatch = errors.New("no valid records after validation")
	errEscalated  = errors.New("too many invalid records")
)

// Exporter writes a batch of raw records to a destination. Export never
// returns an error: failures are logged, counted and reported as false.
type Exporter interface {
	Name() string
	Export(ctx context.Context, records []models.RawMovieRecord, destination string) bool
	// ErrorSummary returns error counts keyed by kind:context.
	ErrorSummary() map[string]int
}

// Options configures the exporters built by New.
type Options struct {
	Logger *utils.Logger
	// Retry is copied; each exporter sets its own RetryOn. Nil means
	// utils.DefaultRetryConfig.
	Retry *utils.RetryConfig
	// Strategy is required by the database exporter.
	Strategy storage.ConnectionStrategy
	// Columns are the desired CSV columns. Nil means models.OutputColumns.
	Columns []string
}

type constructor func(opts Options) (Exporter, error)

var registry = map[string]constructor{
	KindJSON: func(opts Options) (Exporter, error) { return NewJSONExporter(opts), nil },
	KindCSV:  func(opts Options) (Exporter, error) { return NewCSVExporter(opts), nil },
	KindDatabase: func(opts Options) (Exporter, error) {
		if opts.Strategy == nil {
			return nil, fmt.Errorf("exporter: %s exporter needs a connection strategy", KindDatabase)
		}
		return NewDatabaseExporter(opts), nil
	},
}

// Kinds lists the registered exporter kinds.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// New builds the exporter registered under kind.
func New(kind string, opts Options) (Exporter, error) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("exporter: unknown kind %q (want one of %v)", kind, Kinds())
	}
	return ctor(opts)
}

// base holds what every exporter shares: validation, column transforms,
// retry policy and error accounting.
type base struct {
	name      string
	logger    *utils.Logger
	errors    *utils.ErrorHandler
	validator *services.Validator
	transform *services.Transformer
	retry     utils.RetryConfig
}

func newBase(name string, opts Options, retryOn ...utils.ErrorKind) base {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	retry := utils.DefaultRetryConfig(logger)
	if opts.Retry != nil {
		retry = opts.Retry
	}
	r := *retry
	r.RetryOn = utils.RetryKinds(retryOn...)
	if r.Logger == nil {
		r.Logger = logger
	}

	return base{
		name:      name,
		logger:    logger,
		errors:    utils.NewErrorHandler(logger),
		validator: services.NewValidator(logger),
		transform: services.NewTransformer(logger),
		retry:     r,
	}
}

func (b *base) Name() string { return b.name }

func (b *base) ErrorSummary() map[string]int { return b.errors.Summary() }

// validateBatch drops every record the Validator rejects, counting the
// rejections in rejects. It fails only when they escalate past the
// handler's threshold. Callers pass a fresh handler per pass so a retried
// batch is not counted twice.
func (b *base) validateBatch(records []models.RawMovieRecord, rejects *utils.ErrorHandler) ([]models.ValidatedMovieRecord, error) {
	valid := make([]models.ValidatedMovieRecord, 0, len(records))
	for i, raw := range records {
		rec, err := b.validator.Validate(raw)
		if err != nil {
			if !rejects.Handle(err, utils.DataValidationError, "exporter:"+b.name, false) {
				return nil, utils.Classify(utils.DataValidationError, errEscalated)
			}
			b.logger.Warn("[exporter:%s] record %d dropped: %v", b.name, i, err)
			continue
		}
		valid = append(valid, rec)
	}
	if dropped := len(records) - len(valid); dropped > 0 {
		b.logger.Info("[exporter:%s] %d/%d records passed validation", b.name, len(valid), len(records))
	}
	return valid, nil
}

// fail records err for destination and returns false.
func (b *base) fail(destination string, err error) bool {
	kind := utils.KindOf(err)
	b.errors.Handle(err, kind, "export:"+b.name, false)
	b.logger.Error("[exporter:%s] export to %s failed: %v", b.name, destination, err)
	return false
}
