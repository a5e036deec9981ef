package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"imdb-scraper/config"
	"imdb-scraper/storage"
	"imdb-scraper/utils"
)

var rootCmd = &cobra.Command{
	Use:          "imdb-scraper",
	Short:        "imdb-scraper scrapes the IMDb Top 250, refines it and stores it in a relational database.",
	SilenceUsage: true,
}

// ExecuteContext runs the command tree and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what every command needs. It is built per command run from
// the environment.
type app struct {
	cfg    *config.Config
	logger *utils.Logger
	out    io.Writer
}

func newApp(cmd *cobra.Command) *app {
	cfg := config.Load()
	logger := utils.NewLogger()
	logger.SetDebug(cfg.LogDebug)
	return &app{cfg: cfg, logger: logger, out: cmd.OutOrStdout()}
}

// connectionParams maps every backend to its settings from cfg.
func connectionParams(cfg *config.Config) map[string]storage.ConnectionParams {
	return map[string]storage.ConnectionParams{
		storage.BackendPostgres: {
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSLMode,
		},
		storage.BackendMySQL: {
			Host:     cfg.MySQLHost,
			Port:     cfg.MySQLPort,
			User:     cfg.MySQLUser,
			Password: cfg.MySQLPassword,
			Database: cfg.MySQLDB,
		},
		storage.BackendSQLite: {Path: cfg.SQLitePath},
	}
}

// openStore connects to the configured backend, falling back to SQLite.
func (a *app) openStore(ctx context.Context) (storage.ConnectionStrategy, error) {
	s, err := storage.NewStrategyWithFallback(ctx, a.cfg.DBKind, connectionParams(a.cfg), a.logger)
	if err != nil {
		return nil, err
	}
	a.logger.Info("[db] using %s", s.Name())
	return s, nil
}

func (a *app) retryConfig() *utils.RetryConfig {
	r := utils.DefaultRetryConfig(a.logger)
	if a.cfg.MaxRetries > 0 {
		r.MaxAttempts = a.cfg.MaxRetries
	}
	if a.cfg.RetryBaseDelay > 0 {
		r.BaseDelay = a.cfg.RetryBaseDelay
	}
	return r
}

func (a *app) logErrorSummary(component string, summary map[string]int) {
	if len(summary) == 0 {
		return
	}
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a.logger.Warn("[%s] %s occurred %d time(s)", component, k, summary[k])
	}
}
