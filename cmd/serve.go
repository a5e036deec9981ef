package cmd

import (
	"github.com/spf13/cobra"

	"imdb-scraper/api"
	"imdb-scraper/storage"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the analytical queries over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd)
		ctx := cmd.Context()

		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}

		rdb := api.NewRedisClient(a.cfg.RedisAddr, a.cfg.RedisPassword, a.logger)
		if rdb != nil {
			defer rdb.Close()
		}

		h := api.NewHandler(storage.NewMovieQueries(store), a.logger)
		e := api.NewServer(h, rdb, a.cfg.RedisTTL, a.logger)
		return api.Serve(ctx, e, ":"+a.cfg.HTTPPort, a.logger)
	},
}
