package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"imdb-scraper/exporter"
	"imdb-scraper/storage"
)

var (
	exportTo      *string
	exportOut     *string
	exportColumns *[]string
)

func init() {
	exportTo = exportCmd.Flags().String("to", exporter.KindJSON,
		"Destination kind: "+strings.Join(exporter.Kinds(), ", ")+".")
	exportOut = exportCmd.Flags().String("out", "",
		"Output file for json/csv. Defaults to movies_export.<kind> in the data directory.")
	exportColumns = exportCmd.Flags().StringSlice("columns", nil,
		"Desired CSV columns. Defaults to the refined column set.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export --to json|csv|database [--out path]",
	Short: "Validates the staged movies and exports them to a file or the database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd)
		ctx := cmd.Context()

		items, err := storage.ReadStagingJSON(a.cfg.StagingJSONPath())
		if err != nil {
			return err
		}

		opts := exporter.Options{Logger: a.logger, Retry: a.retryConfig(), Columns: *exportColumns}
		destination := *exportOut
		if *exportTo == exporter.KindDatabase {
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			opts.Strategy = store
			destination = store.Name()
		} else if destination == "" {
			destination = filepath.Join(a.cfg.DataDir, "movies_export."+*exportTo)
		}

		exp, err := exporter.New(*exportTo, opts)
		if err != nil {
			return err
		}
		ok := exp.Export(ctx, stagedRecords(items), destination)
		a.logErrorSummary("export", exp.ErrorSummary())
		if !ok {
			return fmt.Errorf("%s export to %s failed", exp.Name(), destination)
		}
		a.logger.Info("[export] %d staged movies exported to %s", len(items), destination)
		return nil
	},
}
