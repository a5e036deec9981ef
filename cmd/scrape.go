package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refineLevel *string

func init() {
	refineLevel = scrapeCmd.Flags().String("refine", levelAdvanced,
		"How far to take the run: basic, intermediate or advanced.")
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(refineCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--refine basic|intermediate|advanced]",
	Short: "Scrapes the IMDb Top 250 and runs the pipeline up to the chosen level.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd)
		a.logger.Info("=== IMDb scraper starting (level: %s) ===", *refineLevel)
		if err := a.run(cmd.Context(), *refineLevel); err != nil {
			a.logger.Critical("[pipeline] %v", err)
			return err
		}
		fmt.Fprintf(a.out, "\n  Done. Staging → %s | Refined → %s\n\n",
			a.cfg.StagingJSONPath(), a.cfg.RefinedCSVPath())
		return nil
	},
}

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Refines the staging JSON into the refined CSV.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd)
		if a.refine() == nil {
			return errNotRefined
		}
		return nil
	},
}
