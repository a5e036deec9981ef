package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"imdb-scraper/storage"
)

func init() {
	dbCmd.AddCommand(dbProbeCmd)
	dbCmd.AddCommand(dbInitCmd)
	rootCmd.AddCommand(dbCmd)
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database backend utilities.",
}

var dbProbeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Tries every configured backend and reports which ones answer.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd)
		status := storage.ProbeAll(cmd.Context(), connectionParams(a.cfg), a.logger)

		t := table.NewWriter()
		t.SetOutputMirror(a.out)
		t.SetStyle(table.StyleRounded)
		t.SetTitle("Backends")
		t.AppendHeader(table.Row{"Backend", "Status"})
		for _, name := range storage.Backends() {
			state := "unavailable"
			if status[name] {
				state = "ok"
			}
			t.AppendRow(table.Row{name, state})
		}
		t.Render()
		return nil
	},
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Creates the tables and view on the selected backend.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd)
		store, err := a.openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		a.logger.Info("[db] schema ready on %s", store.Name())
		return nil
	},
}
