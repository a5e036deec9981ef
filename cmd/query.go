package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"imdb-scraper/storage"
)

// Query names accepted by the query command.
const (
	queryTopByDecade       = "top-by-decade"
	queryRatingStddev      = "rating-stddev"
	queryRatingVsMetascore = "rating-vs-metascore"
	queryMovieActors       = "movie-actors"
)

var queryNames = []string{queryTopByDecade, queryRatingStddev, queryRatingVsMetascore, queryMovieActors}

var queryActor *string

func init() {
	queryActor = queryCmd.Flags().String("actor", "", "Restrict movie-actors to one actor.")
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:       "query " + strings.Join(queryNames, "|") + " [--actor NAME]",
	Short:     "Runs one analytical query, prints it and saves it as CSV in the data directory.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: queryNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd)
		ctx := cmd.Context()
		name := args[0]

		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}

		header, rows, err := runQuery(ctx, storage.NewMovieQueries(store), name, *queryActor)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(a.out)
		t.SetStyle(table.StyleRounded)
		t.SetTitle(name)
		t.AppendHeader(toRow(header))
		for _, r := range rows {
			t.AppendRow(toRow(r))
		}
		t.Render()

		path := filepath.Join(a.cfg.DataDir, name+".csv")
		if err := storage.WriteCSVAtomic(path, header, rows); err != nil {
			return err
		}
		a.logger.Info("[query] %d rows saved to %s", len(rows), path)
		return nil
	},
}

// runQuery executes the named query and renders it as string records.
func runQuery(ctx context.Context, q *storage.MovieQueries, name, actor string) ([]string, [][]string, error) {
	var rows [][]string
	switch name {
	case queryTopByDecade:
		res, err := q.TopByDecade(ctx)
		if err != nil {
			return nil, nil, err
		}
		for _, d := range res {
			rows = append(rows, []string{strconv.Itoa(d.Decade), strconv.Itoa(d.Rank),
				strconv.FormatInt(d.MovieID, 10), d.Title, strconv.Itoa(d.Year), strconv.Itoa(d.Duration)})
		}
		return []string{"decade", "rank", "movie_id", "title", "year", "duration"}, rows, nil

	case queryRatingStddev:
		res, err := q.RatingStddevByYear(ctx)
		if err != nil {
			return nil, nil, err
		}
		for _, y := range res {
			rows = append(rows, []string{strconv.Itoa(y.Year), strconv.Itoa(y.Movies), formatFloat(&y.Stddev)})
		}
		return []string{"year", "movies", "rating_stddev"}, rows, nil

	case queryRatingVsMetascore:
		res, err := q.RatingVsMetascore(ctx)
		if err != nil {
			return nil, nil, err
		}
		for _, g := range res {
			rows = append(rows, []string{strconv.FormatInt(g.MovieID, 10), g.Title, formatFloat(&g.Rating),
				formatFloat(&g.Metascore), formatFloat(&g.AbsDiff), formatFloat(&g.RelativeDiff)})
		}
		return []string{"movie_id", "title", "rating", "metascore", "abs_diff", "relative_diff"}, rows, nil

	case queryMovieActors:
		res, err := q.MovieActors(ctx, actor)
		if err != nil {
			return nil, nil, err
		}
		for _, r := range res {
			rows = append(rows, []string{strconv.FormatInt(r.MovieID, 10), r.Title, formatInt(r.Year),
				formatFloat(r.Rating), formatInt(r.Duration), formatFloat(r.Metascore), r.ActorName})
		}
		return []string{"movie_id", "title", "year", "rating", "duration", "metascore", "actor_name"}, rows, nil
	}
	return nil, nil, fmt.Errorf("unknown query %q (want one of %s)", name, strings.Join(queryNames, ", "))
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
