package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"imdb-scraper/models"
	"imdb-scraper/utils"
)

const (
	topRatedLimit  = 5
	topActorsLimit = 10
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes summary statistics over persisted movies.
func (s *InsightService) Generate(movies []*models.Movie) *models.InsightReport {
	report := &models.InsightReport{
		MoviesByDecade: make(map[int]int),
	}

	if len(movies) == 0 {
		return report
	}

	report.TotalMovies = len(movies)

	var rated []*models.Movie
	var ratingSum, minutesSum float64
	var timed int
	actorMovies := make(map[string]int)

	for _, m := range movies {
		if m.Rating != nil {
			rated = append(rated, m)
			ratingSum += *m.Rating
		}
		if m.Duration != nil {
			timed++
			minutesSum += float64(*m.Duration)
			if report.Longest == nil || *m.Duration > *report.Longest.Duration {
				report.Longest = m
			}
		}
		if m.Year != nil {
			report.MoviesByDecade[*m.Year/10*10]++
		}
		seen := make(map[string]bool, len(m.Actors))
		for _, a := range m.Actors {
			if !seen[a.Name] {
				seen[a.Name] = true
				actorMovies[a.Name]++
			}
		}
	}

	report.RatedMovies = len(rated)
	if len(rated) > 0 {
		report.AverageRating = round2(ratingSum / float64(len(rated)))
	}
	if timed > 0 {
		report.AverageMinutes = round2(minutesSum / float64(timed))
	}

	sort.SliceStable(rated, func(i, j int) bool {
		return *rated[i].Rating > *rated[j].Rating
	})
	if len(rated) > topRatedLimit {
		rated = rated[:topRatedLimit]
	}
	report.TopRated = rated

	for name, n := range actorMovies {
		report.TopActors = append(report.TopActors, models.ActorCount{Name: name, Movies: n})
	}
	sort.Slice(report.TopActors, func(i, j int) bool {
		a, b := report.TopActors[i], report.TopActors[j]
		if a.Movies != b.Movies {
			return a.Movies > b.Movies
		}
		return a.Name < b.Name
	})
	if len(report.TopActors) > topActorsLimit {
		report.TopActors = report.TopActors[:topActorsLimit]
	}

	s.logger.Debug("[insights] report over %d movies (%d rated)", report.TotalMovies, report.RatedMovies)
	return report
}

// Print renders r as a set of tables on w.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  IMDB TOP CHART INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	overview := newTable(w, "Overview")
	overview.AppendRows([]table.Row{
		{"Movies stored", r.TotalMovies},
		{"Movies with rating", r.RatedMovies},
		{"Average rating", fmt.Sprintf("%.2f", r.AverageRating)},
		{"Average runtime (min)", fmt.Sprintf("%.2f", r.AverageMinutes)},
	})
	if r.Longest != nil {
		overview.AppendRow(table.Row{"Longest movie", fmt.Sprintf("%s (%d min)", truncate(r.Longest.Title, 40), *r.Longest.Duration)})
	}
	overview.Render()

	top := newTable(w, fmt.Sprintf("Top %d Highest Rated", topRatedLimit))
	top.AppendHeader(table.Row{"#", "Title", "Year", "Rating"})
	for i, m := range r.TopRated {
		year := "-"
		if m.Year != nil {
			year = fmt.Sprint(*m.Year)
		}
		top.AppendRow(table.Row{i + 1, truncate(m.Title, 40), year, fmt.Sprintf("%.1f ★", *m.Rating)})
	}
	top.Render()

	if len(r.MoviesByDecade) > 0 {
		decades := make([]int, 0, len(r.MoviesByDecade))
		for d := range r.MoviesByDecade {
			decades = append(decades, d)
		}
		sort.Ints(decades)

		byDecade := newTable(w, "Movies by Decade")
		for _, d := range decades {
			n := r.MoviesByDecade[d]
			byDecade.AppendRow(table.Row{fmt.Sprintf("%ds", d), strings.Repeat("█", n), n})
		}
		byDecade.Render()
	}

	if len(r.TopActors) > 0 {
		actors := newTable(w, "Most Frequent Actors")
		actors.AppendHeader(table.Row{"Actor", "Movies"})
		for _, a := range r.TopActors {
			actors.AppendRow(table.Row{a.Name, a.Movies})
		}
		actors.Render()
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	return t
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// truncate shortens s to max runes, ending in "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
