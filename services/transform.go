package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"imdb-scraper/models"
	"imdb-scraper/utils"
)

// allColumns is the canonical column order of a Dataset.
var allColumns = []string{
	models.ColTitle, models.ColAlternateTitle, models.ColDatePublished, models.ColRating,
	models.ColDuration, models.ColDurationMinutes, models.ColMetascore, models.ColActors,
	models.ColMovieURL, models.ColMovieID,
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006-01", "2006"}

// Transformer applies the column coercions shared by the Refiner and the
// CSV/database exporters.
type Transformer struct {
	logger    *utils.Logger
	durations *DurationParser
}

// NewTransformer creates a Transformer with the given logger.
func NewTransformer(logger *utils.Logger) *Transformer {
	return &Transformer{logger: logger, durations: NewDurationParser(logger)}
}

// FromRaw coerces raw into a row. A non-empty rating or metascore that does
// not fit its column type is an error; an unparseable date is not.
func (t *Transformer) FromRaw(raw models.RawMovieRecord) (models.MovieRow, error) {
	row := models.MovieRow{
		Title:          raw.Title,
		AlternateTitle: raw.AlternateTitle,
		Duration:       raw.Duration,
		Actors:         raw.Actors,
		MovieURL:       raw.MovieURL,
		MovieID:        raw.MovieID,
	}

	if s := strings.TrimSpace(raw.Rating); s != "" {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return row, fmt.Errorf("rating %q: cannot coerce to float32: %w", raw.Rating, err)
		}
		r := float32(f)
		row.Rating = &r
	}

	if s := strings.TrimSpace(raw.Metascore); s != "" {
		m, err := toInt16(s)
		if err != nil {
			return row, fmt.Errorf("metascore %q: %w", raw.Metascore, err)
		}
		row.Metascore = &m
	}

	row.DatePublished = t.parseDate(raw.Title, raw.DatePublished)
	row.Year = yearOf(raw.DatePublished)
	row.DurationMinutes = t.durationMinutes(raw.Duration, raw.DurationMinutes)
	return row, nil
}

// FromValidated converts a validated record. Its values are already in
// range, so this never fails. A duration the Validator nulled stays null.
func (t *Transformer) FromValidated(v models.ValidatedMovieRecord) models.MovieRow {
	row := models.MovieRow{
		Title:          v.Title,
		AlternateTitle: v.AlternateTitle,
		Duration:       v.DurationISO,
		Actors:         v.Actors,
		MovieURL:       v.MovieURL,
		MovieID:        v.MovieID,
	}
	if v.Rating != nil {
		r := float32(*v.Rating)
		row.Rating = &r
	}
	if v.Metascore != nil {
		m := int16(math.Round(*v.Metascore))
		row.Metascore = &m
	}
	row.DatePublished = t.parseDate(v.Title, v.DatePublished)
	row.Year = v.Year
	if v.Duration != nil {
		m := float64(*v.Duration)
		row.DurationMinutes = &m
	}
	return row
}

func (t *Transformer) parseDate(title, s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return &d
		}
	}
	t.logger.Warn("[transform] %q: unparseable date_published %q, set to null", title, s)
	return nil
}

func (t *Transformer) durationMinutes(iso string, derived *float64) *float64 {
	if derived != nil {
		return derived
	}
	if strings.TrimSpace(iso) == "" {
		return nil
	}
	return t.durations.Minutes(iso)
}

// yearOf reads the year from the first four characters of datePublished,
// or nil when they are not a year in [minYear, maxYear].
func yearOf(datePublished string) *int {
	s := strings.TrimSpace(datePublished)
	if len(s) < 4 {
		return nil
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil || y < minYear || y > maxYear {
		return nil
	}
	return &y
}

func toInt16(s string) (int16, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot coerce to int16: %w", err)
	}
	if f != math.Trunc(f) || f < math.MinInt16 || f > math.MaxInt16 {
		return 0, fmt.Errorf("cannot coerce %v to int16", f)
	}
	return int16(f), nil
}

// NewDataset wraps rows and records which columns hold at least one value.
func NewDataset(rows []models.MovieRow) *models.Dataset {
	present := make(map[string]bool, len(allColumns))
	for _, r := range rows {
		present[models.ColTitle] = present[models.ColTitle] || r.Title != ""
		present[models.ColAlternateTitle] = present[models.ColAlternateTitle] || r.AlternateTitle != ""
		present[models.ColDatePublished] = present[models.ColDatePublished] || r.DatePublished != nil
		present[models.ColRating] = present[models.ColRating] || r.Rating != nil
		present[models.ColDuration] = present[models.ColDuration] || r.Duration != ""
		present[models.ColDurationMinutes] = present[models.ColDurationMinutes] || r.DurationMinutes != nil
		present[models.ColMetascore] = present[models.ColMetascore] || r.Metascore != nil
		present[models.ColActors] = present[models.ColActors] || len(DecodeActors(r.Actors)) > 0
		present[models.ColMovieURL] = present[models.ColMovieURL] || r.MovieURL != ""
		present[models.ColMovieID] = present[models.ColMovieID] || r.MovieID != ""
	}

	ds := &models.Dataset{Rows: rows}
	for _, c := range allColumns {
		if present[c] {
			ds.Columns = append(ds.Columns, c)
		}
	}
	return ds
}

// SelectColumns returns the desired columns that ds actually holds, in
// desired order.
func SelectColumns(ds *models.Dataset, desired []string) []string {
	have := make(map[string]bool, len(ds.Columns))
	for _, c := range ds.Columns {
		have[c] = true
	}
	var out []string
	for _, c := range desired {
		if have[c] {
			out = append(out, c)
		}
	}
	return out
}

// FormatRows renders ds as CSV records restricted to cols.
func FormatRows(ds *models.Dataset, cols []string) [][]string {
	out := make([][]string, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		rec := make([]string, len(cols))
		for i, c := range cols {
			rec[i] = formatCell(r, c)
		}
		out = append(out, rec)
	}
	return out
}

func formatCell(r models.MovieRow, col string) string {
	switch col {
	case models.ColTitle:
		return r.Title
	case models.ColAlternateTitle:
		return r.AlternateTitle
	case models.ColDatePublished:
		if r.DatePublished == nil {
			return ""
		}
		return r.DatePublished.Format("2006-01-02")
	case models.ColRating:
		if r.Rating == nil {
			return ""
		}
		return strconv.FormatFloat(float64(*r.Rating), 'f', -1, 32)
	case models.ColDuration:
		return r.Duration
	case models.ColDurationMinutes:
		if r.DurationMinutes == nil {
			return ""
		}
		return strconv.FormatFloat(*r.DurationMinutes, 'f', -1, 64)
	case models.ColMetascore:
		if r.Metascore == nil {
			return ""
		}
		return strconv.Itoa(int(*r.Metascore))
	case models.ColActors:
		return EncodeActors(DecodeActors(r.Actors))
	case models.ColMovieURL:
		return r.MovieURL
	case models.ColMovieID:
		return r.MovieID
	}
	return ""
}
