package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// RawMovieRecord holds one movie exactly as the page-parse stage produced it.
// It is written to the staging JSON file before any cleaning.
type RawMovieRecord struct {
	Title          string `json:"title"`
	AlternateTitle string `json:"alternate_title"`
	Rating         string `json:"rating"`
	Duration       string `json:"duration"`
	MovieURL       string `json:"movie_url"`
	MovieID        string `json:"movie_id"`
	DatePublished  string `json:"date_published"`
	// Actors is a []string, a []any of names, a string holding a literal
	// list, a delimited string, or nil.
	Actors    any    `json:"actors"`
	Metascore string `json:"metascore"`

	// DurationMinutes is only present on records re-read from a refined
	// dataset.
	DurationMinutes *float64 `json:"duration_minutes,omitempty"`
}

// UnmarshalJSON accepts numbers and nulls wherever a string is expected,
// since rating/metascore arrive as JSON numbers from some producers.
func (r *RawMovieRecord) UnmarshalJSON(b []byte) error {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*r = RawMovieRecordFromMap(m)
	return nil
}

// RawMovieRecordFromMap builds a record from a loosely typed mapping.
func RawMovieRecordFromMap(m map[string]any) RawMovieRecord {
	r := RawMovieRecord{
		Title:          text(m["title"]),
		AlternateTitle: text(m["alternate_title"]),
		Rating:         text(m["rating"]),
		Duration:       text(m["duration"]),
		MovieURL:       text(m["movie_url"]),
		MovieID:        text(m["movie_id"]),
		DatePublished:  text(m["date_published"]),
		Actors:         m["actors"],
		Metascore:      text(m["metascore"]),
	}
	if v, ok := m["duration_minutes"]; ok && v != nil {
		if f, err := strconv.ParseFloat(text(v), 64); err == nil {
			r.DurationMinutes = &f
		}
	}
	return r
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// ScrapedItem is one element of the staging JSON array. The movie payload is
// nested under "info_movie".
type ScrapedItem struct {
	InfoMovie RawMovieRecord `json:"info_movie"`
}

// UnmarshalJSON also accepts a bare record without the "info_movie" wrapper.
func (it *ScrapedItem) UnmarshalJSON(b []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	payload := b
	if nested, ok := probe["info_movie"]; ok {
		payload = nested
	}
	return json.Unmarshal(payload, &it.InfoMovie)
}

// FieldIssue records why a field was dropped to null during validation.
type FieldIssue struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// ValidatedMovieRecord is a raw record after coercion and range checks. Nil
// pointers mean the value was absent or rejected; Issues says why.
type ValidatedMovieRecord struct {
	Title          string   `json:"title"`
	AlternateTitle string   `json:"alternate_title,omitempty"`
	Rating         *float64 `json:"rating"`
	Year           *int     `json:"year"`
	// Duration is in whole minutes.
	Duration *int `json:"duration"`
	// DurationISO keeps the original ISO-8601 text.
	DurationISO   string   `json:"duration_iso,omitempty"`
	Metascore     *float64 `json:"metascore"`
	Actors        []string `json:"actors"`
	MovieURL      string   `json:"movie_url"`
	MovieID       string   `json:"movie_id,omitempty"`
	DatePublished string   `json:"date_published,omitempty"`

	Issues []FieldIssue `json:"-"`
}

// ValidatedItem wraps a validated record the same way ScrapedItem wraps a raw
// one, so exported JSON keeps the staging shape.
type ValidatedItem struct {
	InfoMovie ValidatedMovieRecord `json:"info_movie"`
}

// Dataset column names.
const (
	ColTitle           = "title"
	ColAlternateTitle  = "alternate_title"
	ColDatePublished   = "date_published"
	ColRating          = "rating"
	ColDuration        = "duration"
	ColDurationMinutes = "duration_minutes"
	ColMetascore       = "metascore"
	ColActors          = "actors"
	ColMovieURL        = "movie_url"
	ColMovieID         = "movie_id"
)

// OutputColumns is the fixed column order of the refined CSV.
var OutputColumns = []string{
	ColTitle, ColDatePublished, ColRating, ColDurationMinutes, ColMetascore, ColActors, ColMovieURL,
}

// MovieRow is one row of the refined tabular dataset.
type MovieRow struct {
	Title           string
	AlternateTitle  string
	DatePublished   *time.Time
	// Year comes from the first four characters of date_published, so it
	// survives dates that do not parse as a whole.
	Year            *int
	Rating          *float32
	Duration        string
	DurationMinutes *float64
	Metascore       *int16
	// Actors is opaque here; RecordBuilder decodes it.
	Actors   any
	MovieURL string
	MovieID  string
}

// Dataset is the tabular form of a batch. Columns lists the columns that
// hold a value in at least one row, in canonical order.
type Dataset struct {
	Columns []string
	Rows    []MovieRow
}

// Movie is the persisted entity. It owns its actors.
type Movie struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Year      *int     `json:"year"`
	Rating    *float64 `json:"rating"`
	Duration  *int     `json:"duration"`
	Metascore *float64 `json:"metascore"`
	Actors    []Actor  `json:"actors,omitempty"`
}

// Actor belongs to exactly one movie.
type Actor struct {
	ID      int64  `json:"id"`
	MovieID int64  `json:"movie_id"`
	Name    string `json:"name"`
}

// ActorNames returns the names of m's actors in order.
func (m *Movie) ActorNames() []string {
	names := make([]string, 0, len(m.Actors))
	for _, a := range m.Actors {
		names = append(names, a.Name)
	}
	return names
}
