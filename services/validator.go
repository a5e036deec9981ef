package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"imdb-scraper/models"
	"imdb-scraper/utils"
)

// Accepted ranges. Values outside them become null, never clamped.
const (
	minRating    = 0.0
	maxRating    = 10.0
	minYear      = 1888
	maxYear      = 2030
	minDuration  = 1
	maxDuration  = 1000
	minMetascore = 0.0
	maxMetascore = 100.0
)

// ValidationError rejects a whole record.
type ValidationError struct {
	Field string
	Value any
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s (field=%s value=%q)", e.Msg, e.Field, fmt.Sprint(e.Value))
}

// Validator turns raw records into validated ones. Every field is coerced
// independently; a missing title is the only failure that rejects a record.
type Validator struct {
	logger    *utils.Logger
	durations *DurationParser
}

// NewValidator creates a Validator with the given logger.
func NewValidator(logger *utils.Logger) *Validator {
	return &Validator{logger: logger, durations: NewDurationParser(logger)}
}

// Validate checks and normalises raw. It returns a *ValidationError when the
// title is blank; every other bad field degrades to nil with a FieldIssue.
func (v *Validator) Validate(raw models.RawMovieRecord) (models.ValidatedMovieRecord, error) {
	out := models.ValidatedMovieRecord{
		AlternateTitle: raw.AlternateTitle,
		DurationISO:    raw.Duration,
		MovieURL:       raw.MovieURL,
		MovieID:        raw.MovieID,
		DatePublished:  raw.DatePublished,
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return out, &ValidationError{Field: models.ColTitle, Value: raw.Title, Msg: "title is required"}
	}
	out.Title = title

	out.Rating = v.floatInRange(&out, models.ColRating, raw.Rating, minRating, maxRating)
	out.Year = v.year(&out, raw.DatePublished)
	out.Duration = v.duration(&out, raw)
	out.Metascore = v.floatInRange(&out, models.ColMetascore, raw.Metascore, minMetascore, maxMetascore)
	out.Actors = DecodeActors(raw.Actors)

	if u := strings.TrimSpace(raw.MovieURL); u != "" &&
		!strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		v.logger.Warn("[validator] %q: movie_url looks malformed: %q", title, raw.MovieURL)
	}

	v.logger.Debug("[validator] validated %q (%d issues)", title, len(out.Issues))
	return out, nil
}

func (v *Validator) reject(rec *models.ValidatedMovieRecord, field, value, reason string) {
	rec.Issues = append(rec.Issues, models.FieldIssue{Field: field, Value: value, Reason: reason})
	v.logger.Warn("[validator] %q: %s %q %s, set to null", rec.Title, field, value, reason)
}

func (v *Validator) floatInRange(rec *models.ValidatedMovieRecord, field, raw string, lo, hi float64) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		v.reject(rec, field, raw, "is not numeric")
		return nil
	}
	if f < lo || f > hi {
		v.reject(rec, field, raw, fmt.Sprintf("is outside [%g, %g]", lo, hi))
		return nil
	}
	return &f
}

func (v *Validator) year(rec *models.ValidatedMovieRecord, datePublished string) *int {
	s := strings.TrimSpace(datePublished)
	if s == "" {
		return nil
	}
	if len(s) < 4 {
		v.reject(rec, "year", datePublished, "has no 4-digit year")
		return nil
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		v.reject(rec, "year", datePublished, "has no 4-digit year")
		return nil
	}
	if y < minYear || y > maxYear {
		v.reject(rec, "year", datePublished, fmt.Sprintf("is outside [%d, %d]", minYear, maxYear))
		return nil
	}
	return &y
}

// duration prefers an already derived duration_minutes and otherwise parses
// the ISO-8601 duration.
func (v *Validator) duration(rec *models.ValidatedMovieRecord, raw models.RawMovieRecord) *int {
	var minutes *float64
	switch {
	case raw.DurationMinutes != nil:
		minutes = raw.DurationMinutes
	case strings.TrimSpace(raw.Duration) != "":
		minutes = v.durations.Minutes(raw.Duration)
		if minutes == nil {
			v.reject(rec, models.ColDuration, raw.Duration, "is not an ISO-8601 duration")
			return nil
		}
	default:
		return nil
	}

	if math.IsNaN(*minutes) || math.IsInf(*minutes, 0) {
		v.reject(rec, models.ColDuration, raw.Duration, "is not numeric")
		return nil
	}
	if *minutes < minDuration || *minutes > maxDuration {
		v.reject(rec, models.ColDuration, strconv.FormatFloat(*minutes, 'f', -1, 64),
			fmt.Sprintf("is outside [%d, %d] minutes", minDuration, maxDuration))
		return nil
	}
	m := int(*minutes)
	return &m
}
