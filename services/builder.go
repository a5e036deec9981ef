package services

import (
	"errors"
	"strconv"
	"strings"

	"imdb-scraper/models"
)

// ErrBlankTitle is returned by BuildMovie for rows without a usable title.
var ErrBlankTitle = errors.New("builder: row has no title")

// BuildMovie assembles a Movie with its Actors from one tabular row. The
// actors column goes through DecodeActors, so rows coming from raw JSON and
// from the refined CSV build identically.
func BuildMovie(row models.MovieRow) (*models.Movie, error) {
	title := strings.TrimSpace(row.Title)
	if title == "" {
		return nil, ErrBlankTitle
	}

	m := &models.Movie{Title: title}

	switch {
	case row.Year != nil:
		if y := *row.Year; y >= minYear && y <= maxYear {
			m.Year = &y
		}
	case row.DatePublished != nil:
		if y := row.DatePublished.Year(); y >= minYear && y <= maxYear {
			m.Year = &y
		}
	}
	if row.Rating != nil {
		// Format at 32-bit precision so 9.3f widens to 9.3, not 9.300000190734863.
		r, _ := strconv.ParseFloat(strconv.FormatFloat(float64(*row.Rating), 'f', -1, 32), 64)
		m.Rating = &r
	}
	if f := row.DurationMinutes; f != nil && *f >= minDuration && *f <= maxDuration {
		d := int(*f)
		m.Duration = &d
	}
	if row.Metascore != nil {
		s := float64(*row.Metascore)
		m.Metascore = &s
	}

	for _, name := range DecodeActors(row.Actors) {
		m.Actors = append(m.Actors, models.Actor{Name: name})
	}
	return m, nil
}
