package services

import (
	"errors"
	"strings"

	"github.com/sosodev/duration"

	"imdb-scraper/utils"
)

var errEmptyDuration = errors.New("empty duration")

// DurationParser converts ISO-8601 durations ("PT2H22M") to minutes.
type DurationParser struct {
	logger *utils.Logger
}

// NewDurationParser creates a DurationParser with the given logger.
func NewDurationParser(logger *utils.Logger) *DurationParser {
	return &DurationParser{logger: logger}
}

// Minutes returns the total minutes in iso, or nil when iso cannot be parsed.
// Failures are logged, never returned.
func (p *DurationParser) Minutes(iso string) *float64 {
	m, err := parseMinutes(iso)
	if err != nil {
		p.logger.Warn("[duration] cannot parse %q: %v", iso, err)
		return nil
	}
	return &m
}

func parseMinutes(iso string) (float64, error) {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return 0, errEmptyDuration
	}
	d, err := duration.Parse(iso)
	if err != nil {
		return 0, err
	}
	return d.ToTimeDuration().Minutes(), nil
}
