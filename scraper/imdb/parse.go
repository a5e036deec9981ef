package imdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/titanous/json5"

	"imdb-scraper/models"
)

// ChartURL is the IMDb Top 250 chart.
const ChartURL = "https://www.imdb.com/chart/top/"

// ErrNoStructuredData is returned when a page carries no ld+json block.
var ErrNoStructuredData = errors.New("imdb: no ld+json data on page")

var metascorePattern = regexp.MustCompile(`"score":([\d.]+)`)

type chartPage struct {
	ItemListElement []struct {
		Item chartItem `json:"item"`
	} `json:"itemListElement"`
}

type chartItem struct {
	Name            string `json:"name"`
	AlternateName   string `json:"alternateName"`
	URL             string `json:"url"`
	Duration        string `json:"duration"`
	AggregateRating struct {
		// a JSON number, sometimes a string
		RatingValue any `json:"ratingValue"`
	} `json:"aggregateRating"`
}

type detailPage struct {
	DatePublished string `json:"datePublished"`
	Actor         []struct {
		Name string `json:"name"`
	} `json:"actor"`
}

// ParseChart extracts at most limit movies from the chart page, in chart
// order. A limit of 0 or less keeps every movie.
func ParseChart(html string, limit int) ([]models.RawMovieRecord, error) {
	var page chartPage
	if err := decodeStructuredData(html, &page); err != nil {
		return nil, err
	}
	if len(page.ItemListElement) == 0 {
		return nil, fmt.Errorf("imdb: chart has no items")
	}

	items := page.ItemListElement
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	out := make([]models.RawMovieRecord, 0, len(items))
	for _, el := range items {
		it := el.Item
		out = append(out, models.RawMovieRecord{
			Title:          it.Name,
			AlternateTitle: it.AlternateName,
			Rating:         numberText(it.AggregateRating.RatingValue),
			Duration:       it.Duration,
			MovieURL:       it.URL,
			MovieID:        MovieID(it.URL),
			Actors:         []string{},
		})
	}
	return out, nil
}

// ParseDetail enriches rec with the release date, cast and metascore found
// on its detail page. rec is left untouched when the page has no usable
// ld+json block.
func ParseDetail(html string, rec *models.RawMovieRecord) error {
	var page detailPage
	if err := decodeStructuredData(html, &page); err != nil {
		return err
	}

	actors := make([]string, 0, len(page.Actor))
	for _, a := range page.Actor {
		if a.Name != "" {
			actors = append(actors, a.Name)
		}
	}

	rec.DatePublished = page.DatePublished
	rec.Actors = actors
	rec.Metascore = Metascore(html)
	return nil
}

// Metascore returns the first "score":N value in the page body, or "".
func Metascore(body string) string {
	if m := metascorePattern.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}

func numberText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// MovieID is the last non-empty path segment of a title URL
// ("https://www.imdb.com/title/tt0111161/" -> "tt0111161").
func MovieID(url string) string {
	parts := strings.FieldsFunc(url, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// decodeStructuredData unmarshals the first ld+json script of html into v.
// IMDb occasionally emits blocks strict JSON rejects, so json5 is tried
// second.
func decodeStructuredData(html string, v any) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("imdb: parse html: %w", err)
	}

	raw := strings.TrimSpace(doc.Find(`script[type="application/ld+json"]`).First().Text())
	if raw == "" {
		return ErrNoStructuredData
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		if err5 := json5.Unmarshal([]byte(raw), v); err5 != nil {
			return fmt.Errorf("imdb: decode ld+json: %w", err)
		}
	}
	return nil
}
