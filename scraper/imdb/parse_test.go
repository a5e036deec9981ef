package imdb

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"imdb-scraper/models"
)

const chartHTML = `<html><head>
<script type="application/ld+json">{"@type":"ItemList","itemListElement":[
 {"@type":"ListItem","item":{"@type":"Movie","url":"https://www.imdb.com/title/tt0111161/","name":"The Shawshank Redemption","alternateName":"Sueño de fuga","aggregateRating":{"@type":"AggregateRating","ratingValue":9.3},"duration":"PT2H22M"}},
 {"@type":"ListItem","item":{"@type":"Movie","url":"https://www.imdb.com/title/tt0068646/","name":"The Godfather","aggregateRating":{"ratingValue":9.2},"duration":"PT2H55M"}},
 {"@type":"ListItem","item":{"@type":"Movie","url":"","name":"No Link"}}
]}</script></head><body></body></html>`

const detailHTML = `<html><head>
<script type="application/ld+json">{"@type":"Movie","datePublished":"1994-10-14",
 "actor":[{"@type":"Person","name":"Tim Robbins"},{"@type":"Person","name":"Morgan Freeman"},{"@type":"Person"}]}</script>
</head><body><script>{"metacritic":{"metascore":{"score":82,"reviewCount":22}}}</script></body></html>`

func TestParseChart(t *testing.T) {
	got, err := ParseChart(chartHTML, 0)
	if err != nil {
		t.Fatalf("ParseChart returned %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d; want 3", len(got))
	}

	want := models.RawMovieRecord{
		Title:          "The Shawshank Redemption",
		AlternateTitle: "Sueño de fuga",
		Rating:         "9.3",
		Duration:       "PT2H22M",
		MovieURL:       "https://www.imdb.com/title/tt0111161/",
		MovieID:        "tt0111161",
		Actors:         []string{},
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("first record mismatch (-want +got):\n%s", diff)
	}
	if got[2].MovieURL != "" || got[2].Rating != "" {
		t.Errorf("record without url = %+v", got[2])
	}
}

func TestParseChartLimit(t *testing.T) {
	got, err := ParseChart(chartHTML, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d; want 2", len(got))
	}
}

func TestParseChartWithoutData(t *testing.T) {
	if _, err := ParseChart("<html><body>blocked</body></html>", 50); !errors.Is(err, ErrNoStructuredData) {
		t.Errorf("err = %v; want ErrNoStructuredData", err)
	}
}

func TestParseDetail(t *testing.T) {
	rec := models.RawMovieRecord{Title: "The Shawshank Redemption"}
	if err := ParseDetail(detailHTML, &rec); err != nil {
		t.Fatalf("ParseDetail returned %v", err)
	}
	if rec.DatePublished != "1994-10-14" {
		t.Errorf("DatePublished = %q", rec.DatePublished)
	}
	if diff := cmp.Diff([]string{"Tim Robbins", "Morgan Freeman"}, rec.Actors); diff != "" {
		t.Errorf("Actors mismatch (-want +got):\n%s", diff)
	}
	if rec.Metascore != "82" {
		t.Errorf("Metascore = %q; want 82", rec.Metascore)
	}
}

func TestParseDetailKeepsRecordWithoutData(t *testing.T) {
	rec := models.RawMovieRecord{Title: "X", Rating: "8.0"}
	if err := ParseDetail("<html></html>", &rec); err == nil {
		t.Fatal("ParseDetail returned nil error")
	}
	if rec.Rating != "8.0" || rec.DatePublished != "" {
		t.Errorf("record modified: %+v", rec)
	}
}

func TestMovieID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://www.imdb.com/title/tt0111161/", "tt0111161"},
		{"https://www.imdb.com/title/tt0111161", "tt0111161"},
		{"", ""},
		{"///", ""},
	}
	for _, tt := range tests {
		if got := MovieID(tt.in); got != tt.want {
			t.Errorf("MovieID(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestMetascore(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"score":82,"x":1}`, "82"},
		{`{"score":7.5}`, "7.5"},
		{`{"scores":82}`, ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Metascore(tt.in); got != tt.want {
			t.Errorf("Metascore(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
