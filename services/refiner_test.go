package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"imdb-scraper/models"
	"imdb-scraper/storage"
	"imdb-scraper/utils"
)

func shawshank() models.ScrapedItem {
	return models.ScrapedItem{InfoMovie: models.RawMovieRecord{
		Title:         "The Shawshank Redemption",
		Rating:        "9.3",
		Duration:      "PT2H22M",
		MovieURL:      "https://www.imdb.com/title/tt0111161/",
		MovieID:       "tt0111161",
		DatePublished: "1994-09-23",
		Actors:        []any{"Tim Robbins", "Morgan Freeman"},
		Metascore:     "82",
	}}
}

func TestRefineWritesOutputColumns(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "out", "movies_info_refine.csv")
	r := NewRefiner(utils.NewNopLogger(), csvPath)

	ds := r.Refine([]models.ScrapedItem{shawshank()})
	if ds == nil {
		t.Fatal("Refine returned nil")
	}
	if len(ds.Rows) != 1 {
		t.Fatalf("rows = %d; want 1", len(ds.Rows))
	}

	row := ds.Rows[0]
	if row.Rating == nil || *row.Rating != float32(9.3) {
		t.Errorf("Rating = %v; want 9.3", row.Rating)
	}
	if row.Metascore == nil || *row.Metascore != 82 {
		t.Errorf("Metascore = %v; want 82", row.Metascore)
	}
	if row.DurationMinutes == nil || *row.DurationMinutes != 142 {
		t.Errorf("DurationMinutes = %v; want 142", row.DurationMinutes)
	}
	if row.DatePublished == nil || row.DatePublished.Year() != 1994 {
		t.Errorf("DatePublished = %v", row.DatePublished)
	}

	header, recs, err := storage.ReadCSV(csvPath)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if diff := cmp.Diff(models.OutputColumns, header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	want := [][]string{{
		"The Shawshank Redemption", "1994-09-23", "9.3", "142", "82",
		`["Tim Robbins","Morgan Freeman"]`, "https://www.imdb.com/title/tt0111161/",
	}}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestRefineBadDateBecomesNull(t *testing.T) {
	r := NewRefiner(utils.NewNopLogger(), filepath.Join(t.TempDir(), "out.csv"))
	item := shawshank()
	item.InfoMovie.DatePublished = "sometime in 1994"

	ds := r.Refine([]models.ScrapedItem{item})
	if ds == nil {
		t.Fatal("Refine returned nil")
	}
	if ds.Rows[0].DatePublished != nil {
		t.Errorf("DatePublished = %v; want nil", ds.Rows[0].DatePublished)
	}
}

func TestRefineCoercionFailureAborts(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "out.csv")
	r := NewRefiner(utils.NewNopLogger(), csvPath)

	bad := shawshank()
	bad.InfoMovie.Rating = "nine point three"

	if ds := r.Refine([]models.ScrapedItem{shawshank(), bad}); ds != nil {
		t.Fatalf("Refine = %+v; want nil", ds)
	}
	if _, err := os.Stat(csvPath); !os.IsNotExist(err) {
		t.Errorf("refined CSV should not exist, stat err = %v", err)
	}
}

func TestRefineEmptyInput(t *testing.T) {
	r := NewRefiner(utils.NewNopLogger(), filepath.Join(t.TempDir(), "out.csv"))
	if ds := r.Refine(nil); ds != nil {
		t.Errorf("Refine(nil) = %+v; want nil", ds)
	}
}

func TestRefineFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "movies_info.json")
	r := NewRefiner(utils.NewNopLogger(), filepath.Join(dir, "out.csv"))

	if ds := r.RefineFile(jsonPath); ds != nil {
		t.Errorf("RefineFile(missing) = %+v; want nil", ds)
	}

	b, err := json.Marshal([]models.ScrapedItem{shawshank(), shawshank()})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jsonPath, b, 0644); err != nil {
		t.Fatal(err)
	}

	ds := r.RefineFile(jsonPath)
	if ds == nil || len(ds.Rows) != 2 {
		t.Fatalf("RefineFile = %+v; want 2 rows", ds)
	}
}

func TestNewDatasetColumns(t *testing.T) {
	rating := float32(8.1)
	ds := NewDataset([]models.MovieRow{
		{Title: "A"},
		{Title: "B", Rating: &rating, Actors: "X;Y"},
	})

	want := []string{models.ColTitle, models.ColRating, models.ColActors}
	if diff := cmp.Diff(want, ds.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}

	got := SelectColumns(ds, []string{models.ColActors, models.ColMetascore, models.ColTitle})
	if diff := cmp.Diff([]string{models.ColActors, models.ColTitle}, got); diff != "" {
		t.Errorf("SelectColumns mismatch (-want +got):\n%s", diff)
	}
}

func TestFromRawMetascoreCoercion(t *testing.T) {
	tr := NewTransformer(utils.NewNopLogger())

	tests := []struct {
		in      string
		want    int16
		wantErr bool
	}{
		{"80", 80, false},
		{"80.0", 80, false},
		{"80.5", 0, true},
		{"high", 0, true},
	}

	for _, tt := range tests {
		row, err := tr.FromRaw(models.RawMovieRecord{Title: "X", Metascore: tt.in})
		if tt.wantErr {
			if err == nil {
				t.Errorf("FromRaw(metascore=%q) err = nil; want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("FromRaw(metascore=%q) err = %v", tt.in, err)
			continue
		}
		if row.Metascore == nil || *row.Metascore != tt.want {
			t.Errorf("FromRaw(metascore=%q) = %v; want %d", tt.in, row.Metascore, tt.want)
		}
	}
}
