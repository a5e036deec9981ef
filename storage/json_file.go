package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"imdb-scraper/models"
)

// WriteJSONAtomic encodes v as indented UTF-8 JSON and writes it atomically.
func WriteJSONAtomic(path string, v any) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("json: encode: %w", err)
		}
		return nil
	})
}

// ReadStagingJSON loads the staging file written by the scrape stage.
func ReadStagingJSON(path string) ([]models.ScrapedItem, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("json: read %q: %w", path, err)
	}
	var items []models.ScrapedItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json: decode %q: %w", path, err)
	}
	return items, nil
}
