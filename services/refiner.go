package services

import (
	"errors"
	"io/fs"

	"imdb-scraper/models"
	"imdb-scraper/storage"
	"imdb-scraper/utils"
)

// Refiner turns staged scrape output into the tabular dataset and writes it
// to the refined CSV.
type Refiner struct {
	logger    *utils.Logger
	transform *Transformer
	csvPath   string
}

// NewRefiner creates a Refiner that writes its output to csvPath.
func NewRefiner(logger *utils.Logger, csvPath string) *Refiner {
	return &Refiner{logger: logger, transform: NewTransformer(logger), csvPath: csvPath}
}

// RefineFile loads the staging JSON at jsonPath and refines it. A missing or
// unreadable file is logged and yields nil.
func (r *Refiner) RefineFile(jsonPath string) *models.Dataset {
	items, err := storage.ReadStagingJSON(jsonPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("[refiner] staging file %s does not exist", jsonPath)
		} else {
			r.logger.Error("[refiner] %v", utils.Classify(utils.FileIOError, err))
		}
		return nil
	}
	return r.Refine(items)
}

// Refine converts items into a Dataset and writes models.OutputColumns to
// the refined CSV. It returns nil when there is nothing to refine or when
// any row fails coercion; in that case no file is written.
func (r *Refiner) Refine(items []models.ScrapedItem) *models.Dataset {
	if len(items) == 0 {
		r.logger.Warn("[refiner] nothing to refine")
		return nil
	}

	rows := make([]models.MovieRow, 0, len(items))
	for i, it := range items {
		row, err := r.transform.FromRaw(it.InfoMovie)
		if err != nil {
			r.logger.Error("[refiner] row %d (%q): %v", i, it.InfoMovie.Title,
				utils.Classify(utils.ParsingError, err))
			return nil
		}
		rows = append(rows, row)
	}

	ds := NewDataset(rows)
	if err := storage.WriteCSVAtomic(r.csvPath, models.OutputColumns, FormatRows(ds, models.OutputColumns)); err != nil {
		r.logger.Error("[refiner] %v", utils.Classify(utils.FileIOError, err))
		return nil
	}

	r.logger.Info("[refiner] refined %d rows -> %s", len(ds.Rows), r.csvPath)
	return ds
}
