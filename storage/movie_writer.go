package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"imdb-scraper/models"
)

// actorBatchSize bounds the bind parameters of one multi-row actor insert.
const actorBatchSize = 200

// InsertMovies writes movies and their actors inside tx and sets the
// generated IDs on them. Nothing is visible to other sessions until the
// caller commits.
func InsertMovies(ctx context.Context, tx *sql.Tx, d Dialect, movies []*models.Movie) error {
	var actors []*models.Actor
	for _, m := range movies {
		id, err := insertMovie(ctx, tx, d, m)
		if err != nil {
			return fmt.Errorf("%s: insert movie %q: %w", d.Name, m.Title, err)
		}
		m.ID = id
		for i := range m.Actors {
			m.Actors[i].MovieID = id
			actors = append(actors, &m.Actors[i])
		}
	}

	for i := 0; i < len(actors); i += actorBatchSize {
		end := min(i+actorBatchSize, len(actors))
		if err := insertActorBatch(ctx, tx, d, actors[i:end]); err != nil {
			return fmt.Errorf("%s: insert actors: %w", d.Name, err)
		}
	}
	return nil
}

func insertMovie(ctx context.Context, tx *sql.Tx, d Dialect, m *models.Movie) (int64, error) {
	query := d.Rebind(`INSERT INTO movies (title, year, rating, duration, metascore) VALUES (?, ?, ?, ?, ?)`)
	args := []any{m.Title, m.Year, m.Rating, m.Duration, m.Metascore}

	if d.returning {
		var id int64
		err := tx.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id)
		return id, err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertActorBatch(ctx context.Context, tx *sql.Tx, d Dialect, batch []*models.Actor) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*2)

	for idx, a := range batch {
		base := idx * 2
		valueStrings = append(valueStrings,
			fmt.Sprintf("(%s,%s)", d.Placeholder(base+1), d.Placeholder(base+2)))
		valueArgs = append(valueArgs, a.MovieID, a.Name)
	}

	query := fmt.Sprintf(`INSERT INTO actors (movie_id, name) VALUES %s`, strings.Join(valueStrings, ","))
	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}
