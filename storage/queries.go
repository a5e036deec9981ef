package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"imdb-scraper/models"
)

// ErrNotFound is returned by MovieByID when no movie has the given id.
var ErrNotFound = errors.New("storage: not found")

const (
	decadeTopN         = 5
	ratingGapThreshold = 0.20
)

// MovieQueries runs the read-only analytical queries against one backend.
type MovieQueries struct {
	db      *sql.DB
	dialect Dialect
}

// NewMovieQueries creates a MovieQueries bound to s's pool.
func NewMovieQueries(s ConnectionStrategy) *MovieQueries {
	return &MovieQueries{db: s.DB(), dialect: s.Dialect()}
}

// AllMovies retrieves every stored movie with its actors, ordered by id.
func (q *MovieQueries) AllMovies(ctx context.Context) ([]*models.Movie, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, title, year, rating, duration, metascore
		FROM movies
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch movies: %w", q.dialect.Name, err)
	}
	defer rows.Close()

	var movies []*models.Movie
	byID := make(map[int64]*models.Movie)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan movie: %w", q.dialect.Name, err)
		}
		movies = append(movies, m)
		byID[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	actors, err := q.db.QueryContext(ctx, `SELECT id, movie_id, name FROM actors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch actors: %w", q.dialect.Name, err)
	}
	defer actors.Close()

	for actors.Next() {
		var a models.Actor
		if err := actors.Scan(&a.ID, &a.MovieID, &a.Name); err != nil {
			return nil, fmt.Errorf("%s: scan actor: %w", q.dialect.Name, err)
		}
		if m, ok := byID[a.MovieID]; ok {
			m.Actors = append(m.Actors, a)
		}
	}
	return movies, actors.Err()
}

// MovieByID returns one movie with its actors.
func (q *MovieQueries) MovieByID(ctx context.Context, id int64) (*models.Movie, error) {
	row := q.db.QueryRowContext(ctx, q.dialect.Rebind(`
		SELECT id, title, year, rating, duration, metascore
		FROM movies
		WHERE id = ?
	`), id)
	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: fetch movie %d: %w", q.dialect.Name, id, err)
	}

	rows, err := q.db.QueryContext(ctx, q.dialect.Rebind(`SELECT id, movie_id, name FROM actors WHERE movie_id = ? ORDER BY id`), id)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch actors of %d: %w", q.dialect.Name, id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Actor
		if err := rows.Scan(&a.ID, &a.MovieID, &a.Name); err != nil {
			return nil, err
		}
		m.Actors = append(m.Actors, a)
	}
	return m, rows.Err()
}

// TopByDecade ranks the longest movies of every decade and keeps the top 5.
func (q *MovieQueries) TopByDecade(ctx context.Context) ([]models.DecadeMovie, error) {
	query := fmt.Sprintf(`
		SELECT decade, rn, id, title, year, duration FROM (
			SELECT %[1]s AS decade, id, title, year, duration,
				ROW_NUMBER() OVER (PARTITION BY %[1]s ORDER BY duration DESC, id) AS rn
			FROM movies
			WHERE year IS NOT NULL AND duration IS NOT NULL
		) ranked
		WHERE rn <= %[2]d
		ORDER BY decade, rn
	`, q.dialect.decade, decadeTopN)

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: top by decade: %w", q.dialect.Name, err)
	}
	defer rows.Close()

	out := []models.DecadeMovie{}
	for rows.Next() {
		var d models.DecadeMovie
		var decade float64
		if err := rows.Scan(&decade, &d.Rank, &d.MovieID, &d.Title, &d.Year, &d.Duration); err != nil {
			return nil, fmt.Errorf("%s: scan decade row: %w", q.dialect.Name, err)
		}
		d.Decade = int(decade)
		out = append(out, d)
	}
	return out, rows.Err()
}

// RatingStddevByYear computes the sample standard deviation of ratings per
// release year, rounded to 2 places. It is computed here rather than in SQL
// because SQLite has no STDDEV aggregate.
func (q *MovieQueries) RatingStddevByYear(ctx context.Context) ([]models.YearRatingStddev, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT year, rating
		FROM movies
		WHERE year IS NOT NULL
		ORDER BY year
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: rating stddev: %w", q.dialect.Name, err)
	}
	defer rows.Close()

	ratings := make(map[int][]float64)
	counts := make(map[int]int)
	for rows.Next() {
		var year int
		var rating sql.NullFloat64
		if err := rows.Scan(&year, &rating); err != nil {
			return nil, err
		}
		counts[year]++
		if rating.Valid {
			ratings[year] = append(ratings[year], rating.Float64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]models.YearRatingStddev, 0, len(years))
	for _, y := range years {
		out = append(out, models.YearRatingStddev{Year: y, Movies: counts[y], Stddev: round2(sampleStddev(ratings[y]))})
	}
	return out, nil
}

// RatingVsMetascore lists movies whose rating differs from metascore/10 by
// more than 20% of the rating, largest relative difference first.
func (q *MovieQueries) RatingVsMetascore(ctx context.Context) ([]models.RatingGap, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, title, rating, metascore
		FROM movies
		WHERE rating IS NOT NULL AND metascore IS NOT NULL AND rating > 0
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: rating vs metascore: %w", q.dialect.Name, err)
	}
	defer rows.Close()

	out := []models.RatingGap{}
	for rows.Next() {
		var g models.RatingGap
		if err := rows.Scan(&g.MovieID, &g.Title, &g.Rating, &g.Metascore); err != nil {
			return nil, err
		}
		abs := math.Abs(g.Rating - g.Metascore/10.0)
		rel := abs / g.Rating
		if rel <= ratingGapThreshold {
			continue
		}
		g.AbsDiff, g.RelativeDiff = round2(abs), round2(rel)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].RelativeDiff > out[j].RelativeDiff })
	return out, nil
}

// MovieActors reads movie_actor_view, optionally restricted to one actor.
func (q *MovieQueries) MovieActors(ctx context.Context, actorName string) ([]models.MovieActorRow, error) {
	query := `SELECT movie_id, title, year, rating, duration, metascore, actor_name FROM movie_actor_view`
	var args []any
	if actorName != "" {
		query += ` WHERE actor_name = ?`
		args = append(args, actorName)
	}
	query += ` ORDER BY movie_id, actor_name`

	rows, err := q.db.QueryContext(ctx, q.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: movie actors: %w", q.dialect.Name, err)
	}
	defer rows.Close()

	out := []models.MovieActorRow{}
	for rows.Next() {
		var r models.MovieActorRow
		var year, duration sql.NullInt64
		var rating, metascore sql.NullFloat64
		if err := rows.Scan(&r.MovieID, &r.Title, &year, &rating, &duration, &metascore, &r.ActorName); err != nil {
			return nil, err
		}
		r.Year, r.Duration = intPtr(year), intPtr(duration)
		r.Rating, r.Metascore = floatPtr(rating), floatPtr(metascore)
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(s scanner) (*models.Movie, error) {
	m := &models.Movie{}
	var year, duration sql.NullInt64
	var rating, metascore sql.NullFloat64
	if err := s.Scan(&m.ID, &m.Title, &year, &rating, &duration, &metascore); err != nil {
		return nil, err
	}
	m.Year, m.Duration = intPtr(year), intPtr(duration)
	m.Rating, m.Metascore = floatPtr(rating), floatPtr(metascore)
	return m, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return &n.Float64
}

func sampleStddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return math.Sqrt(sq / float64(len(xs)-1))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
