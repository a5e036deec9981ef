package storage

import (
	"fmt"
	"strings"
)

// Dialect holds the SQL differences between backends.
type Dialect struct {
	Name string
	// numbered placeholders ($1, $2) instead of "?"
	numbered bool
	// INSERT ... RETURNING id instead of LastInsertId
	returning bool
	// expression mapping a year column to its decade
	decade string
	schema []string
}

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Rebind rewrites a query written with "?" placeholders for d.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Schema returns the DDL statements in execution order.
func (d Dialect) Schema() []string { return d.schema }

const movieActorView = `movie_actor_view AS
	SELECT m.id AS movie_id, m.title, m.year, m.rating, m.duration, m.metascore, a.name AS actor_name
	FROM movies m
	JOIN actors a ON a.movie_id = m.id`

var postgresDialect = Dialect{
	Name:      "postgresql",
	numbered:  true,
	returning: true,
	decade:    "(year / 10) * 10",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS movies (
			id        SERIAL PRIMARY KEY,
			title     TEXT NOT NULL,
			year      INTEGER,
			rating    DOUBLE PRECISION,
			duration  INTEGER,
			metascore DOUBLE PRECISION
		)`,
		`CREATE TABLE IF NOT EXISTS actors (
			id       SERIAL PRIMARY KEY,
			movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
			name     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actors_movie_id ON actors(movie_id)`,
		`CREATE INDEX IF NOT EXISTS idx_actors_name     ON actors(name)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_year     ON movies(year)`,
		`CREATE OR REPLACE VIEW ` + movieActorView,
	},
}

var mysqlDialect = Dialect{
	Name:   "mysql",
	decade: "FLOOR(year / 10) * 10",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS movies (
			id        INT AUTO_INCREMENT PRIMARY KEY,
			title     VARCHAR(255) NOT NULL,
			year      INT NULL,
			rating    DOUBLE NULL,
			duration  INT NULL,
			metascore DOUBLE NULL,
			INDEX idx_movies_year (year)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS actors (
			id       INT AUTO_INCREMENT PRIMARY KEY,
			movie_id INT NOT NULL,
			name     VARCHAR(255) NOT NULL,
			INDEX idx_actors_name (name),
			CONSTRAINT fk_actors_movie FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE OR REPLACE VIEW ` + movieActorView,
	},
}

var sqliteDialect = Dialect{
	Name:   "sqlite",
	decade: "(year / 10) * 10",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS movies (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			title     TEXT NOT NULL,
			year      INTEGER,
			rating    REAL,
			duration  INTEGER,
			metascore REAL
		)`,
		`CREATE TABLE IF NOT EXISTS actors (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
			name     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actors_movie_id ON actors(movie_id)`,
		`CREATE INDEX IF NOT EXISTS idx_actors_name     ON actors(name)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_year     ON movies(year)`,
		`CREATE VIEW IF NOT EXISTS ` + movieActorView,
	},
}
