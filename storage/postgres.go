package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"imdb-scraper/utils"
)

// Pool sizing for server backends: 5 idle connections kept warm, up to 10
// more on demand, recycled hourly.
const (
	poolIdle     = 5
	poolOverflow = 10
	poolRecycle  = time.Hour
)

// PostgresStrategy connects to PostgreSQL through lib/pq.
type PostgresStrategy struct {
	sqlStrategy
}

// NewPostgresStrategy assembles the DSN from p and opens the pool. No
// connection is made until Connect or ValidateConnection.
func NewPostgresStrategy(p ConnectionParams, logger *utils.Logger) (*PostgresStrategy, error) {
	if p.Host == "" || p.Database == "" {
		return nil, fmt.Errorf("postgres: host and database are required")
	}

	db, err := sql.Open("postgres", postgresDSN(p))
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxIdleConns(poolIdle)
	db.SetMaxOpenConns(poolIdle + poolOverflow)
	db.SetConnMaxLifetime(poolRecycle)

	logger.Debug("[db:postgresql] pool opened for %s:%s/%s", p.Host, p.Port, p.Database)
	return &PostgresStrategy{sqlStrategy{dialect: postgresDialect, db: db, logger: logger}}, nil
}

func postgresDSN(p ConnectionParams) string {
	sslmode := p.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	parts := []string{
		"host=" + p.Host,
		"port=" + p.Port,
		"user=" + p.User,
		"password=" + quoteDSNValue(p.Password),
		"dbname=" + p.Database,
		"sslmode=" + sslmode,
	}
	if p.ConnectTimeout > 0 {
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", int(p.ConnectTimeout.Seconds())))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue quotes values containing spaces or quotes for the key=value
// connection string format.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
