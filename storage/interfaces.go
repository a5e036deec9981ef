package storage

import (
	"context"
	"database/sql"
)

// ConnectionStrategy is the interface every database backend must satisfy.
type ConnectionStrategy interface {
	// Name is the registry name of the backend ("postgresql", "mysql", "sqlite").
	Name() string
	Dialect() Dialect
	// DB exposes the pool for read-only queries.
	DB() *sql.DB
	// Connect returns a pinged connection. Callers must Close it.
	Connect(ctx context.Context) (*sql.Conn, error)
	// ValidateConnection runs a trivial probe query.
	ValidateConnection(ctx context.Context) bool
	// EnsureSchema creates the tables and view if they are absent.
	EnsureSchema(ctx context.Context) error
	Close() error
}
