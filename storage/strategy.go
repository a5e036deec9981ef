package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"imdb-scraper/utils"
)

// Backend names accepted by NewStrategy.
const (
	BackendPostgres = "postgresql"
	BackendMySQL    = "mysql"
	BackendSQLite   = "sqlite"
)

// ErrNoBackend is returned when neither the preferred backend nor the SQLite
// fallback passes validation.
var ErrNoBackend = errors.New("storage: no database backend available")

// ConnectionParams carries the discrete settings a backend is built from.
// Host through SSLMode apply to Postgres and MySQL, Path to SQLite.
type ConnectionParams struct {
	Host           string
	Port           string
	User           string
	Password       string
	Database       string
	SSLMode        string
	Path           string
	ConnectTimeout time.Duration
}

type constructor func(p ConnectionParams, logger *utils.Logger) (ConnectionStrategy, error)

var registry = map[string]constructor{
	BackendPostgres: func(p ConnectionParams, l *utils.Logger) (ConnectionStrategy, error) {
		s, err := NewPostgresStrategy(p, l)
		if err != nil {
			return nil, err
		}
		return s, nil
	},
	BackendMySQL: func(p ConnectionParams, l *utils.Logger) (ConnectionStrategy, error) {
		s, err := NewMySQLStrategy(p, l)
		if err != nil {
			return nil, err
		}
		return s, nil
	},
	BackendSQLite: func(p ConnectionParams, l *utils.Logger) (ConnectionStrategy, error) {
		s, err := NewSQLiteStrategy(p, l)
		if err != nil {
			return nil, err
		}
		return s, nil
	},
}

var aliases = map[string]string{
	"postgres": BackendPostgres,
	"pg":       BackendPostgres,
	"sqlite3":  BackendSQLite,
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewStrategy builds the strategy registered under kind.
func NewStrategy(kind string, p ConnectionParams, logger *utils.Logger) (ConnectionStrategy, error) {
	if canonical, ok := aliases[kind]; ok {
		kind = canonical
	}
	ctor, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("storage: unknown backend %q", kind)
	}
	return ctor(p, logger)
}

// NewStrategyWithFallback builds and validates the preferred backend and
// falls back to SQLite when that fails. params maps backend name to its
// settings.
func NewStrategyWithFallback(ctx context.Context, preferred string, params map[string]ConnectionParams, logger *utils.Logger) (ConnectionStrategy, error) {
	if canonical, ok := aliases[preferred]; ok {
		preferred = canonical
	}

	candidates := []string{preferred}
	if preferred != BackendSQLite {
		candidates = append(candidates, BackendSQLite)
	}

	var errs []error
	for _, kind := range candidates {
		s, err := NewStrategy(kind, params[kind], logger)
		if err != nil {
			logger.Warn("[db] %s: %v", kind, err)
			errs = append(errs, err)
			continue
		}
		if s.ValidateConnection(ctx) {
			if kind != preferred {
				logger.Warn("[db] %s unavailable, falling back to %s", preferred, kind)
			}
			return s, nil
		}
		errs = append(errs, fmt.Errorf("storage: %s failed validation", kind))
		_ = s.Close()
	}

	logger.Critical("[db] every backend failed: %v", errors.Join(errs...))
	return nil, utils.Classify(utils.DatabaseError, fmt.Errorf("%w: %w", ErrNoBackend, errors.Join(errs...)))
}

// ProbeAll builds and validates every registered backend and reports which
// ones answered.
func ProbeAll(ctx context.Context, params map[string]ConnectionParams, logger *utils.Logger) map[string]bool {
	status := make(map[string]bool, len(registry))
	for _, kind := range Backends() {
		s, err := NewStrategy(kind, params[kind], logger)
		if err != nil {
			logger.Warn("[db] probe %s: %v", kind, err)
			status[kind] = false
			continue
		}
		status[kind] = s.ValidateConnection(ctx)
		_ = s.Close()
	}
	return status
}

// sqlStrategy implements ConnectionStrategy over a database/sql pool. The
// backend files only differ in how they open the pool.
type sqlStrategy struct {
	dialect Dialect
	db      *sql.DB
	logger  *utils.Logger
}

func (s *sqlStrategy) Name() string     { return s.dialect.Name }
func (s *sqlStrategy) Dialect() Dialect { return s.dialect }
func (s *sqlStrategy) DB() *sql.DB      { return s.db }

func (s *sqlStrategy) Connect(ctx context.Context) (*sql.Conn, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, utils.Classify(utils.DatabaseError, fmt.Errorf("%s: connect: %w", s.dialect.Name, err))
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, utils.Classify(utils.DatabaseError, fmt.Errorf("%s: ping: %w", s.dialect.Name, err))
	}
	return conn, nil
}

func (s *sqlStrategy) ValidateConnection(ctx context.Context) bool {
	conn, err := s.Connect(ctx)
	if err != nil {
		s.logger.Warn("[db:%s] validation failed: %v", s.dialect.Name, err)
		return false
	}
	defer conn.Close()

	var one int
	if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		s.logger.Warn("[db:%s] probe query failed: %v", s.dialect.Name, err)
		return false
	}
	s.logger.Debug("[db:%s] connection ok", s.dialect.Name)
	return true
}

// EnsureSchema runs the DDL one statement at a time; the MySQL driver does
// not accept multi-statement strings by default.
func (s *sqlStrategy) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return utils.Classify(utils.DatabaseError, fmt.Errorf("%s: migrate: %w", s.dialect.Name, err))
		}
	}
	return nil
}

func (s *sqlStrategy) Close() error {
	return s.db.Close()
}
