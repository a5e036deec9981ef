package storage

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"imdb-scraper/utils"
)

const (
	sqliteMemory      = ":memory:"
	sqliteBusyTimeout = 20 * time.Second
)

// SQLiteStrategy stores everything in a single local file. It is also the
// fallback backend.
type SQLiteStrategy struct {
	sqlStrategy
	path string
}

// NewSQLiteStrategy resolves p.Path to an absolute path, creates its parent
// directory and opens the database in WAL mode. ":memory:" opens a private
// in-memory database limited to one connection.
func NewSQLiteStrategy(p ConnectionParams, logger *utils.Logger) (*SQLiteStrategy, error) {
	path := p.Path
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	if path != sqliteMemory {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("sqlite: resolve %q: %w", path, err)
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return nil, fmt.Errorf("sqlite: %q is a directory", abs)
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir for %q: %w", abs, err)
		}
		path = abs
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if path == sqliteMemory {
		// Every new connection would see a fresh empty database.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	}

	logger.Debug("[db:sqlite] opened %s", path)
	return &SQLiteStrategy{sqlStrategy: sqlStrategy{dialect: sqliteDialect, db: db, logger: logger}, path: path}, nil
}

// Path is the absolute database path, or ":memory:".
func (s *SQLiteStrategy) Path() string { return s.path }

func sqliteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", sqliteBusyTimeout.Milliseconds()))
	if path != sqliteMemory {
		q.Add("_pragma", "journal_mode(WAL)")
		q.Add("_pragma", "synchronous(NORMAL)")
	}
	return path + "?" + q.Encode()
}
