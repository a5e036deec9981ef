package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"imdb-scraper/utils"
)

const mysqlConnectTimeout = 10 * time.Second

// MySQLStrategy connects to MySQL through go-sql-driver/mysql.
type MySQLStrategy struct {
	sqlStrategy
}

// NewMySQLStrategy assembles the DSN from p and opens the pool.
func NewMySQLStrategy(p ConnectionParams, logger *utils.Logger) (*MySQLStrategy, error) {
	if p.Host == "" || p.Database == "" {
		return nil, fmt.Errorf("mysql: host and database are required")
	}

	db, err := sql.Open("mysql", mysqlDSN(p))
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	db.SetMaxIdleConns(poolIdle)
	db.SetMaxOpenConns(poolIdle + poolOverflow)
	db.SetConnMaxLifetime(poolRecycle)

	logger.Debug("[db:mysql] pool opened for %s:%s/%s", p.Host, p.Port, p.Database)
	return &MySQLStrategy{sqlStrategy{dialect: mysqlDialect, db: db, logger: logger}}, nil
}

func mysqlDSN(p ConnectionParams) string {
	timeout := p.ConnectTimeout
	if timeout <= 0 {
		timeout = mysqlConnectTimeout
	}

	cfg := mysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = p.Host
	if p.Port != "" {
		cfg.Addr = p.Host + ":" + p.Port
	}
	cfg.DBName = p.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Timeout = timeout
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}
