package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// DBKind selects the preferred backend: postgresql, mysql or sqlite.
	DBKind string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MySQLHost     string
	MySQLPort     string
	MySQLUser     string
	MySQLPassword string
	MySQLDB       string

	SQLitePath string

	DataDir         string
	StagingJSONName string
	RefinedCSVName  string
	ScrapeLimit     int
	Fetcher         string
	MaxConcurrency  int
	RateLimitMs     int
	RequestTimeout  time.Duration
	MaxRetries      int
	RetryBaseDelay  time.Duration
	ChromeBin       string
	HTTPPort        string
	RedisAddr       string
	RedisPassword   string
	RedisTTL        time.Duration
	LogDebug        bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DBKind: strings.ToLower(getEnv("DB", "postgresql")),

		PostgresHost:     getEnv("NAME_SERVICEDB", "localhost"),
		PostgresPort:     getEnv("PORT", "5432"),
		PostgresUser:     getEnv("USERDB", "imdb"),
		PostgresPassword: getEnv("PASSWORDDB", ""),
		PostgresDB:       getEnv("NAMEDB", "imdb_movies"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MySQLHost:     getEnv("MYSQL_HOST", "localhost"),
		MySQLPort:     getEnv("MYSQL_PORT", "3306"),
		MySQLUser:     getEnv("MYSQL_USER", "root"),
		MySQLPassword: getEnv("MYSQL_PASSWORD", ""),
		MySQLDB:       getEnv("MYSQL_DATABASE", "imdb_movies"),

		SQLitePath: getEnv("SQLITE_PATH", "imdb_movies.db"),

		DataDir:         getEnv("DATA_PATH", "./data"),
		StagingJSONName: getEnv("STAGING_JSON_NAME", "movies_info.json"),
		RefinedCSVName:  getEnv("REFINED_CSV_NAME", "movies_info_refine.csv"),
		ScrapeLimit:     getEnvInt("SCRAPE_LIMIT", 50),
		Fetcher:         strings.ToLower(getEnv("FETCHER", "http")),
		MaxConcurrency:  getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:     getEnvInt("RATE_LIMIT_MS", 1000),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxRetries:      getEnvInt("MAX_RETRIES", 3),
		RetryBaseDelay:  getEnvDuration("RETRY_BASE_DELAY", 2*time.Second),
		ChromeBin:       getEnv("CHROME_BIN", ""),
		HTTPPort:        getEnv("APP_PORT", "8000"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTTL:        getEnvDuration("REDIS_TTL", 5*time.Minute),
		LogDebug:        getEnvBool("LOG_DEBUG", false),
	}
}

// StagingJSONPath is where scraped items are staged.
func (c *Config) StagingJSONPath() string {
	return filepath.Join(c.DataDir, c.StagingJSONName)
}

// RefinedCSVPath is where the refined dataset is written.
func (c *Config) RefinedCSVPath() string {
	return filepath.Join(c.DataDir, c.RefinedCSVName)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
