package api

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"imdb-scraper/utils"
)

const (
	cacheKeyPrefix  = "imdb:api"
	defaultCacheTTL = 5 * time.Minute
	redisDialWait   = 2 * time.Second
)

// NewRedisClient connects to addr and pings it. It returns nil when addr is
// empty or the server does not answer, which disables response caching.
func NewRedisClient(addr, password string, logger *utils.Logger) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialWait)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("[api] redis %s unreachable, caching disabled: %v", addr, err)
		_ = client.Close()
		return nil
	}
	logger.Info("[api] caching responses in redis %s", addr)
	return client
}

// bodyRecorder tees the response body so a successful response can be stored.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	body   []byte
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body = append(r.body, b...)
	return r.ResponseWriter.Write(b)
}

func cacheKey(c echo.Context) string {
	r := c.Request()
	sum := sha1.Sum([]byte(r.URL.Path + "?" + r.URL.RawQuery))
	return fmt.Sprintf("%s:%x", cacheKeyPrefix, sum[:])
}

// ResponseCache serves GET responses from Redis and stores 200 responses for
// ttl. A nil client turns it into a passthrough.
func ResponseCache(rdb *redis.Client, ttl time.Duration, logger *utils.Logger) echo.MiddlewareFunc {
	if rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(c)

			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			} else if !errors.Is(err, redis.Nil) {
				logger.Warn("[api] cache read %s: %v", c.Request().URL.Path, err)
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if rec.status == http.StatusOK && len(rec.body) > 0 {
				if err := rdb.SetEx(context.WithoutCancel(ctx), key, rec.body, ttl).Err(); err != nil {
					logger.Warn("[api] cache write %s: %v", c.Request().URL.Path, err)
				}
			}
			return nil
		}
	}
}
