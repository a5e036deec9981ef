package imdb

import (
	"context"
	"fmt"
	"net/http"

	"imdb-scraper/config"
	"imdb-scraper/utils"
)

// Fetcher retrieves the HTML of one page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close() error
}

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// requestHeaders are sent with every page request. Accept-Encoding is left
// to the transport so gzip bodies are decoded transparently.
var requestHeaders = map[string]string{
	"User-Agent":                userAgent,
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "max-age=0",
}

var requestCookies = []*http.Cookie{
	{Name: "session-id", Value: "000-0000000-0000000"},
	{Name: "ubid-main", Value: "000-0000000-0000000"},
	{Name: "lc-main", Value: "en_US"},
}

// NewFetcher returns the fetcher selected by cfg.Fetcher: "http" (default)
// or "browser".
func NewFetcher(cfg *config.Config, logger *utils.Logger) (Fetcher, error) {
	switch cfg.Fetcher {
	case "", "http":
		return NewHTTPFetcher(cfg.RequestTimeout), nil
	case "browser":
		return NewBrowserFetcher(cfg, logger), nil
	default:
		return nil, fmt.Errorf("imdb: unknown fetcher %q (want http or browser)", cfg.Fetcher)
	}
}
