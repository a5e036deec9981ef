package imdb

import (
	"context"
	"fmt"
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"

	"imdb-scraper/utils"
)

// HTTPFetcher fetches pages with a plain HTTP client carrying browser-like
// headers and cookies.
type HTTPFetcher struct {
	client *resty.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeaders(requestHeaders)
	client.SetCookies(requestCookies)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPFetcher{client: client}
}

// Fetch returns the body of url. Transport failures, 429 and 5xx responses
// are classified as network errors so they are retried; other non-2xx
// statuses are not.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	res, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", utils.Classify(utils.NetworkError, fmt.Errorf("imdb: get %s: %w", url, err))
	}

	switch code := res.StatusCode(); {
	case code == http.StatusTooManyRequests || code >= 500:
		return "", utils.Classify(utils.NetworkError, fmt.Errorf("imdb: get %s: status %d", url, code))
	case res.IsError():
		return "", fmt.Errorf("imdb: get %s: status %d", url, code)
	}
	return res.String(), nil
}

func (f *HTTPFetcher) Close() error { return nil }
