package imdb

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"imdb-scraper/config"
	"imdb-scraper/utils"
)

const browserPageTimeout = 60 * time.Second

// BrowserFetcher renders pages in headless Chrome. The browser is started
// on the first Fetch and shared by every later one.
type BrowserFetcher struct {
	cfg    *config.Config
	logger *utils.Logger

	once        sync.Once
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc
}

func NewBrowserFetcher(cfg *config.Config, logger *utils.Logger) *BrowserFetcher {
	return &BrowserFetcher{cfg: cfg, logger: logger}
}

func (f *BrowserFetcher) start() {
	chromeBin := findChromeBinary(f.cfg.ChromeBin)
	f.logger.Info("[imdb] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	// Suppress chromedp log noise
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	f.browserCtx, f.cancelAlloc, f.cancelCtx = browserCtx, cancelAlloc, cancelCtx
}

// Fetch navigates a new tab to url and returns the rendered document.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.once.Do(f.start)

	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, browserPageTimeout)
	defer cancelTimeout()

	// Stop the tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", utils.Classify(utils.NetworkError, fmt.Errorf("imdb: render %s: %w", url, err))
	}
	return html, nil
}

func (f *BrowserFetcher) Close() error {
	if f.cancelCtx != nil {
		f.cancelCtx()
		f.cancelAlloc()
	}
	return nil
}

// findChromeBinary locates a Chrome/Chromium binary, preferring configured.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
