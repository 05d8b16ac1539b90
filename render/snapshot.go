package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

// tileSettle is how long the page gets to fetch map tiles before capture.
const tileSettle = 3 * time.Second

// Snapshot renders page in headless Chrome and returns a PNG of the map
// element at width x height.
func Snapshot(ctx context.Context, page []byte, width, height int, chromeBin string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "costar-map-snapshot")
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, page, 0o600); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(width+400, height+400),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var png []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+path),
		chromedp.WaitVisible("#map", chromedp.ByQuery),
		chromedp.Sleep(tileSettle),
		chromedp.Screenshot("#map", &png, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return png, nil
}

// FindChromeBinary locates a Chrome/Chromium binary. An explicit override
// wins, then CHROME_BIN, then well-known names and paths. Empty means let
// chromedp search.
func FindChromeBinary(override string) string {
	if override != "" {
		return override
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
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
