package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer returns the fully rendered HTML of a page.
type Renderer interface {
	Render(ctx context.Context, url, waitSelector string) (string, error)
	Close() error
}

// ErrRendererClosed is returned by Render after Close.
var ErrRendererClosed = errors.New("renderer closed")

const (
	idlePollInterval = 250 * time.Millisecond
	idleQuietPolls   = 2
)

// BrowserRenderer renders pages in a shared headless Chrome, one tab per
// call. The browser is started on first use.
type BrowserRenderer struct {
	userAgent string
	settle    time.Duration
	timeout   time.Duration

	// mu guards the fields below; no browser is launched after Close.
	mu            sync.Mutex
	closed        bool
	started       bool
	startErr      error
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
}

// NewBrowserRenderer prepares a renderer; no browser runs until Render.
func NewBrowserRenderer(userAgent string, settle, timeout time.Duration) *BrowserRenderer {
	return &BrowserRenderer{
		userAgent: userAgent,
		settle:    settle,
		timeout:   timeout,
	}
}

// start launches the browser on first use and returns its context.
func (b *BrowserRenderer) start() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrRendererClosed
	}
	if b.started {
		return b.browserCtx, b.startErr
	}
	b.started = true

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(b.userAgent),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		b.startErr = fmt.Errorf("start browser: %w", err)
		return nil, b.startErr
	}
	b.browserCtx = browserCtx
	b.cancelAlloc = cancelAlloc
	b.cancelBrowser = cancelBrowser
	slog.Info("headless browser started")
	return browserCtx, nil
}

// Render navigates a fresh tab to url, waits for network activity to settle
// and then for waitSelector (or the settle delay), and returns the page HTML.
// The tab is closed on every path.
func (b *BrowserRenderer) Render(ctx context.Context, url, waitSelector string) (string, error) {
	browserCtx, err := b.start()
	if err != nil {
		return "", err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var wait chromedp.Action = chromedp.Sleep(b.settle)
	if waitSelector != "" {
		wait = chromedp.WaitVisible(waitSelector, chromedp.ByQuery)
	}

	var out string
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		waitNetworkIdle(b.settle),
		wait,
		chromedp.OuterHTML("html", &out, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return out, nil
}

// waitNetworkIdle polls the resource timing buffer until the number of
// loaded resources stops changing, giving up after limit.
func waitNetworkIdle(limit time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		deadline := time.Now().Add(limit)
		last, quiet := -1, 0
		for time.Now().Before(deadline) {
			var count int
			if err := chromedp.Evaluate(`performance.getEntriesByType("resource").length`, &count).Do(ctx); err != nil {
				return err
			}
			if count == last {
				quiet++
				if quiet >= idleQuietPolls {
					return nil
				}
			} else {
				last, quiet = count, 0
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(idlePollInterval):
			}
		}
		return nil
	})
}

// Close shuts the browser down. It is safe to call more than once.
func (b *BrowserRenderer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.cancelBrowser != nil {
		b.cancelBrowser()
		b.cancelAlloc()
	}
	return nil
}
