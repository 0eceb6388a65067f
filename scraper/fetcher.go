package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/aluiziolira/school-scraper/config"
	"github.com/aluiziolira/school-scraper/models"
	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Fetcher downloads pages and turns them into readable text. Fetch never
// returns an error: failures degrade to an empty or diagnostic string.
type Fetcher struct {
	cfg       *config.Config
	collector *colly.Collector
	renderer  Renderer
	cache     *lru.Cache[string, string]
	metrics   *Metrics

	fetchCount int64
	errorCount int64
	retryCount int64

	mu           sync.Mutex
	errorsByType map[string]int
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithRenderer sets the renderer used for browser fetches.
func WithRenderer(r Renderer) FetcherOption {
	return func(f *Fetcher) { f.renderer = r }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) FetcherOption {
	return func(f *Fetcher) { f.metrics = m }
}

// NewFetcher builds a fetcher with one shared HTTP backend.
func NewFetcher(cfg *config.Config, opts ...FetcherOption) (*Fetcher, error) {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(cfg.MaxBodySize),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(cloudflarebp.AddCloudFlareByPass(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}))

	f := &Fetcher{
		cfg:          cfg,
		collector:    collector,
		errorsByType: make(map[string]int),
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, string](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create fetch cache: %w", err)
		}
		f.cache = cache
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.renderer == nil {
		f.renderer = NewBrowserRenderer(cfg.UserAgent, cfg.BrowserSettle, cfg.BrowserTimeout)
	}
	return f, nil
}

// Close releases the browser, if one was started.
func (f *Fetcher) Close() error {
	return f.renderer.Close()
}

// FetchOption customizes a single Fetch call.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	progress     func()
	waitSelector string
	// prefetched carries a body already downloaded under another URL.
	prefetched *response
}

// WithProgress registers fn to be called once when the fetch succeeds.
func WithProgress(fn func()) FetchOption {
	return func(o *fetchOptions) { o.progress = fn }
}

// WithWaitSelector makes browser fetches wait for a CSS selector.
func WithWaitSelector(selector string) FetchOption {
	return func(o *fetchOptions) { o.waitSelector = selector }
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// Fetch returns the readable content of target.
func (f *Fetcher) Fetch(ctx context.Context, target string, method models.FetchMethod, opts ...FetchOption) string {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}
	if method == "" {
		method = models.MethodRequest
	}

	key := string(method) + " " + target
	if f.cache != nil {
		if text, ok := f.cache.Get(key); ok {
			f.metrics.IncCacheHit()
			slog.Debug("fetch cache hit", slog.String("url", target))
			if o.progress != nil {
				o.progress()
			}
			return text
		}
	}

	start := time.Now()
	text, ok := f.fetch(ctx, target, method, &o)
	f.metrics.ObserveDuration(string(method), time.Since(start))
	if !ok {
		f.metrics.IncFetch(string(method), "failed")
		return text
	}

	f.metrics.IncFetch(string(method), "ok")
	if f.cache != nil {
		f.cache.Add(key, text)
	}
	if o.progress != nil {
		o.progress()
	}
	return text
}

// fetch reports whether text is real content rather than a diagnostic.
func (f *Fetcher) fetch(ctx context.Context, target string, method models.FetchMethod, o *fetchOptions) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("fetch panicked", slog.String("url", target), slog.Any("panic", r))
			text, ok = "", false
		}
	}()

	if o.prefetched != nil || isPDFURL(target) {
		resp := o.prefetched
		if resp == nil {
			var err error
			resp, err = f.get(ctx, target)
			if resp == nil {
				f.metrics.IncPDF("download_error")
				return fmt.Sprintf("Error processing PDF from %s: %v", target, err), false
			}
		}
		text := f.extractPDF(target, resp.status, resp.body)
		return text, strings.HasPrefix(text, PDFContentPrefix)
	}

	if method == models.MethodBrowser {
		return f.render(ctx, target, o.waitSelector)
	}

	resp, err := f.get(ctx, target)
	if err != nil {
		slog.Warn("fetch failed", slog.String("url", target), slog.Any("error", err))
		return "", false
	}
	if isPDFContentType(resp.header) {
		rewritten := pdfRewrite(target)
		slog.Info("pdf content type detected", slog.String("url", target), slog.String("rewritten", rewritten))
		o.prefetched = resp
		return f.fetch(ctx, rewritten, method, o)
	}

	text = f.clean(string(resp.body))
	if text == "" {
		slog.Warn("empty content after cleaning", slog.String("url", target))
		return "", false
	}
	slog.Debug("fetched page", slog.String("url", target), slog.Int("chars", len(text)))
	return text, true
}

func (f *Fetcher) render(ctx context.Context, target, waitSelector string) (string, bool) {
	atomic.AddInt64(&f.fetchCount, 1)
	page, err := f.renderer.Render(ctx, target, waitSelector)
	if err != nil {
		f.recordError("browser")
		slog.Warn("browser fetch failed", slog.String("url", target), slog.Any("error", err))
		return "", false
	}
	text := f.clean(page)
	return text, text != ""
}

func (f *Fetcher) clean(page string) string {
	if f.cfg.ContentFormat == "markdown" {
		return MarkdownHTML(page)
	}
	return CleanHTML(page)
}

// get performs a GET with retries. On an HTTP status failure the response
// is returned alongside the classified error.
func (f *Fetcher) get(ctx context.Context, target string) (*response, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt > 0 {
			atomic.AddInt64(&f.retryCount, 1)
			f.metrics.IncRetries()
			if err := sleepContext(ctx, backoff(f.cfg, attempt)); err != nil {
				return nil, err
			}
		}

		resp, err := f.visit(ctx, target)
		if err == nil {
			return resp, nil
		}

		category := f.recordError(errorTypeLabel(err))
		slog.Warn("request error",
			slog.String("url", target),
			slog.String("category", category),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err),
		)
		if !retryable(err) || attempt >= f.cfg.MaxRetries || ctx.Err() != nil {
			return resp, err
		}
	}
}

func (f *Fetcher) visit(ctx context.Context, target string) (*response, error) {
	c := f.collector.Clone()
	c.Context = ctx

	var resp *response
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", f.cfg.Accept)
		r.Headers.Set("Accept-Language", f.cfg.AcceptLanguage)
	})
	c.OnResponse(func(r *colly.Response) {
		resp = newResponse(r)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			resp = newResponse(r)
		}
	})

	atomic.AddInt64(&f.fetchCount, 1)
	err := c.Visit(target)
	status := 0
	if resp != nil {
		status = resp.status
	}
	if err != nil {
		return resp, classifyError(err, status)
	}
	if resp == nil {
		return nil, errors.New("no response received")
	}
	return resp, nil
}

func newResponse(r *colly.Response) *response {
	out := &response{status: r.StatusCode, body: r.Body}
	if r.Headers != nil {
		out.header = *r.Headers
	}
	return out
}

func (f *Fetcher) recordError(category string) string {
	atomic.AddInt64(&f.errorCount, 1)
	f.mu.Lock()
	f.errorsByType[category]++
	f.mu.Unlock()
	f.metrics.IncError(category)
	return category
}

// FetchStats is a snapshot of fetch counters.
type FetchStats struct {
	Fetches      int
	Errors       int
	Retries      int
	ErrorsByType map[string]int
}

// Stats returns the counters accumulated since the fetcher was built.
func (f *Fetcher) Stats() FetchStats {
	f.mu.Lock()
	byType := make(map[string]int, len(f.errorsByType))
	for k, v := range f.errorsByType {
		byType[k] = v
	}
	f.mu.Unlock()
	return FetchStats{
		Fetches:      int(atomic.LoadInt64(&f.fetchCount)),
		Errors:       int(atomic.LoadInt64(&f.errorCount)),
		Retries:      int(atomic.LoadInt64(&f.retryCount)),
		ErrorsByType: byType,
	}
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch {
		case statusCode == http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case statusCode == http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case statusCode == http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		case statusCode >= http.StatusInternalServerError:
			return ErrServer{Err: wrapped}
		}
	}

	if err == nil {
		return nil
	}
	return err
}

// backoff returns base * 2^(attempt-1), capped at RetryBackoffMax.
func backoff(cfg *config.Config, attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := cfg.RetryBackoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
