package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/gocolly/colly/v2"
)

// URLLister lists the URLs reachable on a site.
type URLLister interface {
	ListURLs(ctx context.Context, baseURL string) ([]string, error)
}

// skippedExtensions are never recorded as candidate links.
var skippedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".bmp": true,
	".css": true, ".js": true, ".mjs": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true,
}

// documentExtensions are recorded but not crawled.
var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// Discoverer lists a site's URLs from its sitemap and a shallow crawl of
// same-host links.
type Discoverer struct {
	cfg  *config.Config
	base *colly.Collector
}

// Discoverer returns a URL lister sharing the fetcher's HTTP backend.
func (f *Fetcher) Discoverer() *Discoverer {
	return &Discoverer{cfg: f.cfg, base: f.collector}
}

// ListURLs returns sitemap entries followed by crawled links, deduplicated.
// An error is returned only when nothing could be read at all.
func (d *Discoverer) ListURLs(ctx context.Context, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	host := canonicalHost(base.Hostname())

	var (
		mu    sync.Mutex
		found []string
		seen  = make(map[string]struct{})
	)
	record := func(link string) bool {
		mu.Lock()
		defer mu.Unlock()
		if _, dup := seen[link]; dup {
			return false
		}
		seen[link] = struct{}{}
		found = append(found, link)
		return true
	}
	sameSite := func(link string) (string, bool) {
		u, err := url.Parse(strings.TrimSpace(link))
		if err != nil || canonicalHost(u.Hostname()) != host {
			return "", false
		}
		if skippedExtensions[strings.ToLower(path.Ext(u.Path))] {
			return "", false
		}
		u.Fragment = ""
		return u.String(), true
	}
	if home, ok := sameSite(baseURL); ok {
		seen[home] = struct{}{}
	}

	sitemapErr := d.readSitemap(ctx, base, func(loc string) {
		if link, ok := sameSite(loc); ok {
			record(link)
		}
	})
	if sitemapErr != nil {
		slog.Debug("sitemap unavailable", slog.String("url", baseURL), slog.Any("error", sitemapErr))
	}

	crawlErr := d.crawl(ctx, baseURL, func(href string) bool {
		link, ok := sameSite(href)
		if !ok || !record(link) {
			return false
		}
		return !documentExtensions[strings.ToLower(path.Ext(link))]
	})
	if crawlErr != nil {
		slog.Debug("link crawl failed", slog.String("url", baseURL), slog.Any("error", crawlErr))
	}

	if len(found) == 0 && sitemapErr != nil && crawlErr != nil {
		return nil, fmt.Errorf("discover %s: %w", baseURL, crawlErr)
	}
	slog.Info("discovered urls", slog.String("url", baseURL), slog.Int("count", len(found)))
	return found, nil
}

func (d *Discoverer) readSitemap(ctx context.Context, base *url.URL, emit func(string)) error {
	c := d.base.Clone()
	c.Context = ctx

	visited := map[string]bool{}
	c.OnXML("//urlset/url/loc", func(e *colly.XMLElement) {
		emit(strings.TrimSpace(e.Text))
	})
	c.OnXML("//sitemapindex/sitemap/loc", func(e *colly.XMLElement) {
		loc := strings.TrimSpace(e.Text)
		if loc == "" || visited[loc] {
			return
		}
		visited[loc] = true
		if err := e.Request.Visit(loc); err != nil {
			slog.Debug("nested sitemap failed", slog.String("url", loc), slog.Any("error", err))
		}
	})

	sitemap := base.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()
	visited[sitemap] = true
	return c.Visit(sitemap)
}

// crawl visits baseURL and follows links accepted by follow, bounded by
// the discovery depth and page budget.
func (d *Discoverer) crawl(ctx context.Context, baseURL string, follow func(string) bool) error {
	c := d.base.Clone()
	c.Context = ctx
	c.MaxDepth = d.cfg.DiscoveryDepth + 1

	pages := 0
	c.OnRequest(func(r *colly.Request) {
		if d.cfg.DiscoveryMaxPages > 0 && pages >= d.cfg.DiscoveryMaxPages {
			r.Abort()
			return
		}
		pages++
		r.Headers.Set("Accept", d.cfg.Accept)
		r.Headers.Set("Accept-Language", d.cfg.AcceptLanguage)
	})
	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Request.AbsoluteURL(e.Attr("href"))
		if href == "" || ctx.Err() != nil {
			return
		}
		if follow(href) {
			_ = e.Request.Visit(href)
		}
	})
	return c.Visit(baseURL)
}
