package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/aluiziolira/school-scraper/models"
	"golang.org/x/sync/errgroup"
)

var (
	headerRule = strings.Repeat("=", 80)
	pageRule   = strings.Repeat("=", 20) + "PAGE" + strings.Repeat("=", 20)
)

// ContentFetcher is the part of Fetcher the processor depends on.
type ContentFetcher interface {
	Fetch(ctx context.Context, target string, method models.FetchMethod, opts ...FetchOption) string
}

// RawSaver persists a school's combined raw text and returns its path.
type RawSaver interface {
	Save(school, content string) (string, error)
}

// ProgressFunc receives completed and total link counts.
type ProgressFunc func(completed, total int)

// Processor gathers every page of one school into a raw text artifact.
type Processor struct {
	cfg     *config.Config
	fetcher ContentFetcher
	links   *LinkResolver
	store   RawSaver
}

// NewProcessor wires a processor. store may be nil when only Collect is used.
func NewProcessor(cfg *config.Config, fetcher ContentFetcher, links *LinkResolver, store RawSaver) *Processor {
	return &Processor{cfg: cfg, fetcher: fetcher, links: links, store: store}
}

// Process collects the school's pages and saves the artifact. The content is
// returned even when saving fails.
func (p *Processor) Process(ctx context.Context, school config.School, progress ProgressFunc) (string, *models.RawArtifact, error) {
	content, artifact := p.Collect(ctx, school, progress)
	if p.store == nil {
		return content, artifact, nil
	}
	path, err := p.store.Save(school.Name, content)
	if err != nil {
		return content, artifact, fmt.Errorf("save raw data for %s: %w", school.Name, err)
	}
	artifact.Path = path
	return content, artifact, nil
}

// pageResult is one link's slot in the artifact.
type pageResult struct {
	link    models.CandidateLink
	content string
	failed  bool
}

// Collect fetches the main page and then every candidate link in bounded
// batches, returning the artifact text with entries in candidate order.
func (p *Processor) Collect(ctx context.Context, school config.School, progress ProgressFunc) (string, *models.RawArtifact) {
	var candidates []models.CandidateLink
	if p.links != nil {
		candidates = p.links.Resolve(ctx, school)
	}
	total := len(candidates) + 1
	slog.Info("processing school",
		slog.String("school", school.Name),
		slog.Int("links", len(candidates)),
	)

	var (
		mu        sync.Mutex
		completed int
	)
	report := func() {
		mu.Lock()
		defer mu.Unlock()
		completed++
		if progress != nil {
			progress(completed, total)
		}
	}

	method := school.FetchMethod()
	main := p.fetchOne(ctx, school, method, models.CandidateLink{URL: school.Link})
	report()

	results := make([]pageResult, len(candidates))
	batch := p.cfg.BatchSize
	if batch <= 0 {
		batch = 1
	}
	for start := 0; start < len(candidates); start += batch {
		end := min(start+batch, len(candidates))
		if start > 0 {
			if err := sleepContext(ctx, p.cfg.BatchPause); err != nil {
				for i := start; i < len(candidates); i++ {
					results[i] = pageResult{link: candidates[i], content: errorNote(err.Error()), failed: true}
					report()
				}
				break
			}
		}

		var g errgroup.Group
		g.SetLimit(batch)
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = p.fetchOne(ctx, school, method, candidates[i])
				report()
				return nil
			})
		}
		_ = g.Wait()
	}

	artifact := &models.RawArtifact{SchoolName: school.Name, Links: total}
	var b strings.Builder
	fmt.Fprintf(&b, "School: %s\nMain URL: %s\n%s\n\n", school.Name, school.Link, headerRule)

	b.WriteString("MAIN PAGE CONTENT:\n")
	b.WriteString(main.content)
	b.WriteString("\n\n" + pageRule + "\n\n")
	if main.failed {
		artifact.Failed++
	}

	for _, r := range results {
		fmt.Fprintf(&b, "%s PAGE CONTENT (%s):\n", r.link.Category.Label(), r.link.URL)
		b.WriteString(r.content)
		b.WriteString("\n\n" + pageRule + "\n\n")
		if r.failed {
			artifact.Failed++
		}
	}

	slog.Info("collected school pages",
		slog.String("school", school.Name),
		slog.Int("links", total),
		slog.Int("failed", artifact.Failed),
	)
	return b.String(), artifact
}

// fetchOne isolates a single link: an empty result or a panic becomes an
// inline error note.
func (p *Processor) fetchOne(ctx context.Context, school config.School, method models.FetchMethod, link models.CandidateLink) (result pageResult) {
	result.link = link
	defer func() {
		if r := recover(); r != nil {
			slog.Error("link fetch panicked",
				slog.String("school", school.Name),
				slog.String("url", link.URL),
				slog.Any("panic", r),
			)
			result.content = errorNote(fmt.Sprintf("failed to fetch %s: %v", link.URL, r))
			result.failed = true
		}
	}()

	content := p.fetcher.Fetch(ctx, link.URL, method, WithWaitSelector(school.WaitSelector))
	if strings.TrimSpace(content) == "" {
		return pageResult{
			link:    link,
			content: errorNote("no content retrieved from " + link.URL),
			failed:  true,
		}
	}
	result.content = content
	return result
}

func errorNote(msg string) string {
	return "[ERROR: " + msg + "]"
}
