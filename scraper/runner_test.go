package scraper

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/aluiziolira/school-scraper/models"
	"github.com/aluiziolira/school-scraper/parser"
	"github.com/aluiziolira/school-scraper/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	mu    sync.Mutex
	raws  map[string]string
	panic string
}

func (s *stubExtractor) Extract(_ context.Context, raw, name, link string) (*models.SchoolRecord, parser.Tier) {
	if name == s.panic {
		panic("kaboom")
	}
	s.mu.Lock()
	if s.raws == nil {
		s.raws = make(map[string]string)
	}
	s.raws[name] = raw
	s.mu.Unlock()

	rec := models.NewSchoolRecord(name, link)
	rec.Contact.Website = link
	return rec, parser.TierStructuredJSON
}

type collectingSink struct {
	mu      sync.Mutex
	records []*models.SchoolRecord
	err     error
}

func (c *collectingSink) Process(records ...*models.SchoolRecord) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	c.records = append(c.records, records...)
	c.mu.Unlock()
	return nil
}

func (c *collectingSink) byName() map[string]*models.SchoolRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]*models.SchoolRecord, len(c.records))
	for _, r := range c.records {
		out[r.Name] = r
	}
	return out
}

// counterValue reads a single-label counter from the registry.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

type stubStats struct{ stats FetchStats }

func (s stubStats) Stats() FetchStats { return s.stats }

func TestRunnerRun(t *testing.T) {
	cfg := testConfig()
	cfg.SchoolWorkers = 2

	store, err := pipeline.NewRawStore(t.TempDir())
	require.NoError(t, err)

	fetcher := &fakeFetcher{pages: map[string]string{
		"https://alpha.test":      "Alpha home",
		"https://alpha.test/fees": "Alpha fees",
		"https://beta.test":       "Beta home",
		"https://gamma.test":      "Gamma home",
	}}
	processor := NewProcessor(cfg, fetcher, NewLinkResolver(StaticLinks{}), store)
	extractor := &stubExtractor{panic: "Gamma"}
	sink := &collectingSink{}

	r := NewRunner(cfg, processor, extractor, sink)
	r.Metrics = NewMetrics()
	r.Stats = stubStats{FetchStats{Fetches: 4, Errors: 1, Retries: 1, ErrorsByType: map[string]int{"server": 1}}}
	r.ParsedPath = func(name string) string { return "parsed/" + pipeline.Slug(name) + "_parsed.json" }

	schools := []config.School{
		{Name: "Alpha", Link: "https://alpha.test", Fallback: map[models.Category][]string{"fees": {"https://alpha.test/fees"}}},
		{Name: "Beta", Link: "https://beta.test"},
		{Name: "Gamma", Link: "https://gamma.test"},
	}

	result, err := r.Run(context.Background(), schools)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Schools, 3)
	assert.Equal(t, 1, result.Failed())
	assert.Equal(t, 4, result.FetchCount)
	assert.Equal(t, 1, result.RetryCount)
	assert.Equal(t, map[string]int{"server": 1}, result.ErrorsByType)

	alpha := result.Schools[0]
	assert.Equal(t, "Alpha", alpha.Name)
	assert.Equal(t, 2, alpha.Links)
	assert.Equal(t, "structured_json", alpha.Tier)
	assert.Equal(t, store.Path("Alpha"), alpha.RawPath)
	assert.Equal(t, "parsed/Alpha_parsed.json", alpha.ParsedPath)
	assert.NoError(t, alpha.Err)
	assert.Contains(t, extractor.raws["Alpha"], "FEES PAGE CONTENT (https://alpha.test/fees):\nAlpha fees")

	gamma := result.Schools[2]
	require.Error(t, gamma.Err)
	assert.Equal(t, "none", gamma.Tier)

	records := sink.byName()
	require.Len(t, records, 3)
	assert.True(t, strings.HasPrefix(records["Gamma"].Notes, "Error processing school: panic: kaboom"))
	assert.Equal(t, "https://beta.test", records["Beta"].Contact.Website)

	assert.Equal(t, 2.0, counterValue(t, r.Metrics.Registry, "scraper_schools_total", "ok"))
	assert.Equal(t, 1.0, counterValue(t, r.Metrics.Registry, "scraper_schools_total", "failed"))
	assert.Equal(t, 2.0, counterValue(t, r.Metrics.Registry, "scraper_extraction_tier_total", "structured_json"))

	progress := r.Progress.Snapshot()
	require.Len(t, progress, 3)
	assert.Equal(t, models.Progress{School: "Alpha", Completed: 2, Total: 2}, progress[0])
}

func TestRunnerReparse(t *testing.T) {
	store, err := pipeline.NewRawStore(t.TempDir())
	require.NoError(t, err)
	_, err = store.Save("Alpha", "School: Alpha\nMAIN PAGE CONTENT:\nsaved text")
	require.NoError(t, err)

	extractor := &stubExtractor{}
	sink := &collectingSink{}
	r := NewRunner(testConfig(), nil, extractor, sink)

	result, err := r.Reparse(context.Background(), []config.School{
		{Name: "Alpha", Link: "https://alpha.test"},
		{Name: "Missing", Link: "https://missing.test"},
	}, store)
	require.NoError(t, err)

	assert.NoError(t, result.Schools[0].Err)
	assert.Equal(t, "School: Alpha\nMAIN PAGE CONTENT:\nsaved text", extractor.raws["Alpha"])
	assert.Error(t, result.Schools[1].Err)
	assert.True(t, strings.HasPrefix(sink.byName()["Missing"].Notes, "Error processing school: load raw data"))

	_, err = r.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestRunnerSinkFailure(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"https://alpha.test": "home"}}
	cfg := testConfig()
	sink := &collectingSink{err: pipeline.ErrPipelineClosed}
	r := NewRunner(cfg, NewProcessor(cfg, fetcher, NewLinkResolver(), nil), &stubExtractor{}, sink)

	result, err := r.Run(context.Background(), []config.School{{Name: "Alpha", Link: "https://alpha.test"}})
	require.NoError(t, err)
	assert.True(t, errors.Is(result.Schools[0].Err, pipeline.ErrPipelineClosed))
}

func TestRunnerCanceled(t *testing.T) {
	fetcher := &fakeFetcher{}
	cfg := testConfig()
	r := NewRunner(cfg, NewProcessor(cfg, fetcher, NewLinkResolver(), nil), &stubExtractor{}, &collectingSink{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := r.Run(ctx, []config.School{{Name: "Alpha", Link: "https://alpha.test"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, result.Schools[0].Err, context.Canceled)
	assert.Empty(t, fetcher.methods)
}
