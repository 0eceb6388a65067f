package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/aluiziolira/school-scraper/models"
	"github.com/aluiziolira/school-scraper/parser"
	"github.com/aluiziolira/school-scraper/pipeline"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// RecordExtractor turns a raw artifact into a record.
type RecordExtractor interface {
	Extract(ctx context.Context, raw, name, link string) (*models.SchoolRecord, parser.Tier)
}

// RecordSink accepts parsed records, usually a *pipeline.Pipeline.
type RecordSink interface {
	Process(records ...*models.SchoolRecord) error
}

// RawLoader reads previously saved raw artifacts.
type RawLoader interface {
	Load(school string) (string, error)
}

// StatsSource reports fetch counters for the run summary.
type StatsSource interface {
	Stats() FetchStats
}

// Runner drives schools through collection, extraction and persistence.
type Runner struct {
	cfg       *config.Config
	processor *Processor
	extractor RecordExtractor
	sink      RecordSink

	Metrics  *Metrics
	Stats    StatsSource
	Progress *ProgressTracker
	// ParsedPath reports where a school's parsed record ends up.
	ParsedPath func(school string) string
}

// NewRunner wires a runner. processor may be nil for Reparse-only use.
func NewRunner(cfg *config.Config, processor *Processor, extractor RecordExtractor, sink RecordSink) *Runner {
	return &Runner{
		cfg:       cfg,
		processor: processor,
		extractor: extractor,
		sink:      sink,
		Progress:  NewProgressTracker(),
	}
}

// Run scrapes and extracts every school. Per-school failures are reported in
// the result and never abort the other schools.
func (r *Runner) Run(ctx context.Context, schools []config.School) (*models.ScraperResult, error) {
	if r.processor == nil {
		return nil, errors.New("runner: no processor configured")
	}
	return r.each(ctx, schools, r.scrapeSchool)
}

// Reparse extracts records again from raw artifacts saved by an earlier run.
func (r *Runner) Reparse(ctx context.Context, schools []config.School, raw RawLoader) (*models.ScraperResult, error) {
	if raw == nil {
		return nil, errors.New("runner: no raw loader configured")
	}
	return r.each(ctx, schools, func(ctx context.Context, school config.School, out *models.SchoolOutcome) *models.SchoolRecord {
		content, err := raw.Load(school.Name)
		if err != nil {
			out.Err = fmt.Errorf("load raw data: %w", err)
			return nil
		}
		return r.extract(ctx, school, content, out)
	})
}

type schoolFunc func(ctx context.Context, school config.School, out *models.SchoolOutcome) *models.SchoolRecord

func (r *Runner) each(ctx context.Context, schools []config.School, fn schoolFunc) (*models.ScraperResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.NewString()
	logger := slog.With(slog.String("run_id", runID))

	result := &models.ScraperResult{
		RunID:     runID,
		Schools:   make([]models.SchoolOutcome, len(schools)),
		StartTime: time.Now(),
	}
	logger.Info("run started", slog.Int("schools", len(schools)))

	workers := r.cfg.SchoolWorkers
	if workers <= 0 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, school := range schools {
		g.Go(func() error {
			result.Schools[i] = r.runSchool(ctx, logger, school, fn)
			return nil
		})
	}
	_ = g.Wait()

	result.EndTime = time.Now()
	if r.Stats != nil {
		stats := r.Stats.Stats()
		result.FetchCount = int(stats.Fetches)
		result.ErrorCount = int(stats.Errors)
		result.RetryCount = int(stats.Retries)
		result.ErrorsByType = stats.ErrorsByType
	}

	logger.Info("run finished",
		slog.Int("schools", len(schools)),
		slog.Int("failed", result.Failed()),
		slog.Duration("elapsed", result.EndTime.Sub(result.StartTime)),
	)
	return result, ctx.Err()
}

// runSchool isolates one school: a panic or an error still yields a degraded
// record so the school appears in the output.
func (r *Runner) runSchool(ctx context.Context, logger *slog.Logger, school config.School, fn schoolFunc) (out models.SchoolOutcome) {
	out.Name = school.Name
	logger = logger.With(slog.String("school", school.Name))

	var rec *models.SchoolRecord
	defer func() {
		if p := recover(); p != nil {
			logger.Error("school processing panicked",
				slog.Any("panic", p),
				slog.String("stack", string(debug.Stack())),
			)
			out.Err = fmt.Errorf("panic: %v", p)
			rec = nil
		}
		if out.Err != nil && rec == nil {
			rec = models.ErrorRecord(school.Name, school.Link, fmt.Sprintf("Error processing school: %v", out.Err))
			out.Tier = parser.TierNone.String()
		}
		if rec != nil && r.sink != nil {
			if err := r.sink.Process(rec); err != nil {
				logger.Error("queue record", slog.Any("error", err))
				if out.Err == nil {
					out.Err = fmt.Errorf("queue record: %w", err)
				}
			} else if r.ParsedPath != nil {
				out.ParsedPath = r.ParsedPath(school.Name)
			}
		}

		status := "ok"
		if out.Err != nil {
			status = "failed"
		}
		r.Metrics.IncSchool(status)
	}()

	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}
	rec = fn(ctx, school, &out)
	return out
}

func (r *Runner) scrapeSchool(ctx context.Context, school config.School, out *models.SchoolOutcome) *models.SchoolRecord {
	progress := func(completed, total int) {
		r.Progress.Update(school.Name, completed, total)
	}

	content, artifact, err := r.processor.Process(ctx, school, progress)
	out.Links = artifact.Links
	out.Failed = artifact.Failed
	out.RawPath = artifact.Path
	if err != nil {
		out.Err = err
		return nil
	}
	return r.extract(ctx, school, content, out)
}

func (r *Runner) extract(ctx context.Context, school config.School, content string, out *models.SchoolOutcome) *models.SchoolRecord {
	if r.extractor == nil {
		out.Err = errors.New("no extractor configured")
		return nil
	}
	rec, tier := r.extractor.Extract(ctx, content, school.Name, school.Link)
	out.Tier = tier.String()
	r.Metrics.IncTier(out.Tier)
	return rec
}

// ProgressTracker keeps the latest link progress per school.
type ProgressTracker struct {
	mu      sync.Mutex
	schools map[string]models.Progress
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{schools: make(map[string]models.Progress)}
}

// Update records completed of total links for school.
func (t *ProgressTracker) Update(school string, completed, total int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.schools[school] = models.Progress{School: school, Completed: completed, Total: total}
	t.mu.Unlock()
}

// Snapshot returns the tracked schools sorted by name.
func (t *ProgressTracker) Snapshot() []models.Progress {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	out := make([]models.Progress, 0, len(t.schools))
	for _, p := range t.schools {
		out = append(out, p)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].School < out[j].School })
	return out
}

var _ RecordSink = (*pipeline.Pipeline)(nil)
