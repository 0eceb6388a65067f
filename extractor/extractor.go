// Package extractor turns raw scraped text into school records with an LLM.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/aluiziolira/school-scraper/llm"
	"github.com/aluiziolira/school-scraper/models"
	"github.com/aluiziolira/school-scraper/parser"
)

// EmptyContentNote is attached to records built from an empty artifact.
const EmptyContentNote = "No data available - empty content provided"

// NoParseableNote marks records whose model answers matched no parse tier.
const NoParseableNote = "Error during parsing: no JSON or section headers in model response"

const pdfMarker = "[PDF CONTENT FROM:"

// Extractor runs the structured prompt and reconciles the answer into a
// record, degrading through the parser tiers.
type Extractor struct {
	client        llm.Client
	budget        int
	analysisChunk int
	onTier        func(parser.Tier)
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithTierObserver registers fn to be called with the tier of every
// extraction.
func WithTierObserver(fn func(parser.Tier)) Option {
	return func(e *Extractor) {
		e.onTier = fn
	}
}

// New builds an Extractor using cfg's prompt budget and chunk sizes.
func New(client llm.Client, cfg *config.Config, opts ...Option) *Extractor {
	e := &Extractor{
		client:        client,
		budget:        cfg.PromptCharBudget,
		analysisChunk: cfg.AnalysisChunkSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract builds a record for the school from raw. It never panics and never
// fails: LLM errors produce a minimal record carrying the error in Notes.
func (e *Extractor) Extract(ctx context.Context, raw, name, link string) (rec *models.SchoolRecord, tier parser.Tier) {
	logger := slog.With(slog.String("school", name))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("extraction panic",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			rec = models.ErrorRecord(name, link, fmt.Sprintf("Error during parsing: %v", r))
			tier = parser.TierNone
		}
		if e.onTier != nil {
			e.onTier(tier)
		}
	}()

	if strings.TrimSpace(raw) == "" {
		logger.Warn("no content provided for parsing")
		return models.ErrorRecord(name, link, EmptyContentNote), parser.TierNone
	}

	content := parser.Truncate(raw, e.budget)
	if n := strings.Count(content, pdfMarker); n > 0 {
		logger.Info("content includes pdf sections", slog.Int("pdf_sections", n))
	}

	response, err := e.client.Generate(ctx, StructuredPrompt(name, content))
	if err != nil {
		logger.Error("structured prompt failed", slog.Any("error", err))
		return models.ErrorRecord(name, link, fmt.Sprintf("Error during parsing: %v", err)), parser.TierNone
	}
	logger.Debug("received model response", slog.Int("length", len(response)))

	out := parser.ParseResponse(response)
	if out.Tier == parser.TierNone {
		logger.Warn("no json or sections in response, retrying with section prompt")
		response, err = e.client.Generate(ctx, SectionPrompt(name, content))
		if err != nil {
			logger.Error("section prompt failed", slog.Any("error", err))
			return models.ErrorRecord(name, link, fmt.Sprintf("Error during parsing: %v", err)), parser.TierNone
		}
		out = parser.ParseResponse(response)
	}

	switch out.Tier {
	case parser.TierStructuredJSON, parser.TierRepairedJSON:
		rec = parser.RecordFromJSON(out.Data, name)
	case parser.TierLegacyText:
		rec = parser.RecordFromLegacy(out.Text, name)
	default:
		logger.Error("no json or section headers in model response")
		return models.ErrorRecord(name, link, NoParseableNote), parser.TierNone
	}
	rec.Name = name
	rec.Link = link

	logger.Info("extracted record", slog.String("tier", out.Tier.String()))
	return rec, out.Tier
}
