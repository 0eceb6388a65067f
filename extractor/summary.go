package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aluiziolira/school-scraper/models"
	"github.com/aluiziolira/school-scraper/parser"
)

const (
	mainContentMarker = "MAIN PAGE CONTENT:"
	excerptChars      = 1000
	levelDescChars    = 100
)

// ErrNoSchools is returned by Analyze when there is nothing to analyze.
var ErrNoSchools = errors.New("extractor: no schools to analyze")

// Summarize asks the model for a readable summary of one school's raw
// artifact.
func (e *Extractor) Summarize(ctx context.Context, raw, name string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("summarize %s: %s", name, EmptyContentNote)
	}
	summary, err := e.client.Generate(ctx, SummaryPrompt(name, parser.Truncate(raw, e.budget)))
	if err != nil {
		return "", fmt.Errorf("summarize %s: %w", name, err)
	}
	return summary, nil
}

// Analyze produces a comparative report over school digests. Digests are
// packed into chunks; each chunk is analyzed separately and, when there is
// more than one, the partial reports are merged by an integration prompt.
// A failed chunk is reported inline and a failed integration keeps the
// concatenated partial reports.
func (e *Extractor) Analyze(ctx context.Context, digests []string) (string, error) {
	if len(digests) == 0 {
		return "", ErrNoSchools
	}

	chunks := parser.SplitContent(strings.Join(digests, "\n\n"), e.analysisChunk)
	summaries := make([]string, 0, len(chunks))
	failed := 0
	for i, chunk := range chunks {
		slog.Info("analyzing chunk", slog.Int("chunk", i+1), slog.Int("chunks", len(chunks)))
		summary, err := e.client.Generate(ctx, AnalysisPrompt(chunk))
		if err != nil {
			failed++
			slog.Error("analysis chunk failed", slog.Int("chunk", i+1), slog.Any("error", err))
			summary = fmt.Sprintf("Error processing data chunk %d: %v", i+1, err)
		}
		summaries = append(summaries, summary)
	}
	if failed == len(chunks) {
		return "", fmt.Errorf("analyze: all %d chunks failed", failed)
	}

	combined := strings.Join(summaries, "\n\n")
	if len(chunks) == 1 {
		return combined, nil
	}

	integrated, err := e.client.Generate(ctx, IntegrationPrompt(combined))
	if err != nil {
		slog.Error("integrating summaries failed", slog.Any("error", err))
		return combined, nil
	}
	return integrated, nil
}

// BuildDigest condenses a parsed record and its raw artifact into the text
// block Analyze consumes.
func BuildDigest(rec *models.SchoolRecord, raw string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "===== SCHOOL: %s =====\n", rec.Name)
	link := rec.Link
	if link == "" {
		link = "Not available"
	}
	fmt.Fprintf(&b, "WEBSITE: %s\n\n", link)

	fee := rec.SchoolFee
	if fee.AcademicYear != "" || len(fee.TuitionByLevel) > 0 {
		if fee.AcademicYear != "" {
			fmt.Fprintf(&b, "TUITION: Academic Year %s\n", fee.AcademicYear)
		}
		if len(fee.TuitionByLevel) > 0 {
			b.WriteString("TUITION LEVELS:\n")
			levels := make([]string, 0, len(fee.TuitionByLevel))
			for level := range fee.TuitionByLevel {
				levels = append(levels, level)
			}
			sort.Strings(levels)
			for _, level := range levels {
				detail := fee.TuitionByLevel[level]
				fmt.Fprintf(&b, "- %s: ", level)
				if !detail.Annual.IsZero() {
					fmt.Fprintf(&b, "Annual: %s ", detail.Annual)
				}
				desc := detail.Description
				if len([]rune(desc)) > levelDescChars {
					desc = parser.Truncate(desc, levelDescChars) + "..."
				}
				b.WriteString(desc)
				b.WriteString("\n")
			}
		}
	}

	if len(rec.Programs) > 0 {
		b.WriteString("PROGRAMS:\n")
		for i, p := range rec.Programs {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "- %s (%s)\n", p.Name, p.GradeLevel)
		}
	}

	if reqs := rec.Enrollment.Requirements; len(reqs) > 0 {
		b.WriteString("ENROLLMENT:\nRequirements: ")
		if len(reqs) > 3 {
			b.WriteString(strings.Join(reqs[:3], ", ") + "...")
		} else {
			b.WriteString(strings.Join(reqs, ", "))
		}
		b.WriteString("\n")
	}

	if len(rec.Scholarships) > 0 {
		b.WriteString("SCHOLARSHIPS: Available\n")
	}

	if raw == "" {
		b.WriteString("No raw data file available.\n")
	} else if idx := strings.Index(raw, mainContentMarker); idx > 0 {
		fmt.Fprintf(&b, "EXCERPT: %s...\n", parser.Truncate(raw[idx:], excerptChars))
	}
	return b.String()
}
