package scraper

import (
	"context"
	"strings"
	"testing"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/aluiziolira/school-scraper/extractor"
	"github.com/aluiziolira/school-scraper/llm"
	"github.com/aluiziolira/school-scraper/models"
	"github.com/aluiziolira/school-scraper/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScrapeToParsedRecord runs one school from fetch to the parsed file on
// disk with a canned model answer.
func TestScrapeToParsedRecord(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		wantTier string
	}{
		{
			name: "fenced json",
			answer: "Here you go:\n```json\n" +
				`{"tuition": {"academic_year": "2025-2026", "tuition_by_level": {"Grade 1": {"annual": "PHP 120,000"}}},` +
				` "programs": [{"name": "Primary", "grade_level": "Grade 1", "description": "Core years"}]}` +
				"\n```",
			wantTier: "structured_json",
		},
		{
			name:     "trailing commas",
			answer:   `Result: {'tuition': {'academic_year': '2025-2026', 'tuition_by_level': {'Grade 1': {'annual': 'PHP 120,000',},},}, 'programs': [{'name': 'Primary', 'grade_level': 'Grade 1', 'description': 'Core years'},],}`,
			wantTier: "repaired_json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := testConfig()
			cfg.OutputDir = dir

			store, err := pipeline.NewRawStore(cfg.RawDir())
			require.NoError(t, err)
			parsed, err := pipeline.NewParsedWriter(cfg.ParsedDir())
			require.NoError(t, err)

			p := pipeline.NewPipeline(context.Background(), parsed, cfg)
			p.Start(1)

			fetcher := &fakeFetcher{pages: map[string]string{
				"https://northfield.test":          "Welcome to Northfield",
				"https://northfield.test/fees":     "Tuition for 2025-2026",
				"https://northfield.test/programs": "Primary and Secondary",
			}}
			school := config.School{
				Name:   "Northfield Academy",
				Link:   "https://northfield.test",
				Method: "requests",
				Fallback: map[models.Category][]string{
					"fees":     {"https://northfield.test/fees"},
					"programs": {"https://northfield.test/programs"},
				},
			}

			var prompt string
			client := llm.ClientFunc(func(_ context.Context, sent string) (string, error) {
				prompt = sent
				return tt.answer, nil
			})

			r := NewRunner(cfg, NewProcessor(cfg, fetcher, NewLinkResolver(StaticLinks{}), store), extractor.New(client, cfg), p)
			r.ParsedPath = parsed.Path
			result, err := r.Run(context.Background(), []config.School{school})
			require.NoError(t, err)
			require.NoError(t, p.Close())

			outcome := result.Schools[0]
			require.NoError(t, outcome.Err)
			assert.Equal(t, tt.wantTier, outcome.Tier)

			raw, err := store.Load(school.Name)
			require.NoError(t, err)
			assert.Equal(t, 3, strings.Count(raw, "PAGE CONTENT"))
			main := strings.Index(raw, "MAIN PAGE CONTENT:")
			fees := strings.Index(raw, "FEES PAGE CONTENT (https://northfield.test/fees):")
			programs := strings.Index(raw, "PROGRAMS PAGE CONTENT (https://northfield.test/programs):")
			assert.True(t, main >= 0 && main < fees && fees < programs, raw)
			assert.Contains(t, prompt, "Tuition for 2025-2026")

			data, err := parsed.Load(school.Name)
			require.NoError(t, err)
			fee, ok := data["school_fee"].(map[string]any)
			require.True(t, ok, "school_fee should be an object: %v", data["school_fee"])
			assert.Equal(t, "2025-2026", fee["academic_year"])
			assert.Equal(t, "https://northfield.test", data["link"])

			levels := fee["tuition_by_level"].(map[string]any)
			grade1 := levels["Grade 1"].(map[string]any)
			assert.Equal(t, 120000.0, grade1["annual"])
		})
	}
}
