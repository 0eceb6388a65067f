package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/aluiziolira/school-scraper/models"
	"github.com/aluiziolira/school-scraper/pipeline"
	"github.com/aluiziolira/school-scraper/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestStatusRouter(t *testing.T) {
	metrics := scraper.NewMetrics()
	metrics.IncSchool("ok")
	progress := scraper.NewProgressTracker()
	progress.Update("Beta", 1, 4)
	progress.Update("Alpha", 2, 2)

	router := newStatusRouter(metrics, progress)

	tests := []struct {
		path     string
		contains string
	}{
		{"/healthz", `"status":"ok"`},
		{"/metrics", "scraper_schools_total"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/progress", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []struct {
			School    string  `json:"school"`
			Completed int     `json:"completed"`
			Total     int     `json:"total"`
			Percent   float64 `json:"percent"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Alpha", body.Data[0].School)
	assert.Equal(t, 100.0, body.Data[0].Percent)
	assert.Equal(t, 25.0, body.Data[1].Percent)
}

func TestStatusServerDisabled(t *testing.T) {
	assert.Nil(t, startStatusServer("", nil, nil))
	shutdownStatusServer(nil)
}

func TestCreateWriter(t *testing.T) {
	cfg := testConfig(t)

	writer, parsed, err := createWriter(t.Context(), cfg)
	require.NoError(t, err)

	rec := models.NewSchoolRecord("Northfield Academy", "https://northfield.test")
	require.NoError(t, writer.Write([]*models.SchoolRecord{rec}))
	require.NoError(t, writer.Close())
	require.NoError(t, writer.Validate())

	for _, name := range []string{"schools.jsonl", "schools.csv"} {
		info, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		require.NoError(t, err, name)
		assert.NotZero(t, info.Size(), name)
	}
	assert.Equal(t, filepath.Join(cfg.ParsedDir(), "Northfield_Academy_parsed.json"), parsed.Path(rec.Name))
	_, err = os.Stat(parsed.Path(rec.Name))
	assert.NoError(t, err)
}

func TestPrintSummary(t *testing.T) {
	result := &models.ScraperResult{
		RunID: "run-1",
		Schools: []models.SchoolOutcome{
			{Name: "Alpha", Tier: "structured_json", Links: 3, ParsedPath: "parsed/Alpha_parsed.json"},
			{Name: "Beta", Tier: "none", Err: errors.New("load raw data: missing")},
		},
		FetchCount:   7,
		ErrorCount:   1,
		ErrorsByType: map[string]int{"server": 1},
	}

	var buf bytes.Buffer
	printSummary(&buf, result, 1500*time.Millisecond, "out", map[string]interface{}{
		"processed_records": int64(2),
		"validation_errors": map[string]int{},
	})
	out := buf.String()

	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "structured_json")
	assert.Contains(t, out, "load raw data: missing")
	assert.Contains(t, out, "Schools:       2 (1 failed)")
	assert.Contains(t, out, "Records:       2")
	assert.Contains(t, out, "Fetches:       7")
	assert.Contains(t, out, "map[server:1]")
	assert.NotContains(t, out, "Validation:")

	buf.Reset()
	printSummary(&buf, nil, 0, "out", nil)
	assert.Empty(t, buf.String())
}

func TestPrintCategories(t *testing.T) {
	var buf bytes.Buffer
	printCategories(&buf, map[models.Category][]string{
		models.CategoryContact: {"https://northfield.test/contact"},
		models.CategoryFees:    {"https://northfield.test/tuition"},
	}, 5)
	out := buf.String()

	fees := bytes.Index(buf.Bytes(), []byte("FEES"))
	contact := bytes.Index(buf.Bytes(), []byte("CONTACT"))
	require.GreaterOrEqual(t, fees, 0)
	assert.Greater(t, contact, fees)
	assert.Contains(t, out, "https://northfield.test/tuition")
}

func TestLoadSchools(t *testing.T) {
	cfg := testConfig(t)
	cfg.SchoolsFile = filepath.Join(t.TempDir(), "schools.json")
	require.NoError(t, os.WriteFile(cfg.SchoolsFile, []byte(`{"schools": [
		{"name": "Alpha", "link": "https://alpha.test"},
		{"name": "Beta", "link": "https://beta.test"}
	]}`), 0o644))

	all, err := loadSchools(cfg, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := loadSchools(cfg, []string{"beta"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "Beta", one[0].Name)

	_, err = loadSchools(cfg, []string{"Gamma"})
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(cfg.SchoolsFile, []byte(`{"schools": []}`), 0o644))
	_, err = loadSchools(cfg, nil)
	assert.Error(t, err)
}

func TestCollectDigests(t *testing.T) {
	cfg := testConfig(t)

	store, err := pipeline.NewRawStore(cfg.RawDir())
	require.NoError(t, err)
	_, err = store.Save("Alpha", "School: Alpha\nMAIN PAGE CONTENT:\nWelcome to Alpha")
	require.NoError(t, err)
	_, err = store.Save("Beta", "School: Beta\nMAIN PAGE CONTENT:\nWelcome to Beta")
	require.NoError(t, err)

	parsed, err := pipeline.NewParsedWriter(cfg.ParsedDir())
	require.NoError(t, err)
	rec := models.NewSchoolRecord("Alpha", "https://alpha.test")
	rec.SchoolFee.AcademicYear = "2025-2026"
	require.NoError(t, parsed.Write([]*models.SchoolRecord{rec}))

	digests, err := collectDigests(cfg, []config.School{
		{Name: "Alpha", Link: "https://alpha.test"},
		{Name: "Beta", Link: "https://beta.test"},
		{Name: "Gamma", Link: "https://gamma.test"},
	})
	require.NoError(t, err)
	require.Len(t, digests, 2)
	assert.Contains(t, digests[0], "===== SCHOOL: Alpha =====")
	assert.Contains(t, digests[0], "Academic Year 2025-2026")
	assert.Contains(t, digests[1], "WEBSITE: https://beta.test")
}

func TestRootFlagsBindConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	root := newRootCmd(cfg)

	require.NoError(t, root.PersistentFlags().Parse([]string{
		"--workers", "3",
		"--batch-size", "2",
		"--content-format", "markdown",
		"--llm-provider", "ollama",
		"-v",
	}))
	assert.Equal(t, 3, cfg.SchoolWorkers)
	assert.Equal(t, 2, cfg.BatchSize)
	assert.Equal(t, "markdown", cfg.ContentFormat)
	assert.Equal(t, "ollama", cfg.LLMProvider)
	assert.True(t, cfg.Verbose)

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"scrape", "parse", "discover", "summarize", "analyze"} {
		assert.True(t, names[want], want)
	}
}
