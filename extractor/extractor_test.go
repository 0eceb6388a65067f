package extractor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/aluiziolira/school-scraper/llm"
	"github.com/aluiziolira/school-scraper/models"
	"github.com/aluiziolira/school-scraper/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient answers prompts in order and records what it was sent.
type scriptedClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (c *scriptedClient) Generate(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := len(c.prompts)
	c.prompts = append(c.prompts, prompt)
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return "", errors.New("unexpected prompt")
}

const structuredAnswer = "```json\n" + `{
  "name": "Somebody Else",
  "tuition": {"academic_year": "AY 2024-2025", "tuition_by_level": {"Grade 1": {"annual": "PHP 150,000"}}},
  "programs": [{"name": "Primary", "grade_level": "Grade 1 to Grade 6", "description": ""}],
  "contact": {"email": "admissions@school.ph"}
}` + "\n```"

func TestExtractStructured(t *testing.T) {
	client := &scriptedClient{responses: []string{structuredAnswer}}
	var tiers []parser.Tier
	e := New(client, config.DefaultConfig(), WithTierObserver(func(tier parser.Tier) {
		tiers = append(tiers, tier)
	}))

	rec, tier := e.Extract(context.Background(), "MAIN PAGE CONTENT:\nwelcome", "Test School", "https://school.ph")

	require.Equal(t, parser.TierStructuredJSON, tier)
	assert.Equal(t, "Test School", rec.Name)
	assert.Equal(t, "https://school.ph", rec.Link)
	annual, numeric := rec.SchoolFee.TuitionByLevel["Grade 1"].Annual.Float()
	assert.True(t, numeric)
	assert.Equal(t, 150000.0, annual)
	assert.Equal(t, "admissions@school.ph", rec.Contact.Email)
	assert.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "School Name: Test School")
	assert.Equal(t, []parser.Tier{parser.TierStructuredJSON}, tiers)
}

func TestExtractFallsBackToSectionPrompt(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"Sorry, I can only describe this school in prose.",
		"Tuition Fees:\nGrade 1: $1,000\n\nContact Information:\nEmail: hello@school.org",
	}}
	e := New(client, config.DefaultConfig())

	rec, tier := e.Extract(context.Background(), "content", "Prose School", "https://school.org")

	require.Equal(t, parser.TierLegacyText, tier)
	require.Len(t, client.prompts, 2)
	assert.Contains(t, client.prompts[1], "Tuition Fees: [Extract")
	assert.Equal(t, "hello@school.org", rec.Contact.Email)
	assert.Equal(t, "https://school.org", rec.Link)
}

func TestExtractLegacyOnFirstAnswerSkipsSecondPrompt(t *testing.T) {
	client := &scriptedClient{responses: []string{"Programs Offered:\nPrimary\nCore years"}}
	e := New(client, config.DefaultConfig())

	rec, tier := e.Extract(context.Background(), "content", "S", "https://s.example")

	assert.Equal(t, parser.TierLegacyText, tier)
	assert.Len(t, client.prompts, 1)
	require.Len(t, rec.Programs, 1)
	assert.Equal(t, "Primary", rec.Programs[0].Name)
}

func TestExtractUnparseableAnswers(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"I cannot help with that.",
		"Still nothing useful here.",
	}}
	e := New(client, config.DefaultConfig())

	rec, tier := e.Extract(context.Background(), "content", "Quiet School", "https://quiet.example")

	assert.Equal(t, parser.TierNone, tier)
	assert.Len(t, client.prompts, 2)
	assert.Equal(t, NoParseableNote, rec.Notes)
	assert.Equal(t, "Quiet School", rec.Name)
	assert.Equal(t, "https://quiet.example", rec.Link)
	assert.True(t, rec.SchoolFee.IsEmpty())
}

func TestExtractEmptyContent(t *testing.T) {
	client := &scriptedClient{}
	e := New(client, config.DefaultConfig())

	rec, tier := e.Extract(context.Background(), "  \n", "Empty", "https://empty.example")

	assert.Equal(t, parser.TierNone, tier)
	assert.Equal(t, EmptyContentNote, rec.Notes)
	assert.Equal(t, "https://empty.example", rec.Link)
	assert.Empty(t, client.prompts)
}

func TestExtractLLMError(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("quota exceeded")}}
	e := New(client, config.DefaultConfig())

	rec, tier := e.Extract(context.Background(), "content", "Broken", "https://broken.example")

	assert.Equal(t, parser.TierNone, tier)
	assert.Equal(t, "Error during parsing: quota exceeded", rec.Notes)
	assert.Equal(t, "Broken", rec.Name)
	assert.True(t, rec.SchoolFee.IsEmpty())
}

func TestExtractRecoversFromPanic(t *testing.T) {
	client := llm.ClientFunc(func(context.Context, string) (string, error) {
		panic("boom")
	})
	var observed parser.Tier = -1
	e := New(client, config.DefaultConfig(), WithTierObserver(func(tier parser.Tier) { observed = tier }))

	var rec *models.SchoolRecord
	require.NotPanics(t, func() {
		rec, _ = e.Extract(context.Background(), "content", "Panicky", "https://p.example")
	})
	assert.Equal(t, "Error during parsing: boom", rec.Notes)
	assert.Equal(t, "https://p.example", rec.Link)
	assert.Equal(t, parser.TierNone, observed)
}

func TestExtractTruncatesContent(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PromptCharBudget = 10
	client := &scriptedClient{responses: []string{`{"notes": "short"}`}}
	e := New(client, cfg)

	_, tier := e.Extract(context.Background(), "0123456789ABCDEF", "T", "https://t.example")

	assert.Equal(t, parser.TierRepairedJSON, tier)
	require.Len(t, client.prompts, 1)
	assert.True(t, strings.HasSuffix(client.prompts[0], "0123456789"), "prompt should end with truncated content")
	assert.NotContains(t, client.prompts[0], "ABCDEF")
}
