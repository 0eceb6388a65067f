package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanJSON = `{
  "tuition": {"academic_year": "AY 2024-2025", "tuition_by_level": {"Grade 1": {"annual": "₱120,000"}}},
  "programs": [{"name": "Primary", "grade_level": "Grade 1 to Grade 5", "description": "Core years"}],
  "notes": "ok"
}`

func TestParseResponseStructured(t *testing.T) {
	bare := ParseResponse("```json\n" + cleanJSON + "\n```")
	require.Equal(t, TierStructuredJSON, bare.Tier)

	withProse := ParseResponse("Here is what I found about the school.\n\n```json\n" + cleanJSON + "\n```\n\nLet me know if you need more.")
	require.Equal(t, TierStructuredJSON, withProse.Tier)

	if diff := cmp.Diff(bare.Data, withProse.Data); diff != "" {
		t.Fatalf("surrounding prose changed parse result (-bare +prose):\n%s", diff)
	}
}

func TestParseResponseStripsCommentLines(t *testing.T) {
	resp := "```json\n{\n  // model commentary\n  \"notes\": \"x\"\n}\n```"
	out := ParseResponse(resp)
	require.Equal(t, TierStructuredJSON, out.Tier)
	assert.Equal(t, "x", out.Data["notes"])
}

func TestParseResponseRepair(t *testing.T) {
	clean := ParseResponse(`{"name": "X"}`)
	require.Equal(t, TierRepairedJSON, clean.Tier)

	tests := []struct {
		name     string
		response string
	}{
		{name: "single quotes and trailing comma", response: `{'name': 'X',}`},
		{name: "inside prose", response: "Sure! {'name': 'X',} hope this helps"},
		{name: "fenced but malformed", response: "```json\n{\"name\": \"X\",}\n```"},
		{name: "unquoted keys", response: `{name: "X"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ParseResponse(tt.response)
			require.Equal(t, TierRepairedJSON, out.Tier)
			if diff := cmp.Diff(clean.Data, out.Data); diff != "" {
				t.Fatalf("repaired data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseResponsePrefersLargestCandidate(t *testing.T) {
	resp := `Small: {"a": 1} and the real one: {"tuition": {"academic_year": "AY 2023-2024"}, "notes": "{not a brace}"}`
	out := ParseResponse(resp)
	require.Equal(t, TierRepairedJSON, out.Tier)
	assert.Contains(t, out.Data, "tuition")
	assert.Equal(t, "{not a brace}", out.Data["notes"])
}

func TestParseResponseLegacyAndNone(t *testing.T) {
	legacy := ParseResponse("Tuition Fees:\nGrade 1: $1,000\n\nPrograms Offered:\nPrimary")
	assert.Equal(t, TierLegacyText, legacy.Tier)
	assert.Contains(t, legacy.Text, "Tuition Fees:")

	none := ParseResponse("I could not find anything useful on this page.")
	assert.Equal(t, TierNone, none.Tier)
	assert.Nil(t, none.Data)
}

func TestBraceCandidatesIgnoresUnbalanced(t *testing.T) {
	got := braceCandidates(`{"a": {"b": 1}} trailing { open`)
	want := []string{`{"a": {"b": 1}}`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("braceCandidates mismatch (-want +got):\n%s", diff)
	}
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "structured_json", TierStructuredJSON.String())
	assert.Equal(t, "repaired_json", TierRepairedJSON.String())
	assert.Equal(t, "legacy_text", TierLegacyText.String())
	assert.Equal(t, "none", TierNone.String())
}
