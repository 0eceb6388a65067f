package parser

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/titanous/json5"
)

// Tier identifies which parsing strategy recovered a model response.
type Tier int

const (
	TierNone Tier = iota
	TierStructuredJSON
	TierRepairedJSON
	TierLegacyText
)

func (t Tier) String() string {
	switch t {
	case TierStructuredJSON:
		return "structured_json"
	case TierRepairedJSON:
		return "repaired_json"
	case TierLegacyText:
		return "legacy_text"
	default:
		return "none"
	}
}

// Outcome is the result of ParseResponse. Data is set for the JSON tiers,
// Text for the legacy tier.
type Outcome struct {
	Tier Tier
	Data map[string]any
	Text string
}

var (
	fencedJSONRe    = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	commentLineRe   = regexp.MustCompile(`(?m)^\s*//.*$`)
	trailingObjRe   = regexp.MustCompile(`,\s*}`)
	trailingArrayRe = regexp.MustCompile(`,\s*]`)
)

// ParseResponse runs the tiered recovery over a model response: a fenced
// JSON block parsed strictly, then lenient repair of JSON-like candidates,
// then section-header text.
func ParseResponse(response string) Outcome {
	if m := fencedJSONRe.FindStringSubmatch(response); m != nil {
		body := commentLineRe.ReplaceAllString(m[1], "")
		if data, ok := decodeStrict(body); ok {
			return Outcome{Tier: TierStructuredJSON, Data: data}
		}
		if data, ok := repairJSON(body); ok {
			return Outcome{Tier: TierRepairedJSON, Data: data}
		}
	}

	for _, candidate := range braceCandidates(response) {
		if data, ok := repairJSON(candidate); ok {
			return Outcome{Tier: TierRepairedJSON, Data: data}
		}
	}

	if HasSections(response) {
		return Outcome{Tier: TierLegacyText, Text: response}
	}
	return Outcome{Tier: TierNone, Text: response}
}

func decodeStrict(s string) (map[string]any, bool) {
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

// repairJSON tries strict decoding, then JSON5, then quote and
// trailing-comma rewriting.
func repairJSON(s string) (map[string]any, bool) {
	if data, ok := decodeStrict(s); ok {
		return data, true
	}

	var out map[string]any
	if err := json5.Unmarshal([]byte(s), &out); err == nil && out != nil {
		return out, true
	}

	fixed := strings.ReplaceAll(s, "'", `"`)
	fixed = trailingObjRe.ReplaceAllString(fixed, "}")
	fixed = trailingArrayRe.ReplaceAllString(fixed, "]")
	return decodeStrict(fixed)
}

// braceCandidates returns every balanced top-level {...} span of s, largest
// first. Braces inside double-quoted strings are ignored.
func braceCandidates(s string) []string {
	var (
		out      []string
		depth    int
		start    = -1
		inString bool
		escaped  bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				out = append(out, s[start:i+1])
				start = -1
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}
