package parser

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

// SectionHeaders are the headers of the plain-text response format. A
// section's span ends at the next of these.
var SectionHeaders = []string{
	"Tuition Fees:",
	"Programs Offered:",
	"Enrollment Requirements:",
	"Enrollment Process:",
	"Upcoming Events:",
	"Scholarships/Discounts:",
	"Facilities:",
	"Faculty Information:",
	"Faculty and Staff:",
	"Achievements:",
	"Achievements and Accreditations:",
	"Marketing Content:",
	"Marketing and Branding:",
	"Technical Data:",
	"Technical Infrastructure:",
	"Student Life:",
	"Contact Information:",
	"Notes:",
}

// fuzzyHeaderThreshold is the minimum Jaro-Winkler similarity for a line to
// count as a misspelled header.
const fuzzyHeaderThreshold = 0.92

var (
	headerTerminatorRe = buildHeaderTerminator()
	headerPatterns     = buildHeaderPatterns()

	markdownRe   = regexp.MustCompile(`\*\*|\*|-\*`)
	bulletRe     = regexp.MustCompile(`(?m)^[ \t]*[-•*][ \t]*`)
	ruleLineRe   = regexp.MustCompile(`^[=\-_*]+$`)
	headerTrimRe = regexp.MustCompile(`^[\s#*]+|[\s*]+$`)
)

func buildHeaderTerminator() *regexp.Regexp {
	quoted := make([]string, len(SectionHeaders))
	for i, h := range SectionHeaders {
		quoted[i] = regexp.QuoteMeta(h)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}

// ExtractSection returns the cleaned text that follows header, up to the
// next known header. Missing sections and placeholder text yield "".
func ExtractSection(text, header string) string {
	start, ok := locateSection(text, header)
	if !ok {
		return ""
	}

	body := text[start:]
	if loc := headerTerminatorRe.FindStringIndex(body); loc != nil {
		body = body[:loc[0]]
	}

	cleaned := CleanSection(body)
	if IsNoData(cleaned) {
		return ""
	}
	return cleaned
}

// HasSections reports whether any known header is present in text.
func HasSections(text string) bool {
	for _, h := range SectionHeaders {
		if _, ok := locateSection(text, h); ok {
			return true
		}
	}
	return false
}

// locateSection returns the offset just past header. Lookups go from exact,
// to case-insensitive, to the header name at the start of a line followed by
// a colon or whitespace, to a fuzzy match on header-like lines.
func locateSection(text, header string) (int, bool) {
	if i := strings.Index(text, header); i >= 0 {
		return i + len(header), true
	}

	p := patternsFor(header)
	if loc := p.insensitive.FindStringIndex(text); loc != nil {
		return loc[1], true
	}
	if loc := p.partial.FindStringIndex(text); loc != nil {
		return loc[1], true
	}

	return fuzzyHeader(text, p.name)
}

type headerPattern struct {
	name        string
	insensitive *regexp.Regexp
	partial     *regexp.Regexp
}

func compileHeader(header string) headerPattern {
	name := strings.TrimSuffix(header, ":")
	return headerPattern{
		name:        name,
		insensitive: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(header)),
		partial:     regexp.MustCompile(`(?im)^[ \t#*]*` + regexp.QuoteMeta(name) + `[*]*[:\s]+`),
	}
}

func buildHeaderPatterns() map[string]headerPattern {
	out := make(map[string]headerPattern, len(SectionHeaders))
	for _, h := range SectionHeaders {
		out[h] = compileHeader(h)
	}
	return out
}

// patternsFor returns the precompiled patterns of a known header and
// compiles others on demand.
func patternsFor(header string) headerPattern {
	if p, ok := headerPatterns[header]; ok {
		return p
	}
	return compileHeader(header)
}

func fuzzyHeader(text, name string) (int, bool) {
	want := strings.ToLower(name)
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		lineEnd := offset + len(line)
		candidate := strings.TrimRight(line, "\r\n")
		trimmed := headerTrimRe.ReplaceAllString(candidate, "")
		if strings.HasSuffix(trimmed, ":") {
			label := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(trimmed, ":")))
			if label != "" && matchr.JaroWinkler(label, want, false) >= fuzzyHeaderThreshold {
				return lineEnd, true
			}
		}
		offset = lineEnd
	}
	return 0, false
}

// CleanSection strips markdown emphasis and bullets, collapses whitespace
// within each line and keeps blank-line paragraph breaks.
func CleanSection(text string) string {
	text = markdownRe.ReplaceAllString(text, "")
	text = bulletRe.ReplaceAllString(text, "")

	var (
		b       strings.Builder
		pending bool
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || ruleLineRe.MatchString(line) {
			if b.Len() > 0 {
				pending = true
			}
			continue
		}
		if b.Len() > 0 {
			if pending {
				b.WriteString("\n\n")
			} else {
				b.WriteByte('\n')
			}
		}
		pending = false
		b.WriteString(line)
	}
	return b.String()
}

// Paragraphs splits cleaned section text on blank lines.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Lines returns the non-empty trimmed lines of text.
func Lines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
