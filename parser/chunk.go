package parser

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the SplitContent limit used when none is configured.
const DefaultChunkSize = 8000

// SplitContent breaks content into chunks of at most max characters,
// keeping whole paragraphs together when they fit. Paragraphs longer than
// max are cut into fixed-size pieces.
func SplitContent(content string, max int) []string {
	if max <= 0 {
		max = DefaultChunkSize
	}

	var (
		chunks  []string
		current string
	)
	for _, paragraph := range strings.Split(content, "\n\n") {
		if utf8.RuneCountInString(current)+utf8.RuneCountInString(paragraph)+2 <= max {
			if current != "" {
				current += "\n\n" + paragraph
			} else {
				current = paragraph
			}
			continue
		}

		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}
		if utf8.RuneCountInString(paragraph) > max {
			chunks = append(chunks, splitRunes(paragraph, max)...)
			continue
		}
		current = paragraph
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

func splitRunes(s string, size int) []string {
	runes := []rune(s)
	out := make([]string, 0, len(runes)/size+1)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}

// Truncate cuts s to at most max characters.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
