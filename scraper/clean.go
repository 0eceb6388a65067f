package scraper

import (
	"log/slog"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// noiseSelectors are removed from the body before text is collected.
var noiseSelectors = []string{
	"script", "style", "noscript", "iframe",
	"nav", "footer", "head", "meta", "link",
}

// CleanHTML isolates the document body, drops non-content elements and
// comments, and returns the visible text as one trimmed non-empty line per
// line of text.
func CleanHTML(raw string) string {
	body, ok := isolateBody(raw)
	if !ok {
		return ""
	}

	var b strings.Builder
	for _, n := range body.Nodes {
		collectText(&b, n)
	}
	return compactLines(b.String())
}

// MarkdownHTML isolates the body like CleanHTML but renders it as Markdown.
func MarkdownHTML(raw string) string {
	body, ok := isolateBody(raw)
	if !ok {
		return ""
	}
	fragment, err := goquery.OuterHtml(body)
	if err != nil {
		slog.Debug("serialize body failed", slog.Any("error", err))
		return ""
	}
	markdown, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		slog.Debug("markdown conversion failed", slog.Any("error", err))
		return CleanHTML(raw)
	}
	return strings.TrimSpace(markdown)
}

func isolateBody(raw string) (*goquery.Selection, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		slog.Debug("parse html failed", slog.Any("error", err))
		return nil, false
	}
	body := doc.Find("body").First()
	if body.Length() == 0 {
		body = doc.Selection
	}
	body.Find(strings.Join(noiseSelectors, ", ")).Remove()
	return body, true
}

// collectText writes every text node under n followed by a newline.
func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteByte('\n')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}

func compactLines(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
