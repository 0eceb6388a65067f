package scraper

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFContentPrefix tags text extracted from a PDF so the extractor can find it.
const PDFContentPrefix = "[PDF CONTENT FROM: "

// isPDFURL reports whether the URL path ends in .pdf, ignoring case and query.
func isPDFURL(raw string) bool {
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	} else if i := strings.IndexAny(raw, "?#"); i >= 0 {
		path = raw[:i]
	}
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}

// pdfRewrite gives a content-type detected PDF a synthetic .pdf suffix.
func pdfRewrite(raw string) string {
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[:i]
	}
	return raw + ".pdf"
}

func isPDFContentType(header http.Header) bool {
	if header == nil {
		return false
	}
	return strings.Contains(strings.ToLower(header.Get("Content-Type")), "application/pdf")
}

// extractPDF turns a downloaded PDF body into tagged text. It never fails:
// problems are reported as diagnostic strings.
func (f *Fetcher) extractPDF(target string, status int, body []byte) string {
	if status >= http.StatusBadRequest {
		f.metrics.IncPDF("http_error")
		slog.Warn("pdf download failed", slog.String("url", target), slog.Int("status", status))
		return fmt.Sprintf("Error downloading PDF: HTTP status %d (%s)", status, target)
	}
	if len(body) < f.cfg.PDFMinBytes {
		f.metrics.IncPDF("empty")
		slog.Warn("empty pdf", slog.String("url", target), slog.Int("bytes", len(body)))
		return fmt.Sprintf("Empty PDF (%d bytes) downloaded from %s", len(body), target)
	}

	text, err := pdfText(body)
	if err != nil {
		f.metrics.IncPDF("corrupt")
		slog.Error("pdf extraction failed", slog.String("url", target), slog.Any("error", err))
		return fmt.Sprintf("Error processing PDF from %s: %v", target, err)
	}

	f.metrics.IncPDF("ok")
	slog.Info("extracted pdf", slog.String("url", target), slog.Int("chars", len(text)))
	return PDFContentPrefix + target + "]\n\n" + text
}

// pdfText writes body to a temporary file and reads its pages. The file is
// removed on every path.
func pdfText(body []byte) (text string, err error) {
	tmp, err := os.CreateTemp("", "school-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	file, reader, err := pdf.Open(tmp.Name())
	if err != nil {
		return "", err
	}
	defer file.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n\n"), nil
}
