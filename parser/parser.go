// Package parser turns model output and scraped text into school records.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aluiziolira/school-scraper/models"
)

var (
	currencyTokenRe = regexp.MustCompile(`(?i)\b(?:PHP|USD)\.?|[$₱]`)
	pesoPrefixRe    = regexp.MustCompile(`^[Pp]\s?(\d)`)
)

// ValidateRecord ensures a record can be persisted.
func ValidateRecord(r *models.SchoolRecord) error {
	if r == nil {
		return fmt.Errorf("record is nil")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("record missing name")
	}
	return nil
}

// NormalizeAmount strips currency markers and thousands separators and
// returns a numeric amount when the rest parses as a float. Anything else is
// kept verbatim as text.
func NormalizeAmount(s string) models.Amount {
	original := strings.TrimSpace(s)
	if original == "" || IsNoData(original) {
		return models.Amount{}
	}

	cleaned := currencyTokenRe.ReplaceAllString(original, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = pesoPrefixRe.ReplaceAllString(cleaned, "$1")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return models.NumericAmount(v)
	}
	return models.TextAmount(original)
}

// AmountFromAny converts a decoded JSON value into an Amount.
func AmountFromAny(v any) models.Amount {
	switch t := v.(type) {
	case nil:
		return models.Amount{}
	case float64:
		return models.NumericAmount(t)
	case int:
		return models.NumericAmount(float64(t))
	case string:
		return NormalizeAmount(t)
	default:
		return NormalizeAmount(fmt.Sprint(t))
	}
}

var noDataPhrases = map[string]struct{}{
	"no data available":        {},
	"no information available": {},
	"n/a":                      {},
}

// IsNoData reports whether s is one of the placeholder phrases models use for
// missing content.
func IsNoData(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, ".")
	_, ok := noDataPhrases[s]
	return ok
}
