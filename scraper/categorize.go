package scraper

import (
	"net/url"
	"strings"

	"github.com/aluiziolira/school-scraper/models"
)

// categoryKeywords are matched as lowercase substrings of a candidate URL's
// path and query; the host never contributes a match.
var categoryKeywords = map[models.Category][]string{
	models.CategoryFees:         {"tuition", "fee", "payment", "cost", "pricing", "rates"},
	models.CategoryPrograms:     {"program", "curriculum", "academic", "course", "grade", "preschool", "elementary", "junior-high", "senior-high", "strand"},
	models.CategoryEnrollment:   {"admission", "enrol", "enroll", "apply", "application", "requirement", "registration"},
	models.CategoryEvents:       {"event", "calendar", "news", "activities", "announcement"},
	models.CategoryScholarships: {"scholarship", "discount", "financial-aid", "grant", "assistance"},
	models.CategoryContact:      {"contact", "location", "directory", "inquir", "reach-us", "faq"},
}

// Categorize buckets same-host URLs into categories by keyword. A URL may
// land in several categories; each category keeps first-seen order without
// duplicates.
func Categorize(urls []string, baseURL string) map[models.Category][]string {
	out := make(map[models.Category][]string, len(models.Categories))
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return out
	}
	host := canonicalHost(base.Hostname())

	seen := make(map[models.Category]map[string]struct{}, len(models.Categories))
	for _, raw := range urls {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || canonicalHost(u.Hostname()) != host {
			continue
		}
		link := u.String()
		lower := strings.ToLower(u.RequestURI())
		for _, category := range models.Categories {
			if !containsAny(lower, categoryKeywords[category]) {
				continue
			}
			if seen[category] == nil {
				seen[category] = make(map[string]struct{})
			}
			if _, dup := seen[category][link]; dup {
				continue
			}
			seen[category][link] = struct{}{}
			out[category] = append(out[category], link)
		}
	}
	return out
}

func canonicalHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
