package scraper

import (
	"context"
	"log/slog"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/aluiziolira/school-scraper/models"
)

// LinkSource proposes candidate links per category for a school.
type LinkSource interface {
	Links(ctx context.Context, school config.School) map[models.Category][]string
}

// DiscoveredLinks lists the school site's URLs and categorizes them.
type DiscoveredLinks struct {
	Lister URLLister
}

func (d DiscoveredLinks) Links(ctx context.Context, school config.School) map[models.Category][]string {
	if d.Lister == nil {
		return nil
	}
	urls, err := d.Lister.ListURLs(ctx, school.Link)
	if err != nil {
		slog.Warn("url discovery failed", slog.String("school", school.Name), slog.Any("error", err))
		return nil
	}
	return Categorize(urls, school.Link)
}

// StaticLinks returns the school's curated fallback links.
type StaticLinks struct{}

func (StaticLinks) Links(_ context.Context, school config.School) map[models.Category][]string {
	out := make(map[models.Category][]string, len(school.Fallback))
	for key, links := range school.Fallback {
		category, ok := models.ParseCategory(string(key))
		if !ok {
			continue
		}
		for _, link := range links {
			if link != "" {
				out[category] = append(out[category], link)
			}
		}
	}
	return out
}

// LinkResolver asks each source in turn and, per category, keeps the first
// non-empty list. Later sources are only consulted while some category is
// still empty.
type LinkResolver struct {
	sources []LinkSource
}

// NewLinkResolver orders sources by preference.
func NewLinkResolver(sources ...LinkSource) *LinkResolver {
	return &LinkResolver{sources: sources}
}

// Resolve returns the candidate links in category order.
func (r *LinkResolver) Resolve(ctx context.Context, school config.School) []models.CandidateLink {
	chosen := make(map[models.Category][]string, len(models.Categories))
	for _, source := range r.sources {
		if len(chosen) == len(models.Categories) {
			break
		}
		proposed := source.Links(ctx, school)
		for _, category := range models.Categories {
			if _, done := chosen[category]; done {
				continue
			}
			if links := proposed[category]; len(links) > 0 {
				chosen[category] = links
			}
		}
	}

	var out []models.CandidateLink
	for _, category := range models.Categories {
		for _, link := range chosen[category] {
			out = append(out, models.CandidateLink{Category: category, URL: link})
		}
	}
	return out
}
