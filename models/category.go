package models

import "strings"

// Category names a semantic bucket of school pages.
type Category string

const (
	CategoryFees         Category = "fees"
	CategoryPrograms     Category = "programs"
	CategoryEnrollment   Category = "enrollment"
	CategoryEvents       Category = "events"
	CategoryScholarships Category = "scholarships"
	CategoryContact      Category = "contact"
)

// Categories lists every category in artifact order.
var Categories = []Category{
	CategoryFees,
	CategoryPrograms,
	CategoryEnrollment,
	CategoryEvents,
	CategoryScholarships,
	CategoryContact,
}

// Label is the upper-case form used in raw artifact headers.
func (c Category) Label() string {
	return strings.ToUpper(string(c))
}

// ParseCategory maps a category name or one of its common aliases.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fees", "fee", "school_fee", "tuition":
		return CategoryFees, true
	case "programs", "program":
		return CategoryPrograms, true
	case "enrollment", "enrolment", "admissions", "enrollment process and requirements":
		return CategoryEnrollment, true
	case "events", "upcoming events":
		return CategoryEvents, true
	case "scholarships", "scholarship", "discounts and scholarship":
		return CategoryScholarships, true
	case "contact", "contact information":
		return CategoryContact, true
	}
	return "", false
}

// FetchMethod selects how page content is acquired.
type FetchMethod string

const (
	MethodRequest FetchMethod = "request"
	MethodBrowser FetchMethod = "browser"
)

// ParseFetchMethod accepts the method spellings found in school catalogs.
// An empty string selects MethodRequest.
func ParseFetchMethod(s string) (FetchMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "request", "requests", "http":
		return MethodRequest, true
	case "browser", "headless", "playwright", "chromedp":
		return MethodBrowser, true
	}
	return "", false
}

// CandidateLink is one page to fetch for a school.
type CandidateLink struct {
	Category Category
	URL      string
}
