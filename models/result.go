package models

import "time"

// RawArtifact describes one school's combined raw text file.
type RawArtifact struct {
	SchoolName string
	Path       string
	Links      int
	Failed     int
}

// SchoolOutcome is the per-school entry of a run summary.
type SchoolOutcome struct {
	Name       string
	RawPath    string
	ParsedPath string
	Tier       string
	Links      int
	Failed     int
	Err        error
}

// ScraperResult holds the overall result of a scraping run.
type ScraperResult struct {
	RunID        string
	Schools      []SchoolOutcome
	StartTime    time.Time
	EndTime      time.Time
	FetchCount   int
	ErrorCount   int
	ErrorsByType map[string]int
	RetryCount   int
}

// Failed counts schools that ended with an error.
func (r *ScraperResult) Failed() int {
	n := 0
	for _, s := range r.Schools {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Progress is a point-in-time view of a school's fetch progress.
type Progress struct {
	School    string `json:"school"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Percent returns completion in the range [0, 100].
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}
