package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry        *prometheus.Registry
	FetchesTotal    *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	RetriesTotal    prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
	PDFTotal        *prometheus.CounterVec
	SchoolsTotal    *prometheus.CounterVec
	ExtractionTiers *prometheus.CounterVec
	CacheHits       prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_fetches_total",
			Help: "Total page fetches by method and outcome.",
		},
		[]string{"method", "outcome"},
	)
	fetchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scraper_fetch_duration_seconds",
			Help:    "Latency of page fetches by method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_retries_total",
			Help: "Total number of fetch retry attempts.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of fetch errors by type.",
		},
		[]string{"error_type"},
	)
	pdfs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_pdf_total",
			Help: "PDF downloads by result.",
		},
		[]string{"result"},
	)
	schools := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_schools_total",
			Help: "Schools processed by status.",
		},
		[]string{"status"},
	)
	tiers := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_extraction_tier_total",
			Help: "Parsed records by the strategy that recovered them.",
		},
		[]string{"tier"},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_fetch_cache_hits_total",
			Help: "Fetches answered from the in-memory cache.",
		},
	)

	registry.MustRegister(fetches, fetchDuration, retries, errorsTotal, pdfs, schools, tiers, cacheHits)

	return &Metrics{
		Registry:        registry,
		FetchesTotal:    fetches,
		FetchDuration:   fetchDuration,
		RetriesTotal:    retries,
		ErrorsTotal:     errorsTotal,
		PDFTotal:        pdfs,
		SchoolsTotal:    schools,
		ExtractionTiers: tiers,
		CacheHits:       cacheHits,
	}
}

// IncFetch counts a finished fetch.
func (m *Metrics) IncFetch(method, outcome string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(method, outcome).Inc()
}

// ObserveDuration records a fetch duration.
func (m *Metrics) ObserveDuration(method string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(method).Observe(d.Seconds())
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) IncPDF(result string) {
	if m == nil {
		return
	}
	m.PDFTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncSchool(status string) {
	if m == nil {
		return
	}
	m.SchoolsTotal.WithLabelValues(status).Inc()
}

// IncTier counts a record recovered by tier.
func (m *Metrics) IncTier(tier string) {
	if m == nil {
		return
	}
	m.ExtractionTiers.WithLabelValues(tier).Inc()
}

func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}
