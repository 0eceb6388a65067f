package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds scraper configuration.
type Config struct {
	SchoolsFile string
	OutputDir   string

	// Fetching.
	Timeout          time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
	RetryBackoffMax  time.Duration
	UserAgent        string
	Accept           string
	AcceptLanguage   string
	MaxBodySize      int
	PDFMinBytes      int
	ContentFormat    string // text or markdown
	CacheSize        int
	RespectRobotsTxt bool
	BrowserSettle    time.Duration
	BrowserTimeout   time.Duration

	// Per-school processing.
	BatchSize         int
	BatchPause        time.Duration
	SchoolWorkers     int
	DiscoveryDepth    int
	DiscoveryMaxPages int

	// Extraction.
	LLMProvider       string // gemini or ollama
	LLMModel          string
	LLMBaseURL        string // empty selects the provider default
	LLMAPIKey         string
	LLMTimeout        time.Duration
	LLMRetries        int
	PromptCharBudget  int
	ChunkSize         int
	AnalysisChunkSize int

	// Output pipeline.
	PipelineBufferSize int
	WriteBatchSize     int
	DedupeMaxSize      int
	DrainTimeout       time.Duration
	MongoURI           string
	MongoDatabase      string

	MetricsAddr string
	Verbose     bool
}

// DefaultConfig returns conservative defaults.
func DefaultConfig() *Config {
	return &Config{
		SchoolsFile: "schools.json5",
		OutputDir:   "output",

		Timeout:          30 * time.Second,
		MaxRetries:       2,
		RetryBackoff:     500 * time.Millisecond,
		RetryBackoffMax:  5 * time.Second,
		UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		Accept:           "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage:   "en-US,en;q=0.5",
		MaxBodySize:      50 << 20,
		PDFMinBytes:      100,
		ContentFormat:    "text",
		CacheSize:        256,
		RespectRobotsTxt: false,
		BrowserSettle:    2 * time.Second,
		BrowserTimeout:   60 * time.Second,

		BatchSize:         5,
		BatchPause:        time.Second,
		SchoolWorkers:     1,
		DiscoveryDepth:    2,
		DiscoveryMaxPages: 100,

		LLMProvider:       "gemini",
		LLMModel:          "gemini-1.5-flash",
		LLMTimeout:        2 * time.Minute,
		LLMRetries:        2,
		PromptCharBudget:  15000,
		ChunkSize:         8000,
		AnalysisChunkSize: 12000,

		PipelineBufferSize: 64,
		WriteBatchSize:     1,
		DedupeMaxSize:      10000,
		DrainTimeout:       30 * time.Second,
		MongoDatabase:      "schools",
	}
}

// RawDir is where combined raw artifacts are stored.
func (c *Config) RawDir() string {
	return c.OutputDir + "/raw_data"
}

// ParsedDir is where per-school parsed records are stored.
func (c *Config) ParsedDir() string {
	return c.OutputDir + "/parsed_data"
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.SchoolsFile == "" {
		return fmt.Errorf("schools file cannot be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.MaxBodySize < 0 {
		return fmt.Errorf("max body size cannot be negative")
	}
	if c.PDFMinBytes < 0 {
		return fmt.Errorf("pdf min bytes cannot be negative")
	}
	if c.ContentFormat != "text" && c.ContentFormat != "markdown" {
		return fmt.Errorf("content format must be text or markdown")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.BrowserSettle < 0 {
		return fmt.Errorf("browser settle cannot be negative")
	}
	if c.BrowserTimeout <= 0 {
		return fmt.Errorf("browser timeout must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.BatchPause < 0 {
		return fmt.Errorf("batch pause cannot be negative")
	}
	if c.SchoolWorkers <= 0 {
		return fmt.Errorf("school workers must be positive")
	}
	if c.DiscoveryDepth < 0 {
		return fmt.Errorf("discovery depth cannot be negative")
	}
	if c.DiscoveryMaxPages < 0 {
		return fmt.Errorf("discovery max pages cannot be negative")
	}
	if c.LLMProvider != "gemini" && c.LLMProvider != "ollama" {
		return fmt.Errorf("llm provider must be gemini or ollama")
	}
	if c.LLMModel == "" {
		return fmt.Errorf("llm model cannot be empty")
	}
	if c.LLMBaseURL != "" {
		parsed, err := url.Parse(c.LLMBaseURL)
		if err != nil {
			return fmt.Errorf("invalid llm base URL: %w", err)
		}
		if parsed.Host == "" {
			return fmt.Errorf("llm base URL must include a host")
		}
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}
	if c.LLMRetries < 0 {
		return fmt.Errorf("llm retries cannot be negative")
	}
	if c.PromptCharBudget <= 0 {
		return fmt.Errorf("prompt char budget must be positive")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	if c.AnalysisChunkSize <= 0 {
		return fmt.Errorf("analysis chunk size must be positive")
	}
	if c.PipelineBufferSize <= 0 {
		return fmt.Errorf("pipeline buffer size must be positive")
	}
	if c.WriteBatchSize <= 0 {
		return fmt.Errorf("write batch size must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	if c.DrainTimeout < 0 {
		return fmt.Errorf("drain timeout cannot be negative")
	}

	return nil
}
