package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "scraper",
		Short: "Scrape school websites into structured records",
		Long: `scraper collects school web pages and PDFs, asks an LLM to extract tuition,
programs, enrollment, events, scholarships and contact details, and writes one
structured record per school.

Usage:
  scraper scrape [--school NAME]...
  scraper parse [--school NAME]...
  scraper discover <url>
  scraper summarize --school NAME
  scraper analyze`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, level := newLogger(cfg.Verbose)
			slog.SetDefault(logger)
			slog.SetLogLoggerLevel(level.Level())

			cfg.ContentFormat = strings.ToLower(cfg.ContentFormat)
			cfg.LLMProvider = strings.ToLower(cfg.LLMProvider)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Enable verbose logging")
	flags.StringVar(&cfg.SchoolsFile, "schools", cfg.SchoolsFile, "School catalog file (json5, json or yaml)")
	flags.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "Output directory")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Status server listen address (e.g. :9090)")
	flags.StringVar(&cfg.ContentFormat, "content-format", cfg.ContentFormat, "Page content format: text or markdown")
	flags.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "Maximum retry attempts per URL")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	flags.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Concurrent link fetches per school")
	flags.DurationVar(&cfg.BatchPause, "batch-pause", cfg.BatchPause, "Pause between link batches")
	flags.IntVar(&cfg.SchoolWorkers, "workers", cfg.SchoolWorkers, "Schools processed concurrently")
	flags.BoolVar(&cfg.RespectRobotsTxt, "respect-robots", cfg.RespectRobotsTxt, "Respect robots.txt directives")
	flags.StringVar(&cfg.MongoURI, "mongo-uri", cfg.MongoURI, "Also upsert records into MongoDB")
	flags.StringVar(&cfg.MongoDatabase, "mongo-db", cfg.MongoDatabase, "MongoDB database name")
	flags.StringVar(&cfg.LLMProvider, "llm-provider", cfg.LLMProvider, "LLM provider: gemini or ollama")
	flags.StringVar(&cfg.LLMModel, "llm-model", cfg.LLMModel, "LLM model name")
	flags.StringVar(&cfg.LLMBaseURL, "llm-base-url", cfg.LLMBaseURL, "LLM endpoint (defaults per provider)")
	flags.DurationVar(&cfg.LLMTimeout, "llm-timeout", cfg.LLMTimeout, "LLM request timeout")

	root.AddCommand(
		newScrapeCmd(cfg),
		newParseCmd(cfg),
		newDiscoverCmd(cfg),
		newSummarizeCmd(cfg),
		newAnalyzeCmd(cfg),
	)
	return root
}

func loadSchools(cfg *config.Config, names []string) ([]config.School, error) {
	catalog, err := config.LoadSchools(cfg.SchoolsFile)
	if err != nil {
		return nil, err
	}
	schools, err := catalog.Select(names)
	if err != nil {
		return nil, err
	}
	if len(schools) == 0 {
		return nil, fmt.Errorf("no schools in %s", cfg.SchoolsFile)
	}
	return schools, nil
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
