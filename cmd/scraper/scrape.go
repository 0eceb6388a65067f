package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/aluiziolira/school-scraper/extractor"
	"github.com/aluiziolira/school-scraper/llm"
	"github.com/aluiziolira/school-scraper/models"
	"github.com/aluiziolira/school-scraper/pipeline"
	"github.com/aluiziolira/school-scraper/scraper"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newScrapeCmd(cfg *config.Config) *cobra.Command {
	var names []string
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch every school's pages and extract structured records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schools, err := loadSchools(cfg, names)
			if err != nil {
				return err
			}
			return runPipeline(cmd.Context(), cfg, schools, false)
		},
	}
	cmd.Flags().StringSliceVar(&names, "school", nil, "Only process the named school (repeatable)")
	return cmd
}

func newParseCmd(cfg *config.Config) *cobra.Command {
	var names []string
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Re-extract records from previously saved raw data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schools, err := loadSchools(cfg, names)
			if err != nil {
				return err
			}
			return runPipeline(cmd.Context(), cfg, schools, true)
		},
	}
	cmd.Flags().StringSliceVar(&names, "school", nil, "Only parse the named school (repeatable)")
	return cmd
}

// runPipeline scrapes (or re-parses) schools into the output writers.
// Per-school failures are reported in the summary, not as an error.
func runPipeline(parent context.Context, cfg *config.Config, schools []config.School, reparse bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, waiting for in-flight work to finish")
	}()

	client, err := llm.New(cfg)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	metrics := scraper.NewMetrics()
	ext := extractor.New(client, cfg)

	store, err := pipeline.NewRawStore(cfg.RawDir())
	if err != nil {
		return err
	}
	writer, parsed, err := createWriter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}

	p := pipeline.NewPipeline(ctx, writer, cfg)
	p.Start(cfg.SchoolWorkers)
	if cfg.Verbose {
		p.StartMetricsReporting(10 * time.Second)
	}

	var (
		runner *scraper.Runner
		result *models.ScraperResult
		runErr error
	)
	startTime := time.Now()
	if reparse {
		runner = scraper.NewRunner(cfg, nil, ext, p)
		runner.Metrics = metrics
		runner.ParsedPath = parsed.Path
		srv := startStatusServer(cfg.MetricsAddr, metrics, runner.Progress)
		result, runErr = runner.Reparse(ctx, schools, store)
		shutdownStatusServer(srv)
	} else {
		fetcher, err := scraper.NewFetcher(cfg, scraper.WithMetrics(metrics))
		if err != nil {
			_ = p.Close()
			return fmt.Errorf("initialising fetcher: %w", err)
		}
		defer func() {
			if err := fetcher.Close(); err != nil {
				slog.Error("close browser", slog.Any("error", err))
			}
		}()

		links := scraper.NewLinkResolver(
			scraper.DiscoveredLinks{Lister: fetcher.Discoverer()},
			scraper.StaticLinks{},
		)
		processor := scraper.NewProcessor(cfg, fetcher, links, store)
		runner = scraper.NewRunner(cfg, processor, ext, p)
		runner.Metrics = metrics
		runner.Stats = fetcher
		runner.ParsedPath = parsed.Path

		srv := startStatusServer(cfg.MetricsAddr, metrics, runner.Progress)
		slog.Info("starting scrape",
			slog.Int("schools", len(schools)),
			slog.Int("workers", cfg.SchoolWorkers),
			slog.String("llm", cfg.LLMProvider),
		)
		result, runErr = runner.Run(ctx, schools)
		shutdownStatusServer(srv)
	}
	if runErr != nil {
		slog.Warn("run interrupted", slog.Any("error", runErr))
	}

	if err := p.Close(); err != nil {
		return fmt.Errorf("pipeline shutdown failed: %w", err)
	}
	if err := writer.Validate(); err != nil {
		slog.Warn("output validation failed", slog.Any("error", err))
	}

	printSummary(os.Stdout, result, time.Since(startTime), cfg.OutputDir, p.GetMetrics())
	return nil
}

// createWriter fans records out to the parsed-record directory, the JSONL
// and CSV aggregates and, when configured, MongoDB.
func createWriter(ctx context.Context, cfg *config.Config) (pipeline.OutputWriter, *pipeline.ParsedWriter, error) {
	parsed, err := pipeline.NewParsedWriter(cfg.ParsedDir())
	if err != nil {
		return nil, nil, err
	}
	jsonWriter, err := pipeline.NewJSONWriter(filepath.Join(cfg.OutputDir, "schools.jsonl"))
	if err != nil {
		return nil, nil, err
	}
	csvWriter, err := pipeline.NewCSVWriter(filepath.Join(cfg.OutputDir, "schools.csv"))
	if err != nil {
		_ = jsonWriter.Close()
		return nil, nil, err
	}

	writers := []pipeline.OutputWriter{parsed, jsonWriter, csvWriter}
	if cfg.MongoURI != "" {
		mongoWriter, err := pipeline.NewMongoWriter(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			_ = jsonWriter.Close()
			_ = csvWriter.Close()
			return nil, nil, err
		}
		writers = append(writers, mongoWriter)
	}
	return pipeline.NewMultiWriter(writers...), parsed, nil
}

func printSummary(w io.Writer, result *models.ScraperResult, duration time.Duration, outputDir string, metrics map[string]interface{}) {
	if result == nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"School", "Tier", "Links", "Failed", "Parsed", "Error"})
	for _, s := range result.Schools {
		errText := ""
		if s.Err != nil {
			errText = s.Err.Error()
		}
		t.AppendRow(table.Row{s.Name, s.Tier, s.Links, s.Failed, s.ParsedPath, errText})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	processed := int64(0)
	if v, ok := metrics["processed_records"].(int64); ok {
		processed = v
	}

	separator := "--------------------------------------------------"
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "Run complete")
	fmt.Fprintf(w, "  Run ID:        %s\n", result.RunID)
	fmt.Fprintf(w, "  Schools:       %d (%d failed)\n", len(result.Schools), result.Failed())
	fmt.Fprintf(w, "  Records:       %d\n", processed)
	fmt.Fprintf(w, "  Fetches:       %d\n", result.FetchCount)
	fmt.Fprintf(w, "  Errors:        %d\n", result.ErrorCount)
	fmt.Fprintf(w, "  Retries:       %d\n", result.RetryCount)
	if len(result.ErrorsByType) > 0 {
		fmt.Fprintf(w, "  Error types:   %v\n", result.ErrorsByType)
	}
	if valErrors, ok := metrics["validation_errors"].(map[string]int); ok && len(valErrors) > 0 {
		fmt.Fprintf(w, "  Validation:    %v\n", valErrors)
	}
	fmt.Fprintf(w, "  Duration:      %v\n", duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Output dir:    %s\n", outputDir)
	fmt.Fprintln(w, separator)
}
