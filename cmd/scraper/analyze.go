package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/aluiziolira/school-scraper/extractor"
	"github.com/aluiziolira/school-scraper/llm"
	"github.com/aluiziolira/school-scraper/models"
	"github.com/aluiziolira/school-scraper/parser"
	"github.com/aluiziolira/school-scraper/pipeline"
	"github.com/spf13/cobra"
)

func newSummarizeCmd(cfg *config.Config) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize one school's saved raw data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := newExtractor(cfg)
			if err != nil {
				return err
			}
			store, err := pipeline.NewRawStore(cfg.RawDir())
			if err != nil {
				return err
			}
			raw, err := store.Load(name)
			if err != nil {
				return fmt.Errorf("load raw data for %s: %w", name, err)
			}
			summary, err := ext.Summarize(cmd.Context(), raw, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "school", "", "School to summarize")
	_ = cmd.MarkFlagRequired("school")
	return cmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Write a comparative market analysis over every scraped school",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schools, err := loadSchools(cfg, nil)
			if err != nil {
				return err
			}
			ext, err := newExtractor(cfg)
			if err != nil {
				return err
			}
			digests, err := collectDigests(cfg, schools)
			if err != nil {
				return err
			}

			report, err := ext.Analyze(cmd.Context(), digests)
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.OutputDir, "analysis.md")
			if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
				return fmt.Errorf("write analysis: %w", err)
			}
			slog.Info("analysis written", slog.String("path", path), slog.Int("schools", len(digests)))
			return nil
		},
	}
}

func newExtractor(cfg *config.Config) (*extractor.Extractor, error) {
	client, err := llm.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return extractor.New(client, cfg), nil
}

// collectDigests pairs each school's raw artifact with its parsed record.
// Schools without raw data are skipped; a missing parsed record falls back
// to an empty one.
func collectDigests(cfg *config.Config, schools []config.School) ([]string, error) {
	store, err := pipeline.NewRawStore(cfg.RawDir())
	if err != nil {
		return nil, err
	}
	parsed, err := pipeline.NewParsedWriter(cfg.ParsedDir())
	if err != nil {
		return nil, err
	}

	digests := make([]string, 0, len(schools))
	for _, school := range schools {
		raw, err := store.Load(school.Name)
		if err != nil {
			slog.Warn("skipping school without raw data", slog.String("school", school.Name), slog.Any("error", err))
			continue
		}

		var rec *models.SchoolRecord
		data, err := parsed.Load(school.Name)
		switch {
		case err == nil:
			rec = parser.RecordFromJSON(data, school.Name)
		case errors.Is(err, fs.ErrNotExist):
			rec = models.NewSchoolRecord(school.Name, school.Link)
		default:
			slog.Warn("unreadable parsed record", slog.String("school", school.Name), slog.Any("error", err))
			rec = models.NewSchoolRecord(school.Name, school.Link)
		}
		if rec.Link == "" {
			rec.Link = school.Link
		}
		digests = append(digests, extractor.BuildDigest(rec, raw))
	}
	return digests, nil
}
