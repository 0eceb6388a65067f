package main

import (
	"fmt"
	"io"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/aluiziolira/school-scraper/models"
	"github.com/aluiziolira/school-scraper/scraper"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newDiscoverCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "discover <url>",
		Short: "List and categorize the pages of a school site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher, err := scraper.NewFetcher(cfg)
			if err != nil {
				return fmt.Errorf("initialising fetcher: %w", err)
			}
			defer fetcher.Close()

			urls, err := fetcher.Discoverer().ListURLs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printCategories(cmd.OutOrStdout(), scraper.Categorize(urls, args[0]), len(urls))
			return nil
		},
	}
}

func printCategories(w io.Writer, categorized map[models.Category][]string, total int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Category", "URL"})
	for _, c := range models.Categories {
		for _, link := range categorized[c] {
			t.AppendRow(table.Row{c.Label(), link})
		}
	}
	t.AppendFooter(table.Row{"Discovered", total})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
