package main

import (
	"context"
	"strings"

	"github.com/aluiziolira/go-scrape-catalog/scraper"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [terms]",
		Short: "Scrape every product found by one or more search terms",
		Long: `Search walks the catalog's search results for each term, page by page,
and scrapes the union of the product pages found.

Terms are separated by commas. Several arguments are joined first.

Examples:
  scraper search "дрель"
  scraper search "дрель, перфоратор" --concurrency 10 -o tools.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, searchStrategy(splitList(strings.Join(args, ","))))
		},
	}
}

func searchStrategy(terms []string) strategy {
	return func(ctx context.Context, s *scraper.Scraper) []string {
		return s.Search(ctx, terms)
	}
}
