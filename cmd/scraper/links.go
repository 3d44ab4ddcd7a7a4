package main

import (
	"context"
	"strings"

	"github.com/aluiziolira/go-scrape-catalog/scraper"
	"github.com/spf13/cobra"
)

// NewLinksCmd creates the links command.
func NewLinksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "links [urls]",
		Short: "Validate direct product links and scrape the accepted ones",
		Long: `Links checks every comma-separated URL before scraping it. A link is
skipped when it is not http(s), its path is not a product detail page, the
page does not answer 200, or the page has no heading.

Examples:
  scraper links "https://magbo.ru/catalog/detail/a/,https://magbo.ru/catalog/detail/b/"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, linksStrategy(splitList(strings.Join(args, ","))))
		},
	}
}

func linksStrategy(links []string) strategy {
	return func(ctx context.Context, s *scraper.Scraper) []string {
		return s.Links(ctx, links)
	}
}
