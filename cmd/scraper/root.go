package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-catalog/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRootCmd creates the root command. Without a subcommand it asks for the
// mode and input interactively.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scraper",
		Short: "Scrape product cards from an online catalog",
		Long: `Scraper collects product detail pages from a catalog site and writes one
record per product (name, price, old price, article, manufacturer,
availability, url).

Product URLs come either from walking the site's search results for one or
more terms, or from a list of direct product links. Run without a subcommand
to choose interactively.

Configuration precedence: defaults < --config file < SCRAPER_* environment
variables < explicit flags.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractiveCmd,
	}

	addRunFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewLinksCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addRunFlags(flags *pflag.FlagSet) {
	defaults := config.DefaultConfig()

	flags.StringP("config", "c", "", "YAML configuration file")
	flags.String("base-url", defaults.BaseURL, "Catalog base URL")
	flags.IntP("concurrency", "n", defaults.Concurrency, "Number of concurrent product fetches")
	flags.Int("max-pages", defaults.MaxPages, "Maximum search result pages walked per term")
	flags.Duration("fetch-timeout", defaults.FetchTimeout, "Per-product request timeout (0 disables)")
	flags.Duration("validate-timeout", defaults.ValidateTimeout, "Timeout for each direct link check")
	flags.Bool("keep-partial", defaults.KeepPartialPages, "Keep URLs found before a search page failure")
	flags.Bool("strict-availability", defaults.StrictAvailability, `Map "Нет в наличии" to out of stock instead of the plain substring match`)
	flags.StringP("output", "o", defaults.OutputFile, "Output file path")
	flags.StringP("format", "f", defaults.OutputFormat, "Output format: csv, json, dual, or sqlite")
	flags.String("report", defaults.ReportFile, "Write a Markdown run report to this path")
	flags.String("metrics-addr", defaults.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
}

// loadConfig resolves the configuration for cmd: defaults, then the config
// file, then the environment, then flags the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	cfg := config.DefaultConfig()

	if path, _ := flags.GetString("config"); path != "" {
		f, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if err := f.Apply(cfg); err != nil {
			return nil, fmt.Errorf("apply config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if flags.Changed("base-url") {
		cfg.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("max-pages") {
		cfg.MaxPages, _ = flags.GetInt("max-pages")
	}
	if flags.Changed("fetch-timeout") {
		cfg.FetchTimeout = durationFlag(flags, "fetch-timeout")
	}
	if flags.Changed("validate-timeout") {
		cfg.ValidateTimeout = durationFlag(flags, "validate-timeout")
	}
	if flags.Changed("keep-partial") {
		cfg.KeepPartialPages, _ = flags.GetBool("keep-partial")
	}
	if flags.Changed("strict-availability") {
		cfg.StrictAvailability, _ = flags.GetBool("strict-availability")
	}
	if flags.Changed("output") {
		cfg.OutputFile, _ = flags.GetString("output")
	}
	if flags.Changed("format") {
		format, _ := flags.GetString("format")
		cfg.OutputFormat = strings.ToLower(format)
	}
	if flags.Changed("report") {
		cfg.ReportFile, _ = flags.GetString("report")
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	cfg.Verbose, _ = flags.GetBool("verbose")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func durationFlag(flags *pflag.FlagSet, name string) time.Duration {
	d, _ := flags.GetDuration(name)
	return d
}

// splitList splits comma-separated input, trimming blanks and dropping empty entries.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
