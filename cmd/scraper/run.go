package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-scrape-catalog/config"
	"github.com/aluiziolira/go-scrape-catalog/models"
	"github.com/aluiziolira/go-scrape-catalog/pipeline"
	"github.com/aluiziolira/go-scrape-catalog/scraper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// watchShutdown logs once if ctx ends before the returned release func is
// called. release waits for the watcher to exit, so a normal return that
// cancels ctx afterwards logs nothing.
func watchShutdown(ctx context.Context, logger *slog.Logger) (release func()) {
	finished := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
		case <-finished:
			if ctx.Err() == nil {
				return
			}
		}
		logger.Info("shutdown signal received, waiting for in-flight work to finish")
	}()
	return func() {
		close(finished)
		<-exited
	}
}

// strategy produces the product URLs to fetch for one run.
type strategy func(ctx context.Context, s *scraper.Scraper) []string

// run resolves the configuration, collects URLs with discover, fetches them
// and writes the surviving records.
func run(cmd *cobra.Command, discover strategy) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		return fmt.Errorf("initialising scraper: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer watchShutdown(ctx, slog.Default())()

	metricsServer := startMetricsServer(cfg.MetricsAddr, s.Metrics)
	defer stopMetricsServer(metricsServer)

	urls := discover(ctx, s)
	if len(urls) == 0 {
		slog.Warn("no product urls to fetch, nothing written")
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to scrape.")
		return nil
	}

	writer, err := createWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("close writer", slog.Any("error", err))
		}
	}()

	p, err := pipeline.NewPipeline(writer, cfg)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}

	slog.Info("starting scrape",
		slog.String("base_url", cfg.BaseURL),
		slog.Int("products", len(urls)),
		slog.Int("workers", cfg.Concurrency),
	)

	startTime := time.Now()
	result, err := s.Run(ctx, urls, p)
	if err != nil {
		return fmt.Errorf("scraping failed: %w", err)
	}
	closeErr := p.Close()

	if cfg.ReportFile != "" {
		if err := pipeline.WriteReportFile(cfg.ReportFile, result, cfg.OutputFile); err != nil {
			slog.Error("writing report failed", slog.Any("error", err))
		} else {
			slog.Info("report written", slog.String("file", cfg.ReportFile))
		}
	}

	if closeErr != nil {
		if errors.Is(closeErr, pipeline.ErrNoRecords) {
			return fmt.Errorf("all %d products failed, nothing written: %w", result.Submitted, closeErr)
		}
		return fmt.Errorf("pipeline shutdown failed: %w", closeErr)
	}
	if err := writer.Validate(); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}

	printSummary(cmd.OutOrStdout(), result, time.Since(startTime), cfg, p.GetMetrics())
	return nil
}

func createWriter(format, filename string) (pipeline.OutputWriter, error) {
	switch format {
	case "json":
		return pipeline.NewJSONWriter(filename)
	case "csv":
		return pipeline.NewCSVWriter(filename)
	case "dual":
		jsonFilename := strings.TrimSuffix(filename, ".csv") + ".json"
		return pipeline.NewDualWriter(filename, jsonFilename)
	case "sqlite":
		return pipeline.NewSQLiteWriter(filename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func startMetricsServer(addr string, metrics *scraper.Metrics) *http.Server {
	if addr == "" || metrics == nil {
		return nil
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
	return server
}

func stopMetricsServer(server *http.Server) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("metrics server shutdown failed", slog.Any("error", err))
	}
}

func printSummary(w io.Writer, result *models.ScraperResult, duration time.Duration, cfg *config.Config, metrics map[string]interface{}) {
	separator := "--------------------------------------------------"
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "Scrape complete")

	written := int64(0)
	if n, ok := metrics["written_products"].(int64); ok {
		written = n
	}
	itemsPerSec := 0.0
	if duration.Seconds() > 0 {
		itemsPerSec = float64(written) / duration.Seconds()
	}

	fmt.Fprintf(w, "  Products:      %d written of %d submitted\n", written, result.Submitted)
	fmt.Fprintf(w, "  Failed:        %d\n", result.ErrorCount)
	if len(result.ErrorsByType) > 0 {
		fmt.Fprintf(w, "  Error types:   %v\n", result.ErrorsByType)
	}
	if len(result.Rejections) > 0 {
		fmt.Fprintf(w, "  Rejected:      %d links\n", len(result.Rejections))
	}
	if len(result.FailedTerms) > 0 {
		fmt.Fprintf(w, "  Failed terms:  %s\n", strings.Join(result.FailedTerms, ", "))
	}
	if valErrors, ok := metrics["validation_errors"].(map[string]int); ok && len(valErrors) > 0 {
		fmt.Fprintf(w, "  Validation:    %v\n", valErrors)
	}
	fmt.Fprintf(w, "  Requests:      %d (%d search pages)\n", result.RequestCount, result.PageCount)
	fmt.Fprintf(w, "  Duration:      %v\n", duration)
	fmt.Fprintf(w, "  Items/sec:     %.2f\n", itemsPerSec)
	fmt.Fprintf(w, "  Output file:   %s (%s)\n", cfg.OutputFile, cfg.OutputFormat)
	if cfg.ReportFile != "" {
		fmt.Fprintf(w, "  Report:        %s\n", cfg.ReportFile)
	}
	fmt.Fprintln(w, separator)
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
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
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
