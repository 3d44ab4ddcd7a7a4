package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aluiziolira/go-scrape-catalog/config"
	"github.com/aluiziolira/go-scrape-catalog/models"
	"github.com/aluiziolira/go-scrape-catalog/pipeline"
)

// Scraper wires the transport, URL discovery strategies and the product pool.
type Scraper struct {
	cfg         *config.Config
	fetcher     *Fetcher
	walker      *Walker
	validator   *Validator
	coordinator *Coordinator
	Metrics     *Metrics

	mu          sync.Mutex
	pageCount   int
	failedTerms []string
	rejections  []models.Rejection
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	metrics := NewMetrics()

	fetcher := NewFetcher(cfg, metrics)
	walker, err := NewWalker(cfg, fetcher, metrics)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		cfg:         cfg,
		fetcher:     fetcher,
		walker:      walker,
		validator:   NewValidator(cfg, fetcher, metrics),
		coordinator: NewCoordinator(cfg, fetcher, metrics),
		Metrics:     metrics,
	}, nil
}

// WithTransport swaps the HTTP round tripper, mainly for tests.
func (s *Scraper) WithTransport(rt http.RoundTripper) {
	s.fetcher.WithTransport(rt)
}

// Search walks every term and returns the union of the product URLs found.
// A term whose pagination fails is logged and skipped.
func (s *Scraper) Search(ctx context.Context, terms []string) []string {
	all := NewURLSet()
	for _, term := range terms {
		if ctx.Err() != nil {
			break
		}

		slog.Info("searching", slog.String("term", term))
		found, err := s.walker.Discover(ctx, term)
		if err != nil {
			slog.Error("search term failed", slog.String("term", term), slog.Any("error", err))
			s.mu.Lock()
			s.failedTerms = append(s.failedTerms, term)
			s.mu.Unlock()
			continue
		}

		s.mu.Lock()
		s.pageCount += found.Pages
		s.mu.Unlock()
		added := all.AddAll(found.URLs)
		slog.Info("search term done",
			slog.String("term", term),
			slog.Int("found", len(found.URLs)),
			slog.Int("new", added),
			slog.Bool("partial", found.Partial),
		)
	}

	slog.Info("total products found", slog.Int("products", all.Len()))
	return all.Items()
}

// Links validates direct product links and returns the accepted ones.
func (s *Scraper) Links(ctx context.Context, raw []string) []string {
	v := s.validator.Validate(ctx, raw)

	s.mu.Lock()
	s.rejections = append(s.rejections, v.Rejected...)
	s.mu.Unlock()

	slog.Info("links validated",
		slog.Int("accepted", len(v.Accepted)),
		slog.Int("rejected", len(v.Rejected)),
	)
	return v.Accepted
}

// Run fetches every URL on the bounded pool and feeds the successful products
// to p. It returns ErrNoURLs when urls is empty.
func (s *Scraper) Run(ctx context.Context, urls []string, p *pipeline.Pipeline) (*models.ScraperResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	start := time.Now()
	results := s.coordinator.Run(ctx, urls, s.cfg.Concurrency)
	products, failures := pipeline.Aggregate(results)

	errorsByType := make(map[string]int)
	failedURLs := make([]string, 0, len(failures))
	for _, f := range failures {
		errorsByType[errorTypeLabel(f.Err)]++
		failedURLs = append(failedURLs, f.URL)
	}

	if err := p.Process(products...); err != nil {
		return nil, fmt.Errorf("pipeline process: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rejections := make([]models.Rejection, len(s.rejections))
	copy(rejections, s.rejections)
	failedTerms := make([]string, len(s.failedTerms))
	copy(failedTerms, s.failedTerms)

	return &models.ScraperResult{
		Products:     products,
		StartTime:    start,
		EndTime:      time.Now(),
		Discovered:   len(urls),
		Submitted:    len(results),
		Succeeded:    len(products),
		ErrorCount:   len(failures),
		FailedURLs:   failedURLs,
		ErrorsByType: errorsByType,
		Rejections:   rejections,
		FailedTerms:  failedTerms,
		RequestCount: s.fetcher.Requests(),
		PageCount:    s.pageCount,
	}, nil
}
