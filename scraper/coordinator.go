package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/aluiziolira/go-scrape-catalog/config"
	"github.com/aluiziolira/go-scrape-catalog/models"
	"github.com/aluiziolira/go-scrape-catalog/parser"
	"golang.org/x/sync/errgroup"
)

const progressEvery = 50

// Coordinator fetches and extracts product pages on a bounded pool.
type Coordinator struct {
	cfg       *config.Config
	fetcher   *Fetcher
	rules     []parser.Rule
	metrics   *Metrics
	completed int64
}

// NewCoordinator returns a coordinator that uses fetcher for every product page.
func NewCoordinator(cfg *config.Config, fetcher *Fetcher, metrics *Metrics) *Coordinator {
	return &Coordinator{
		cfg:     cfg,
		fetcher: fetcher,
		rules:   parser.RulesFor(cfg.StrictAvailability),
		metrics: metrics,
	}
}

// Run processes every distinct URL with at most concurrency tasks in flight and
// returns once all of them are done. concurrency is the only bound on product
// fetches; cfg.Concurrency sizes the connection pool, not the pool of tasks. Results arrive in completion order, one
// per distinct URL. A failing task never cancels its siblings.
func (c *Coordinator) Run(ctx context.Context, urls []string, concurrency int) []models.WorkResult {
	if ctx == nil {
		ctx = context.Background()
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	set := NewURLSet()
	set.AddAll(urls)
	work := set.Items()
	atomic.StoreInt64(&c.completed, 0)

	slog.Info("fetching products",
		slog.Int("products", len(work)),
		slog.Int("workers", concurrency),
	)

	results := make(chan models.WorkResult, concurrency)
	collected := make([]models.WorkResult, 0, len(work))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			collected = append(collected, r)
			c.report(r, len(work))
		}
	}()

	var g errgroup.Group
	g.SetLimit(concurrency)
	for _, productURL := range work {
		productURL := productURL
		g.Go(func() error {
			results <- c.process(ctx, productURL)
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	<-done

	return collected
}

func (c *Coordinator) process(ctx context.Context, productURL string) (result models.WorkResult) {
	result.URL = productURL
	defer func() {
		if r := recover(); r != nil {
			result.Product = nil
			result.Err = fmt.Errorf("extract %s: panic: %v", productURL, r)
		}
	}()

	release := c.metrics.TrackInFlight()
	page, err := c.fetcher.Fetch(ctx, phaseProduct, productURL, c.cfg.FetchTimeout)
	release()
	if err != nil {
		result.Err = err
		return result
	}

	result.Product = parser.ExtractWith(c.rules, productURL, page.Doc)
	c.metrics.IncItems()
	return result
}

func (c *Coordinator) report(r models.WorkResult, total int) {
	done := atomic.AddInt64(&c.completed, 1)
	if r.Err != nil {
		slog.Warn("product failed",
			slog.String("url", r.URL),
			slog.String("category", errorTypeLabel(r.Err)),
			slog.Any("error", r.Err),
		)
	} else {
		slog.Debug("product done", slog.String("url", r.URL))
	}
	if done%progressEvery == 0 {
		slog.Info("product progress",
			slog.Int64("completed", done),
			slog.Int("total", total),
		)
	}
}
