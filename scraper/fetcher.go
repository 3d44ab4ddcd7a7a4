package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-catalog/config"
	"github.com/gocolly/colly/v2"
)

// Request phases used as metric labels.
const (
	phaseSearch   = "search"
	phaseValidate = "validate"
	phaseProduct  = "product"
)

// Page is a fetched and parsed document.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	Doc        *goquery.Document
}

// Fetcher issues GET requests through one colly backend. Every request runs on
// a clone of the base collector so the HTTP client and connection pool are
// shared while the request context stays private to the caller.
type Fetcher struct {
	base     *colly.Collector
	metrics  *Metrics
	requests int64
}

// NewFetcher builds the transport from cfg.
func NewFetcher(cfg *config.Config, metrics *Metrics) *Fetcher {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.IgnoreRobotsTxt = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: cfg.Concurrency,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})
	// Deadlines come from the per-request context only.
	collector.SetRequestTimeout(0)

	// Parallelism is bounded by callers, not by a colly LimitRule.
	return &Fetcher{
		base:    collector,
		metrics: metrics,
	}
}

// WithTransport replaces the HTTP round tripper used by every request.
func (f *Fetcher) WithTransport(rt http.RoundTripper) {
	f.base.WithTransport(rt)
}

// Requests returns the number of requests issued so far.
func (f *Fetcher) Requests() int {
	return int(atomic.LoadInt64(&f.requests))
}

// Fetch GETs rawURL and parses the body. A positive timeout bounds this single
// request. Non-2xx responses and transport failures come back classified
// as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, phase, rawURL string, timeout time.Duration) (*Page, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	c := f.base.Clone()
	c.Context = ctx

	var (
		status int
		body   []byte
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	atomic.AddInt64(&f.requests, 1)
	start := time.Now()
	err := c.Visit(rawURL)
	f.metrics.ObserveRequest(phase, time.Since(start))

	if err != nil {
		classified := classifyError(err, status)
		f.metrics.IncError(errorTypeLabel(classified))
		return nil, fmt.Errorf("fetch %s: %w", rawURL, classified)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		f.metrics.IncError("parse")
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	return &Page{
		URL:        rawURL,
		StatusCode: status,
		Body:       body,
		Doc:        doc,
	}, nil
}
