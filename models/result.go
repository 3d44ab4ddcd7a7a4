package models

import "time"

// WorkResult is the outcome of fetching and extracting one product URL.
// Exactly one of Product and Err is set.
type WorkResult struct {
	URL     string
	Product *Product
	Err     error
}

// OK reports whether the work item produced a product.
func (r WorkResult) OK() bool {
	return r.Err == nil && r.Product != nil
}

// Rejection records why a direct link was not admitted to the work set.
type Rejection struct {
	URL    string
	Reason string
	Err    error
}

// Discovery holds the product URLs found for one search term.
type Discovery struct {
	Term    string
	URLs    []string
	Pages   int
	Partial bool
}

// ScraperResult holds the overall result of a scraping operation
type ScraperResult struct {
	Products     []*Product
	StartTime    time.Time
	EndTime      time.Time
	Discovered   int
	Submitted    int
	Succeeded    int
	ErrorCount   int
	FailedURLs   []string
	ErrorsByType map[string]int
	Rejections   []Rejection
	FailedTerms  []string
	RequestCount int
	PageCount    int
}
