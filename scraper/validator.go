package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aluiziolira/go-scrape-catalog/config"
	"github.com/aluiziolira/go-scrape-catalog/models"
)

// Rejection reasons reported by the validator.
const (
	ReasonScheme    = "invalid_scheme"
	ReasonPath      = "not_product_path"
	ReasonStatus    = "bad_status"
	ReasonTransport = "fetch_error"
	ReasonNoHeading = "no_heading"
)

// Validation is the outcome of checking a list of direct links.
type Validation struct {
	Accepted []string
	Rejected []models.Rejection
}

// Validator admits user-supplied links that look like reachable product pages.
type Validator struct {
	cfg     *config.Config
	fetcher *Fetcher
	metrics *Metrics
}

// NewValidator returns a validator that fetches with cfg.ValidateTimeout.
func NewValidator(cfg *config.Config, fetcher *Fetcher, metrics *Metrics) *Validator {
	return &Validator{
		cfg:     cfg,
		fetcher: fetcher,
		metrics: metrics,
	}
}

// Validate checks each entry in order, one request at a time. Rejections are
// logged and collected; they never stop the remaining entries.
func (v *Validator) Validate(ctx context.Context, raw []string) *Validation {
	accepted := NewURLSet()
	result := &Validation{}

	for _, entry := range raw {
		candidate := strings.TrimSpace(entry)
		if candidate == "" {
			continue
		}

		reason, err := v.check(ctx, candidate)
		if reason != "" {
			v.metrics.IncRejection(reason)
			slog.Warn("link rejected",
				slog.String("url", candidate),
				slog.String("reason", reason),
				slog.Any("error", err),
			)
			result.Rejected = append(result.Rejected, models.Rejection{
				URL:    candidate,
				Reason: reason,
				Err:    err,
			})
			continue
		}

		if accepted.Add(candidate) {
			slog.Debug("link accepted", slog.String("url", candidate))
		}
	}

	result.Accepted = accepted.Items()
	return result
}

// check returns an empty reason when candidate is admitted.
func (v *Validator) check(ctx context.Context, candidate string) (string, error) {
	u, err := url.Parse(candidate)
	if err != nil {
		return ReasonScheme, fmt.Errorf("parse url: %w", err)
	}
	if scheme := strings.ToLower(u.Scheme); (scheme != "http" && scheme != "https") || u.Host == "" {
		return ReasonScheme, fmt.Errorf("unsupported url %q", candidate)
	}
	if !strings.Contains(u.Path, v.cfg.DetailPath) {
		return ReasonPath, fmt.Errorf("path %q is not a product detail page", u.Path)
	}

	page, err := v.fetcher.Fetch(ctx, phaseValidate, candidate, v.cfg.ValidateTimeout)
	if err != nil {
		if StatusCode(err) != 0 {
			return ReasonStatus, err
		}
		return ReasonTransport, err
	}
	if page.StatusCode != http.StatusOK {
		return ReasonStatus, &FetchError{Kind: KindStatus, Status: page.StatusCode}
	}
	if page.Doc.Find("h1").Length() == 0 {
		return ReasonNoHeading, fmt.Errorf("no h1 on page")
	}
	return "", nil
}
