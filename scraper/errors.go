package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrNoURLs is returned when discovery or validation yields nothing to fetch.
var ErrNoURLs = errors.New("scraper: no product urls")

// Kind classifies a failed request. Its String form is the metric and summary label.
type Kind int

const (
	KindOther Kind = iota
	KindCanceled
	KindTimeout
	KindConnection
	KindForbidden
	KindNotFound
	KindRateLimited
	KindStatus
)

var kindLabels = [...]string{
	KindOther:       "other",
	KindCanceled:    "canceled",
	KindTimeout:     "timeout",
	KindConnection:  "connection",
	KindForbidden:   "forbidden",
	KindNotFound:    "not_found",
	KindRateLimited: "rate_limited",
	KindStatus:      "status",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindLabels) {
		return "other"
	}
	return kindLabels[k]
}

// FetchError is a classified request failure. Status is zero when no
// response was received.
type FetchError struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: http status %d: %v", e.Kind, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: http status %d", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Status
	}
	return 0
}

// KindOf reports how err was classified. Context cancellation is recognised
// even when err never went through the transport.
func KindOf(err error) Kind {
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindOther
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	return KindOf(err).String()
}

// classifyError turns a transport error and/or status into a *FetchError.
// Transport conditions win over the status code.
func classifyError(err error, statusCode int) error {
	if err == nil && (statusCode == 0 || statusCode == http.StatusOK) {
		return nil
	}

	var netErr net.Error
	var opErr *net.OpError
	switch {
	case errors.Is(err, context.Canceled):
		return &FetchError{Kind: KindCanceled, Err: err}
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &FetchError{Kind: KindTimeout, Err: err}
	case errors.As(err, &opErr):
		return &FetchError{Kind: KindConnection, Err: err}
	}

	fe := &FetchError{Kind: KindOther, Status: statusCode, Err: err}
	switch statusCode {
	case 0, http.StatusOK:
		fe.Status = 0
	case http.StatusForbidden:
		fe.Kind = KindForbidden
	case http.StatusNotFound:
		fe.Kind = KindNotFound
	case http.StatusTooManyRequests:
		fe.Kind = KindRateLimited
	default:
		fe.Kind = KindStatus
	}
	return fe
}
