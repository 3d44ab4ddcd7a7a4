package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "catalog"

// Metrics holds the scraper collectors, registered on their own registry so
// tests and the metrics endpoint never see the global default.
type Metrics struct {
	Registry *prometheus.Registry

	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	products   prometheus.Counter
	pages      prometheus.Counter
	failures   *prometheus.CounterVec
	rejections *prometheus.CounterVec
	inFlight   prometheus.Gauge
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "HTTP requests issued, by phase (search, validate, product).",
		}, []string{"phase"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by phase.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"phase"}),
		products: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "products_extracted_total",
			Help:      "Product pages fetched and extracted.",
		}),
		pages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "pages_total",
			Help:      "Search result pages walked.",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_total",
			Help:      "Failed requests, by error type.",
		}, []string{"error_type"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "links",
			Name:      "rejected_total",
			Help:      "Direct links rejected during validation, by reason.",
		}, []string{"reason"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "product_fetches_in_flight",
			Help:      "Product fetches currently outstanding.",
		}),
	}
}

// ObserveRequest counts one request of phase and records how long it took.
func (m *Metrics) ObserveRequest(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(phase).Inc()
	m.latency.WithLabelValues(phase).Observe(d.Seconds())
}

// IncItems counts one extracted product.
func (m *Metrics) IncItems() {
	if m == nil {
		return
	}
	m.products.Inc()
}

// IncPages counts one walked search page.
func (m *Metrics) IncPages() {
	if m == nil {
		return
	}
	m.pages.Inc()
}

// IncError counts a failure under its type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(errorType).Inc()
}

// IncRejection counts a rejected direct link.
func (m *Metrics) IncRejection(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

// TrackInFlight raises the in-flight gauge; call the returned func when done.
func (m *Metrics) TrackInFlight() func() {
	if m == nil {
		return func() {}
	}
	m.inFlight.Inc()
	return m.inFlight.Dec
}
