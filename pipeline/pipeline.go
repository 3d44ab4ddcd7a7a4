// Package pipeline collects extracted products and hands them to an output writer.
package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aluiziolira/go-scrape-catalog/config"
	"github.com/aluiziolira/go-scrape-catalog/models"
	"github.com/aluiziolira/go-scrape-catalog/parser"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrPipelineClosed is returned when Process is called after Close.
	ErrPipelineClosed = errors.New("pipeline: closed")

	// ErrNoRecords is returned when there is nothing to write.
	ErrNoRecords = errors.New("pipeline: no records to write")
)

// OutputWriter defines the interface for data output.
type OutputWriter interface {
	Write(products []*models.Product) error
	Close() error
	Validate() error
}

// Pipeline validates, de-duplicates and normalizes products, then writes the
// complete set in one call on Close.
type Pipeline struct {
	writer OutputWriter
	seen   *lru.Cache[string, struct{}]

	mu       sync.Mutex // guards products/closed/err
	products []*models.Product
	closed   bool
	err      error

	metrics *metrics
}

// NewPipeline builds a pipeline whose duplicate filter remembers up to
// cfg.DedupeMaxSize URLs.
func NewPipeline(writer OutputWriter, cfg *config.Config) (*Pipeline, error) {
	size := cfg.DedupeMaxSize
	if size <= 0 {
		size = config.DefaultConfig().DedupeMaxSize
	}
	seen, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("create dedupe cache: %w", err)
	}

	return &Pipeline{
		writer:  writer,
		seen:    seen,
		metrics: newMetrics(),
	}, nil
}

// Process buffers products for the final write.
func (p *Pipeline) Process(products ...*models.Product) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	if p.closed {
		return ErrPipelineClosed
	}

	for _, product := range products {
		if prepared := p.prepare(product); prepared != nil {
			p.products = append(p.products, prepared)
		}
	}
	return nil
}

// Close writes every buffered product. It returns ErrNoRecords when nothing
// survived, leaving the writer untouched.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return p.Err()
	}
	p.closed = true
	batch := p.products
	p.products = nil
	p.mu.Unlock()

	if len(batch) == 0 {
		p.setErr(ErrNoRecords)
		return ErrNoRecords
	}
	if err := p.writer.Write(batch); err != nil {
		err = fmt.Errorf("write products: %w", err)
		p.setErr(err)
		return err
	}
	p.metrics.addWritten(len(batch))
	return nil
}

// Err returns the first error encountered during processing.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.metrics.snapshot()
}

func (p *Pipeline) prepare(product *models.Product) *models.Product {
	if err := parser.ValidateProduct(product); err != nil {
		p.metrics.addValidation("invalid_record")
		return nil
	}

	parser.NormalizeProduct(product)
	if found, _ := p.seen.ContainsOrAdd(product.URL, struct{}{}); found {
		p.metrics.addValidation("duplicate_url")
		return nil
	}

	p.metrics.incrementProcessed()
	return product
}

func (p *Pipeline) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

type metrics struct {
	mu         sync.Mutex
	processed  int64
	written    int64
	validation map[string]int
}

func newMetrics() *metrics {
	return &metrics{
		validation: make(map[string]int),
	}
}

func (m *metrics) incrementProcessed() {
	m.mu.Lock()
	m.processed++
	m.mu.Unlock()
}

func (m *metrics) addWritten(n int) {
	m.mu.Lock()
	m.written += int64(n)
	m.mu.Unlock()
}

func (m *metrics) addValidation(kind string) {
	m.mu.Lock()
	m.validation[kind]++
	m.mu.Unlock()
}

func (m *metrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	copyValidation := make(map[string]int, len(m.validation))
	for k, v := range m.validation {
		copyValidation[k] = v
	}

	return map[string]interface{}{
		"processed_products": m.processed,
		"written_products":   m.written,
		"validation_errors":  copyValidation,
	}
}
