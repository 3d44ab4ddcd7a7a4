package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aluiziolira/go-scrape-catalog/models"
)

// namedWriter labels a sink so fan-out errors say which one failed.
type namedWriter struct {
	name   string
	writer OutputWriter
}

// MultiWriter fans every batch out to several sinks in order.
type MultiWriter struct {
	writers []namedWriter
	mu      sync.Mutex
}

// NewDualWriter writes CSV to csvFilename and JSONL to jsonFilename.
func NewDualWriter(csvFilename, jsonFilename string) (*MultiWriter, error) {
	csvWriter, err := NewCSVWriter(csvFilename)
	if err != nil {
		return nil, fmt.Errorf("create csv writer: %w", err)
	}
	jsonWriter, err := NewJSONWriter(jsonFilename)
	if err != nil {
		return nil, fmt.Errorf("create json writer: %w", err)
	}

	mw := &MultiWriter{}
	mw.add("csv", csvWriter)
	mw.add("json", jsonWriter)
	return mw, nil
}

func (mw *MultiWriter) add(name string, w OutputWriter) {
	mw.writers = append(mw.writers, namedWriter{name: name, writer: w})
}

// Write stops at the first sink that fails.
func (mw *MultiWriter) Write(products []*models.Product) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	for _, nw := range mw.writers {
		if err := nw.writer.Write(products); err != nil {
			return fmt.Errorf("%s write: %w", nw.name, err)
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (mw *MultiWriter) Close() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	var errs []error
	for _, nw := range mw.writers {
		if err := nw.writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s close: %w", nw.name, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks every sink and joins their errors.
func (mw *MultiWriter) Validate() error {
	var errs []error
	for _, nw := range mw.writers {
		if err := nw.writer.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s validation: %w", nw.name, err))
		}
	}
	return errors.Join(errs...)
}
