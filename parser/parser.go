package parser

import (
	"fmt"
	"strings"

	"github.com/aluiziolira/go-scrape-catalog/models"
)

// ValidateProduct ensures a record can be written. Only the source URL is mandatory.
func ValidateProduct(p *models.Product) error {
	if p == nil {
		return fmt.Errorf("product is nil")
	}
	if strings.TrimSpace(p.URL) == "" {
		return fmt.Errorf("product missing url")
	}
	return nil
}

// NormalizeText collapses whitespace runs (including non-breaking spaces) and trims.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeProduct applies NormalizeText to every field in place.
func NormalizeProduct(p *models.Product) {
	for _, f := range p.Fields() {
		p.Set(f.Name, NormalizeText(f.Value))
	}
}
