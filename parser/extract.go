// Package parser turns fetched product documents into records.
package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-catalog/models"
)

const (
	headingSelector     = "h1"
	priceSelector       = "span.price_value"
	oldPriceSelector    = "span.discount"
	propertyRowSelector = "div.properties__item"
	propertyTitle       = "div.properties__title"
	propertyValue       = "div.properties__value"
	replaceRowSelector  = "tr.js-prop-replace"
	replaceTitle        = "span.js-prop-title"
	replaceValue        = "span.js-prop-value"
	stockBlockSelector  = "div.quantity_block_wrapper"
	stockValueSelector  = "span.value"
	articleMarker       = "Артикул"
	manufacturerMarker  = "Производитель"
)

// Rule extracts one optional field from a document.
type Rule struct {
	Field   string
	Extract func(doc *goquery.Document) (string, bool)
}

// Rules is the fixed extraction order. Each rule is independent of the others.
var Rules = RulesFor(false)

// RulesFor returns the extraction rules. strictAvailability swaps the
// availability rule for the negation-aware StrictAvailability mapping.
func RulesFor(strictAvailability bool) []Rule {
	availability := ExtractAvailability
	if strictAvailability {
		availability = ExtractStrictAvailability
	}
	return []Rule{
		{Field: models.FieldName, Extract: ExtractName},
		{Field: models.FieldPrice, Extract: ExtractPrice},
		{Field: models.FieldOldPrice, Extract: ExtractOldPrice},
		{Field: models.FieldArticle, Extract: ExtractArticle},
		{Field: models.FieldManufacturer, Extract: ExtractManufacturer},
		{Field: models.FieldAvailability, Extract: availability},
	}
}

// Extract builds a product record for productURL with the default Rules.
func Extract(productURL string, doc *goquery.Document) *models.Product {
	return ExtractWith(Rules, productURL, doc)
}

// ExtractWith builds a product record for productURL. It never fails: fields
// whose rule finds nothing stay empty, and a nil document yields a URL-only record.
func ExtractWith(rules []Rule, productURL string, doc *goquery.Document) *models.Product {
	p := &models.Product{URL: productURL}
	if doc == nil {
		return p
	}
	for _, rule := range rules {
		if value, ok := rule.Extract(doc); ok {
			p.Set(rule.Field, value)
		}
	}
	return p
}

// ExtractName returns the text of the first h1.
func ExtractName(doc *goquery.Document) (string, bool) {
	return firstText(doc.Selection, headingSelector)
}

// ExtractPrice returns the current (discounted) price.
func ExtractPrice(doc *goquery.Document) (string, bool) {
	return firstText(doc.Selection, priceSelector)
}

// ExtractOldPrice returns the price before discount.
func ExtractOldPrice(doc *goquery.Document) (string, bool) {
	return firstText(doc.Selection, oldPriceSelector)
}

// ExtractArticle scans the property list for the article row.
func ExtractArticle(doc *goquery.Document) (value string, found bool) {
	doc.Find(propertyRowSelector).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		title := row.Find(propertyTitle).First()
		cell := row.Find(propertyValue).First()
		if title.Length() == 0 || cell.Length() == 0 {
			return true
		}
		if !strings.Contains(NormalizeText(title.Text()), articleMarker) {
			return true
		}
		value, found = NormalizeText(cell.Text()), true
		return false
	})
	return value, found
}

// ExtractManufacturer scans the replaceable property table for the manufacturer
// row. A linked brand name wins over the cell text.
func ExtractManufacturer(doc *goquery.Document) (value string, found bool) {
	doc.Find(replaceRowSelector).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		title := row.Find(replaceTitle).First()
		if title.Length() == 0 {
			return true
		}
		if !strings.Contains(NormalizeText(title.Text()), manufacturerMarker) {
			return true
		}
		cell := row.Find(replaceValue).First()
		if cell.Length() > 0 {
			if link := cell.Find("a").First(); link.Length() > 0 {
				value, found = NormalizeText(link.Text()), true
			} else {
				value, found = NormalizeText(cell.Text()), true
			}
		}
		return false
	})
	return value, found
}

// ExtractAvailability maps the stock block with Availability.
func ExtractAvailability(doc *goquery.Document) (string, bool) {
	return stockValue(doc, Availability)
}

// ExtractStrictAvailability maps the stock block with StrictAvailability.
func ExtractStrictAvailability(doc *goquery.Document) (string, bool) {
	return stockValue(doc, StrictAvailability)
}

func stockValue(doc *goquery.Document, mapping func(string) string) (string, bool) {
	block := doc.Find(stockBlockSelector).First()
	if block.Length() == 0 {
		return "", false
	}
	text, ok := firstText(block, stockValueSelector)
	if !ok {
		return "", false
	}
	return mapping(text), true
}

func firstText(s *goquery.Selection, selector string) (string, bool) {
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return "", false
	}
	return NormalizeText(found.Text()), true
}
