package parser

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical availability labels written to the output.
const (
	InStock    = "В наличии"
	OutOfStock = "Нет в наличии"
)

const (
	inStockPhrase    = "в наличии"
	outOfStockPhrase = "нет в наличии"
)

func lowerStock(text string) string {
	return cases.Lower(language.Russian).String(NormalizeText(text))
}

// Availability maps a stock text to InStock when it contains the in-stock
// phrase, OutOfStock otherwise. The site's own negative label contains the
// phrase too, so "Нет в наличии" maps to InStock here; see StrictAvailability.
func Availability(text string) string {
	if strings.Contains(lowerStock(text), inStockPhrase) {
		return InStock
	}
	return OutOfStock
}

// StrictAvailability is Availability with the negated phrase checked first.
func StrictAvailability(text string) string {
	lowered := lowerStock(text)
	if strings.Contains(lowered, outOfStockPhrase) {
		return OutOfStock
	}
	if strings.Contains(lowered, inStockPhrase) {
		return InStock
	}
	return OutOfStock
}
