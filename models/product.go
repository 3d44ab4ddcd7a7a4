// Package models defines data structures for the scraper.
package models

// Field names of a product record, in output column order.
const (
	FieldName         = "name"
	FieldPrice        = "price"
	FieldOldPrice     = "old_price"
	FieldArticle      = "article"
	FieldManufacturer = "manufacturer"
	FieldAvailability = "availability"
	FieldURL          = "url"
)

// Product represents one product detail page. Empty strings mean the field was not found.
type Product struct {
	Name         string `csv:"name" json:"name"`
	Price        string `csv:"price" json:"price"`
	OldPrice     string `csv:"old_price" json:"old_price"`
	Article      string `csv:"article" json:"article"`
	Manufacturer string `csv:"manufacturer" json:"manufacturer"`
	Availability string `csv:"availability" json:"availability"`
	URL          string `csv:"url" json:"url"`
}

// Field is a named product value.
type Field struct {
	Name  string
	Value string
}

// Fields returns the record as ordered name/value pairs.
func (p *Product) Fields() []Field {
	return []Field{
		{Name: FieldName, Value: p.Name},
		{Name: FieldPrice, Value: p.Price},
		{Name: FieldOldPrice, Value: p.OldPrice},
		{Name: FieldArticle, Value: p.Article},
		{Name: FieldManufacturer, Value: p.Manufacturer},
		{Name: FieldAvailability, Value: p.Availability},
		{Name: FieldURL, Value: p.URL},
	}
}

// Set assigns value to the named field. It reports false for unknown names.
func (p *Product) Set(field, value string) bool {
	switch field {
	case FieldName:
		p.Name = value
	case FieldPrice:
		p.Price = value
	case FieldOldPrice:
		p.OldPrice = value
	case FieldArticle:
		p.Article = value
	case FieldManufacturer:
		p.Manufacturer = value
	case FieldAvailability:
		p.Availability = value
	case FieldURL:
		p.URL = value
	default:
		return false
	}
	return true
}
