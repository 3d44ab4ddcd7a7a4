package parser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-catalog/models"
)

const productURL = "https://magbo.ru/catalog/detail/perforator_bosch/"

const fullProductPage = `<html><body>
<h1> Перфоратор Bosch GBH 2-26 </h1>
<h1>Second heading</h1>
<div class="price"><span class="price_value">8 990</span> <span class="discount">10 490</span></div>
<div class="properties">
  <div class="properties__item"><div class="properties__title">Вес</div><div class="properties__value">2.7 кг</div></div>
  <div class="properties__item"><div class="properties__title">Артикул</div></div>
  <div class="properties__item"><div class="properties__title">Артикул:</div><div class="properties__value"> 0611253708 </div></div>
  <div class="properties__item"><div class="properties__title">Артикул</div><div class="properties__value">second</div></div>
</div>
<table>
  <tr class="js-prop-replace"><td><span class="js-prop-title">Страна</span></td><td><span class="js-prop-value">Германия</span></td></tr>
  <tr class="js-prop-replace"><td><span class="js-prop-title">Производитель</span></td><td><span class="js-prop-value"><a href="/brands/bosch/">Bosch</a> (Германия)</span></td></tr>
</table>
<div class="quantity_block_wrapper"><span class="label">Наличие:</span><span class="value">В наличии</span></div>
</body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestExtractFullPage(t *testing.T) {
	p := Extract(productURL, mustDoc(t, fullProductPage))

	want := models.Product{
		Name:         "Перфоратор Bosch GBH 2-26",
		Price:        "8 990",
		OldPrice:     "10 490",
		Article:      "0611253708",
		Manufacturer: "Bosch",
		Availability: InStock,
		URL:          productURL,
	}
	if *p != want {
		t.Fatalf("product = %+v, want %+v", *p, want)
	}
}

func TestExtractEmptyPage(t *testing.T) {
	docs := map[string]*goquery.Document{
		"empty body": mustDoc(t, "<html><body><p>nothing here</p></body></html>"),
		"nil":        nil,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			p := Extract(productURL, doc)
			if p.URL != productURL {
				t.Fatalf("url = %q, want %q", p.URL, productURL)
			}
			for _, f := range p.Fields() {
				if f.Name != models.FieldURL && f.Value != "" {
					t.Fatalf("%s = %q, want empty", f.Name, f.Value)
				}
			}
		})
	}
}

func TestExtractManufacturerPlainText(t *testing.T) {
	doc := mustDoc(t, `<table>
<tr class="js-prop-replace"><td>no title</td></tr>
<tr class="js-prop-replace"><td><span class="js-prop-title">Производитель</span></td><td><span class="js-prop-value"> Makita </span></td></tr>
</table>`)
	got, ok := ExtractManufacturer(doc)
	if !ok || got != "Makita" {
		t.Fatalf("manufacturer = %q/%v, want Makita", got, ok)
	}
}

func TestExtractManufacturerStopsAtFirstMatch(t *testing.T) {
	doc := mustDoc(t, `<table>
<tr class="js-prop-replace"><td><span class="js-prop-title">Производитель</span></td></tr>
<tr class="js-prop-replace"><td><span class="js-prop-title">Производитель</span></td><td><span class="js-prop-value">Makita</span></td></tr>
</table>`)
	if got, ok := ExtractManufacturer(doc); ok {
		t.Fatalf("manufacturer = %q, want unset when the first matching row has no value", got)
	}
}

func TestExtractArticleSkipsIncompleteRows(t *testing.T) {
	doc := mustDoc(t, `<div class="properties__item"><div class="properties__value">orphan</div></div>
<div class="properties__item"><div class="properties__title">Артикул</div><div class="properties__value">A-1</div></div>`)
	got, ok := ExtractArticle(doc)
	if !ok || got != "A-1" {
		t.Fatalf("article = %q/%v, want A-1", got, ok)
	}
}

func TestExtractAvailabilityMissing(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{name: "no block", html: `<span class="value">В наличии</span>`},
		{name: "no value", html: `<div class="quantity_block_wrapper"><span class="label">Наличие</span></div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := ExtractAvailability(mustDoc(t, tt.html)); ok {
				t.Fatalf("availability = %q, want unset", got)
			}
		})
	}
}

func TestExtractAvailabilityOutOfStock(t *testing.T) {
	doc := mustDoc(t, `<div class="quantity_block_wrapper"><span class="value">Под заказ</span></div>`)
	got, ok := ExtractAvailability(doc)
	if !ok || got != OutOfStock {
		t.Fatalf("availability = %q/%v, want %q", got, ok, OutOfStock)
	}
}

func TestExtractWithStrictAvailability(t *testing.T) {
	doc := mustDoc(t, `<h1>Пила</h1><div class="quantity_block_wrapper"><span class="value">Нет в наличии</span></div>`)

	tests := []struct {
		name   string
		strict bool
		want   string
	}{
		{name: "default substring rule", strict: false, want: InStock},
		{name: "strict negation", strict: true, want: OutOfStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ExtractWith(RulesFor(tt.strict), "https://magbo.ru/catalog/detail/1/", doc)
			if p.Availability != tt.want {
				t.Fatalf("availability = %q, want %q", p.Availability, tt.want)
			}
			if p.Name != "Пила" {
				t.Fatalf("name = %q, other rules must be unchanged", p.Name)
			}
		})
	}

	if got := Extract("https://magbo.ru/catalog/detail/1/", doc).Availability; got != InStock {
		t.Fatalf("Extract availability = %q, want default %q", got, InStock)
	}
}

func TestRulesAreIndependent(t *testing.T) {
	doc := mustDoc(t, `<span class="discount">500</span>`)
	for _, rule := range Rules {
		value, ok := rule.Extract(doc)
		if rule.Field == models.FieldOldPrice {
			if !ok || value != "500" {
				t.Fatalf("old price = %q/%v", value, ok)
			}
			continue
		}
		if ok {
			t.Fatalf("rule %s matched %q on a page without it", rule.Field, value)
		}
	}
}
