package pipeline

import "github.com/aluiziolira/go-scrape-catalog/models"

// Aggregate splits work results into products and failures. Both keep the
// order in which results were collected.
func Aggregate(results []models.WorkResult) (products []*models.Product, failures []models.WorkResult) {
	products = make([]*models.Product, 0, len(results))
	for _, r := range results {
		if r.OK() {
			products = append(products, r.Product)
			continue
		}
		failures = append(failures, r)
	}
	return products, failures
}
