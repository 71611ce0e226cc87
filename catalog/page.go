package catalog

import (
	"strings"

	"github.com/mansetdig/goAset/backend"
)

// PerPage is the dashboard grid size, four columns by three rows.
const PerPage = 12

// Page is one slice of a product list. Number is 1-based; Total is the page
// count and is 0 for an empty list.
type Page struct {
	Items  []backend.Product
	Number int
	Total  int
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Number < p.Total }

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// Filter keeps the products whose name contains search, ignoring case. An
// empty search keeps everything.
func Filter(products []backend.Product, search string) []backend.Product {
	needle := strings.ToLower(search)
	out := make([]backend.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Paginate returns page number of products. perPage <= 0 means PerPage;
// number is clamped into [1, Total].
func Paginate(products []backend.Product, number, perPage int) Page {
	if perPage <= 0 {
		perPage = PerPage
	}
	total := (len(products) + perPage - 1) / perPage
	if number > total {
		number = total
	}
	if number < 1 {
		number = 1
	}

	start := (number - 1) * perPage
	end := min(start+perPage, len(products))
	items := []backend.Product{}
	if start < end {
		items = append(items, products[start:end]...)
	}
	return Page{Items: items, Number: number, Total: total}
}
