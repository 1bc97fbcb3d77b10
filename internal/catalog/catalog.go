// Package catalog holds the immutable product list for the session and
// exposes filtering and sorting as a read model.
package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is one catalog entry. Cost, price and the precomputed margin are
// fixed for the session; quote lines copy them at add time.
type Product struct {
	ID       string          `json:"id"`
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Cost     decimal.Decimal `json:"cost"`
	Price    decimal.Decimal `json:"price"`
	Margin   decimal.Decimal `json:"margin"`
}

// Sort orders accepted by Query.
const (
	SortByName       = "name"
	SortByPriceAsc   = "price_asc"
	SortByPriceDesc  = "price_desc"
	SortByCostAsc    = "cost_asc"
	SortByCostDesc   = "cost_desc"
	SortByMarginDesc = "margin_desc"
)

// Query filters and orders the catalog. Zero values mean "no filtering"
// and name order.
type Query struct {
	SearchTerm string
	Category   string
	SortBy     string
}

// Store is the immutable session catalog.
type Store struct {
	products   []Product
	byID       map[string]Product
	byCode     map[string]Product
	categories []string
}

// NewStore indexes the given products. Input order is preserved as the
// unsorted listing order.
func NewStore(products []Product) *Store {
	s := &Store{
		products: products,
		byID:     make(map[string]Product, len(products)),
		byCode:   make(map[string]Product, len(products)),
	}
	seen := map[string]bool{}
	for _, p := range products {
		s.byID[p.ID] = p
		if _, ok := s.byCode[p.Code]; !ok {
			s.byCode[p.Code] = p
		}
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			s.categories = append(s.categories, p.Category)
		}
	}
	sort.Strings(s.categories)
	return s
}

// Len reports the number of products.
func (s *Store) Len() int {
	return len(s.products)
}

// ByID looks up a product by its session identifier.
func (s *Store) ByID(id string) (Product, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// ByCode looks up a product by its external code. Duplicate codes resolve
// to the first occurrence.
func (s *Store) ByCode(code string) (Product, bool) {
	p, ok := s.byCode[code]
	return p, ok
}

// Categories returns the distinct non-empty categories, sorted.
func (s *Store) Categories() []string {
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// Query returns the products matching the filter, in the requested order.
// The search term matches name or code, case-insensitively.
func (s *Store) Query(q Query) []Product {
	term := strings.ToLower(strings.TrimSpace(q.SearchTerm))

	var out []Product
	for _, p := range s.products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Code), term) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, q.SortBy)
	return out
}

func sortProducts(products []Product, sortBy string) {
	switch sortBy {
	case SortByPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case SortByPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[j].Price.LessThan(products[i].Price)
		})
	case SortByCostAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Cost.LessThan(products[j].Cost)
		})
	case SortByCostDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[j].Cost.LessThan(products[i].Cost)
		})
	case SortByMarginDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[j].Margin.LessThan(products[i].Margin)
		})
	default:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Name < products[j].Name
		})
	}
}
