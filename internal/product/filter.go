package product

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Availability narrows a listing to in-stock or out-of-stock products.
type Availability int

const (
	AvailabilityAny Availability = iota
	AvailabilityInStock
	AvailabilityOutOfStock
)

// Filter holds the independent filter dimensions of a listing page. A zero
// dimension matches everything; set dimensions combine with AND.
type Filter struct {
	Brands       []string
	Colors       []string
	Sizes        []string
	Availability Availability
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
}

// Sort is one of the five listing sort modes.
type Sort int

const (
	SortDefault Sort = iota
	SortTitleAsc
	SortTitleDesc
	SortPriceAsc
	SortPriceDesc
)

// Match reports whether p passes every set dimension of f.
func (f Filter) Match(p Product) bool {
	if len(f.Brands) > 0 && !containsFold(f.Brands, p.Brand) {
		return false
	}
	if len(f.Colors) > 0 && !intersectsFold(f.Colors, p.Colors) {
		return false
	}
	if len(f.Sizes) > 0 && !intersectsFold(f.Sizes, p.Sizes) {
		return false
	}
	switch f.Availability {
	case AvailabilityInStock:
		if !p.InStock() {
			return false
		}
	case AvailabilityOutOfStock:
		if p.InStock() {
			return false
		}
	}
	if f.PriceMin != nil && p.Price.LessThan(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && p.Price.GreaterThan(*f.PriceMax) {
		return false
	}
	return true
}

// Apply filters then sorts products without touching the input slice.
func Apply(products []Product, f Filter, mode Sort) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	sortProducts(out, mode)
	return out
}

func sortProducts(products []Product, mode Sort) {
	switch mode {
	case SortTitleAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Title) < strings.ToLower(products[j].Title)
		})
	case SortTitleDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Title) > strings.ToLower(products[j].Title)
		})
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.GreaterThan(products[j].Price)
		})
	}
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func intersectsFold(wanted, have []string) bool {
	for _, w := range wanted {
		if containsFold(have, w) {
			return true
		}
	}
	return false
}
