package product

import (
	"github.com/shopspring/decimal"
)

// Product is the catalog view model rendered by listing pages and cards.
type Product struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Brand    string          `json:"brand"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	// OldPrice is the pre-sale price, nil when the product is not on sale.
	OldPrice *decimal.Decimal `json:"old_price,omitempty"`
	// Discount is the sale percentage shown on the badge.
	Discount int      `json:"discount"`
	Stock    int      `json:"stock"`
	IsActive bool     `json:"is_active"`
	Colors   []string `json:"colors,omitempty"`
	Sizes    []string `json:"sizes,omitempty"`
	ImgSrc   string   `json:"img_src"`
}

// InStock reports whether the product can currently be bought.
func (p Product) InStock() bool {
	return p.IsActive && p.Stock > 0
}
