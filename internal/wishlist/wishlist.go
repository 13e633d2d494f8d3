package wishlist

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNotInWishlist = errors.New("product not in wishlist")
)

// Item is one saved product. ID is the wishlist item id the server assigned,
// distinct from the product's own id.
type Item struct {
	ID        int              `json:"id"`
	ProductID int              `json:"product_id"`
	Title     string           `json:"title"`
	Price     decimal.Decimal  `json:"price"`
	OldPrice  *decimal.Decimal `json:"old_price,omitempty"`
	Stock     int              `json:"stock"`
	IsActive  bool             `json:"is_active"`
	ImgSrc    string           `json:"img_src"`
	SaleLabel string           `json:"sale_label,omitempty"`
}
