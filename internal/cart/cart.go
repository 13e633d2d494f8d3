package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound = errors.New("cart item not found")
)

// Item is one cart row as the client renders it. The server owns the row;
// the store holds a cached, locally mutable copy.
type Item struct {
	// ID is the cart item id, distinct from the product id.
	ID        int             `json:"id"`
	ProductID int             `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	// OldPrice is the pre-sale unit price, nil when not on sale.
	OldPrice *decimal.Decimal `json:"old_price,omitempty"`
	Discount int              `json:"discount"`
	Stock    int              `json:"stock"`
	IsActive bool             `json:"is_active"`
	Color    string           `json:"color,omitempty"`
	Size     string           `json:"size,omitempty"`
	ImgSrc   string           `json:"img_src"`
	// LineTotal is unit price times quantity; recomputed after every local
	// mutation so the invariant holds regardless of what the wire carried.
	LineTotal decimal.Decimal `json:"line_total"`
}

func (it *Item) recalcLineTotal() {
	it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Subtotal sums line totals over items.
func Subtotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].LineTotal)
	}
	return total
}
