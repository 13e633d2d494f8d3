package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the server-owned order state; the client only renders it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipping  Status = "shipping"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Item is one order line, a read-only projection.
type Item struct {
	ProductID int             `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	ImgSrc    string          `json:"img_src"`
}

// Order is the server's order record as the history pages render it.
type Order struct {
	ID            int             `json:"id"`
	Code          string          `json:"code"`
	Status        Status          `json:"status"`
	Items         []Item          `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Shipping      decimal.Decimal `json:"shipping"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Cancellable reports whether the order can still be cancelled by the user.
func (o Order) Cancellable() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}
