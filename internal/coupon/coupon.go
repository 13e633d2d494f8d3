package coupon

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrExpired      = errors.New("coupon expired")
	ErrBelowMinimum = errors.New("subtotal below coupon minimum")
)

// Type is how a coupon's value is read.
type Type string

const (
	TypeFixed      Type = "fixed"
	TypePercentage Type = "percentage"
)

// Coupon is a discount code as the validate endpoint returns it.
type Coupon struct {
	Code          string          `json:"code"`
	Type          Type            `json:"type"`
	Value         decimal.Decimal `json:"value"`
	MinimumAmount decimal.Decimal `json:"minimum_amount"`
	// MaximumDiscount caps a percentage coupon, nil for uncapped.
	MaximumDiscount *decimal.Decimal `json:"maximum_discount,omitempty"`
	ExpiresAt       *time.Time       `json:"expires_at,omitempty"`
}

// DiscountFor computes the discount this coupon yields on subtotal, or why
// it does not apply. Amounts are whole VND, so the result is rounded to
// zero decimal places.
func (c Coupon) DiscountFor(subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return decimal.Zero, ErrExpired
	}
	if subtotal.LessThan(c.MinimumAmount) {
		return decimal.Zero, ErrBelowMinimum
	}

	var discount decimal.Decimal
	switch c.Type {
	case TypePercentage:
		discount = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(0)
		if c.MaximumDiscount != nil && discount.GreaterThan(*c.MaximumDiscount) {
			discount = *c.MaximumDiscount
		}
	default:
		discount = c.Value
	}

	// a discount never exceeds what is being discounted
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount, nil
}

// ValidateResult pairs the coupon with the discount computed for the
// subtotal it was validated against.
type ValidateResult struct {
	Coupon         Coupon          `json:"coupon"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}
