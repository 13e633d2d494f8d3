// Package checkout holds the order-summary math the checkout page shows
// before an order is placed, and the flow that places it. The server
// recomputes everything; these numbers are the client-side preview and the
// two must agree.
package checkout

import (
	"github.com/shopspring/decimal"
)

var (
	// freeShippingThreshold is the subtotal at which shipping becomes free.
	freeShippingThreshold = decimal.NewFromInt(1_000_000)
	// flatShippingFee applies below the threshold.
	flatShippingFee = decimal.NewFromInt(50_000)
	// taxRate is VAT, applied to the undiscounted subtotal.
	taxRate = decimal.NewFromFloat(0.1)
)

// Summary is the price breakdown of a pending order.
type Summary struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Summarize computes the breakdown for a subtotal with an already-validated
// coupon discount. Shipping is free at and above 1,000,000 VND, otherwise a
// flat 50,000; tax is 10% of the subtotal rounded to whole VND.
func Summarize(subtotal, discount decimal.Decimal) Summary {
	shipping := flatShippingFee
	if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	if subtotal.IsZero() {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(taxRate).Round(0)

	return Summary{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Sub(discount).Add(shipping).Add(tax),
	}
}
