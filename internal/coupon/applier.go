package coupon

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Applier holds the coupon applied to the current cart and keeps its
// discount consistent with the subtotal: whenever the subtotal changes it
// silently revalidates, and silently clears the coupon when validation now
// fails (for example the subtotal dropped below the minimum). The discount
// must never be stale relative to the subtotal.
type Applier struct {
	mu        sync.RWMutex
	validator Validator
	applied   *Coupon
	discount  decimal.Decimal
}

func NewApplier(v Validator) *Applier {
	return &Applier{validator: v, discount: decimal.Zero}
}

// Apply validates code against subtotal and records it on success.
func (a *Applier) Apply(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	res, err := a.validator.Validate(ctx, code, subtotal)
	if err != nil {
		return decimal.Zero, err
	}

	a.mu.Lock()
	c := res.Coupon
	a.applied = &c
	a.discount = res.DiscountAmount
	a.mu.Unlock()

	return res.DiscountAmount, nil
}

// Revalidate re-checks the applied coupon against a new subtotal. A coupon
// that no longer validates is cleared without surfacing the error; the UI
// simply stops showing a discount.
func (a *Applier) Revalidate(ctx context.Context, subtotal decimal.Decimal) {
	a.mu.RLock()
	applied := a.applied
	a.mu.RUnlock()
	if applied == nil {
		return
	}

	res, err := a.validator.Validate(ctx, applied.Code, subtotal)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.applied == nil || a.applied.Code != applied.Code {
		// cleared or swapped while the validation was in flight
		return
	}
	if err != nil {
		a.applied = nil
		a.discount = decimal.Zero
		return
	}
	c := res.Coupon
	a.applied = &c
	a.discount = res.DiscountAmount
}

// Applied returns the current coupon, nil when none is applied.
func (a *Applier) Applied() *Coupon {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.applied == nil {
		return nil
	}
	c := *a.applied
	return &c
}

// Discount returns the discount for the subtotal last validated.
func (a *Applier) Discount() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.discount
}

// Clear drops the applied coupon.
func (a *Applier) Clear() {
	a.mu.Lock()
	a.applied = nil
	a.discount = decimal.Zero
	a.mu.Unlock()
}
