package checkout

import (
	"context"
	"fmt"

	"github.com/ngochuy-hya/uteshop-storefront/internal/cart"
	"github.com/ngochuy-hya/uteshop-storefront/internal/coupon"
	"github.com/ngochuy-hya/uteshop-storefront/internal/order"
	"github.com/ngochuy-hya/uteshop-storefront/internal/payment"
)

// Result is a placed order plus the PayOS payment object when that method
// was chosen.
type Result struct {
	Order   order.Order
	Payment *payment.Payment
}

// Service drives the checkout page flow: preview the summary, place the
// order, start the payment, reconcile the cart.
type Service struct {
	cart     *cart.Store
	coupons  *coupon.Applier
	orders   *order.Service
	payments *payment.Service
}

// NewService also installs the subtotal-keyed coupon effect: every applied
// cart change revalidates the coupon against the new subtotal, so the
// discount shown by Preview is never stale.
func NewService(cartStore *cart.Store, coupons *coupon.Applier, orders *order.Service, payments *payment.Service) *Service {
	cartStore.SetOnChange(func() {
		coupons.Revalidate(context.Background(), cartStore.Subtotal())
	})
	return &Service{cart: cartStore, coupons: coupons, orders: orders, payments: payments}
}

// Preview computes the summary the page shows from the cached cart and the
// applied coupon.
func (s *Service) Preview() Summary {
	return Summarize(s.cart.Subtotal(), s.coupons.Discount())
}

// PlaceOrder creates the order from the server cart and, for the payos
// method, creates the payment object. The cart store is refreshed afterwards
// since the server empties the cart on success.
func (s *Service) PlaceOrder(ctx context.Context, addressID int, method, note string) (Result, error) {
	in := order.CreateInput{
		AddressID:     addressID,
		PaymentMethod: method,
		Note:          note,
	}
	if c := s.coupons.Applied(); c != nil {
		in.CouponCode = c.Code
	}

	placed, err := s.orders.Create(ctx, in)
	if err != nil {
		return Result{}, err
	}

	res := Result{Order: placed}
	if method == payment.MethodPayOS {
		p, err := s.payments.CreatePayOS(ctx, placed.ID)
		if err != nil {
			return res, fmt.Errorf("order %d placed but payment creation failed: %w", placed.ID, err)
		}
		res.Payment = &p
	}

	s.coupons.Clear()
	_ = s.cart.Refresh(ctx)
	return res, nil
}
