package checkout_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ngochuy-hya/uteshop-storefront/internal/address"
	"github.com/ngochuy-hya/uteshop-storefront/internal/api"
	"github.com/ngochuy-hya/uteshop-storefront/internal/apitest"
	"github.com/ngochuy-hya/uteshop-storefront/internal/auth"
	"github.com/ngochuy-hya/uteshop-storefront/internal/cart"
	"github.com/ngochuy-hya/uteshop-storefront/internal/checkout"
	"github.com/ngochuy-hya/uteshop-storefront/internal/coupon"
	"github.com/ngochuy-hya/uteshop-storefront/internal/order"
	"github.com/ngochuy-hya/uteshop-storefront/internal/payment"
)

// env bundles everything the checkout page touches, wired against the fake
// server the way cmd/storefront wires it against the real one.
type env struct {
	cart      *cart.Store
	coupons   *coupon.Applier
	checkout  *checkout.Service
	orders    *order.Service
	payments  *payment.Service
	addresses *address.Service
}

func setup(t *testing.T, opts ...apitest.Option) env {
	t.Helper()
	srv := apitest.New(opts...)
	baseURL, err := srv.Start()
	if err != nil {
		t.Fatalf("start fake api: %v", err)
	}
	t.Cleanup(srv.Close)

	client := api.NewClient(baseURL, 5*time.Second, api.NewSession(""))
	if _, err := auth.NewService(client).Login(context.Background(), apitest.SeedEmail, apitest.SeedPassword); err != nil {
		t.Fatalf("login: %v", err)
	}

	cartStore := cart.NewStore(cart.NewService(client))
	applier := coupon.NewApplier(coupon.NewService(client))
	orders := order.NewService(client)
	payments := payment.NewService(client)

	return env{
		cart:      cartStore,
		coupons:   applier,
		checkout:  checkout.NewService(cartStore, applier, orders, payments),
		orders:    orders,
		payments:  payments,
		addresses: address.NewService(client),
	}
}

func (e env) fillCart(t *testing.T, ctx context.Context) {
	t.Helper()
	// 1 x 100,000 + 3 x 50,000 = 250,000
	if err := e.cart.AddProduct(ctx, 101, 1); err != nil {
		t.Fatalf("add 101: %v", err)
	}
	if err := e.cart.AddProduct(ctx, 102, 3); err != nil {
		t.Fatalf("add 102: %v", err)
	}
}

func (e env) shipTo(t *testing.T, ctx context.Context) int {
	t.Helper()
	a, err := e.addresses.Create(ctx, address.Input{
		Name: "Lan Nguyen", Phone: "0901234567",
		Line: "1 Vo Van Ngan", Ward: "Linh Chieu", District: "Thu Duc", City: "TP HCM",
	})
	if err != nil {
		t.Fatalf("create address: %v", err)
	}
	return a.ID
}

func TestPlaceOrder_TotalsMatchPreview(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.fillCart(t, ctx)
	addrID := e.shipTo(t, ctx)

	if _, err := e.coupons.Apply(ctx, "SALE10", e.cart.Subtotal()); err != nil {
		t.Fatalf("apply coupon: %v", err)
	}

	preview := e.checkout.Preview()
	if !preview.Subtotal.Equal(decimal.NewFromInt(250_000)) {
		t.Fatalf("preview subtotal %s", preview.Subtotal)
	}
	if !preview.Discount.Equal(decimal.NewFromInt(25_000)) {
		t.Fatalf("preview discount %s", preview.Discount)
	}

	res, err := e.checkout.PlaceOrder(ctx, addrID, payment.MethodCOD, "leave at the door")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	// the server's totals must be exactly the previewed ones
	o := res.Order
	if !o.Subtotal.Equal(preview.Subtotal) || !o.Discount.Equal(preview.Discount) ||
		!o.Shipping.Equal(preview.Shipping) || !o.Tax.Equal(preview.Tax) || !o.Total.Equal(preview.Total) {
		t.Fatalf("order totals %+v do not match preview %+v", o, preview)
	}
	if o.Status != order.StatusPending || o.Code == "" {
		t.Fatalf("unexpected order %+v", o)
	}
	if res.Payment != nil {
		t.Fatal("cod order should not create a payment")
	}

	// placing the order empties the cart and drops the coupon
	if e.cart.Count() != 0 {
		t.Fatalf("cart still has %d rows", e.cart.Count())
	}
	if e.coupons.Applied() != nil {
		t.Fatal("coupon survived checkout")
	}

	// and the order shows up in history
	list, err := e.orders.List(ctx, 1)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(list) != 1 || list[0].ID != o.ID {
		t.Fatalf("unexpected history %+v", list)
	}
}

func TestCartMutationRevalidatesCoupon(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.fillCart(t, ctx)

	// SALE10: 10%, minimum subtotal 200,000
	if _, err := e.coupons.Apply(ctx, "SALE10", e.cart.Subtotal()); err != nil {
		t.Fatalf("apply coupon: %v", err)
	}
	if !e.coupons.Discount().Equal(decimal.NewFromInt(25_000)) {
		t.Fatalf("discount %s", e.coupons.Discount())
	}

	// growing the cart keeps the coupon and rescales the discount
	items := e.cart.Items()
	var line102 int
	for _, it := range items {
		if it.ProductID == 102 {
			line102 = it.ID
		}
	}
	if err := e.cart.UpdateQuantity(ctx, line102, 4); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := e.checkout.Preview(); !got.Discount.Equal(decimal.NewFromInt(30_000)) {
		t.Fatalf("discount %s after growth, want 30000", got.Discount)
	}

	// dropping the 100,000 line leaves 200,000: still at the minimum
	var line101 int
	for _, it := range e.cart.Items() {
		if it.ProductID == 101 {
			line101 = it.ID
		}
	}
	if err := e.cart.Remove(ctx, line101); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if e.coupons.Applied() == nil {
		t.Fatal("coupon dropped while still valid")
	}

	// shrinking below the minimum silently clears the coupon
	if err := e.cart.UpdateQuantity(ctx, line102, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if e.coupons.Applied() != nil {
		t.Fatal("coupon survived a subtotal below its minimum")
	}
	got := e.checkout.Preview()
	if !got.Discount.IsZero() {
		t.Fatalf("preview still shows discount %s", got.Discount)
	}
	if !got.Subtotal.Equal(decimal.NewFromInt(50_000)) {
		t.Fatalf("preview subtotal %s", got.Subtotal)
	}
}

func TestPlaceOrder_PayOSCreatesPayment(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.fillCart(t, ctx)
	addrID := e.shipTo(t, ctx)

	res, err := e.checkout.PlaceOrder(ctx, addrID, payment.MethodPayOS, "")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if res.Payment == nil {
		t.Fatal("payos order did not create a payment")
	}
	if res.Payment.OrderID != res.Order.ID {
		t.Fatalf("payment for order %d, want %d", res.Payment.OrderID, res.Order.ID)
	}
	// the default server hands back a raw payload to render locally
	if res.Payment.RenderMode() != payment.RenderInlineQR {
		t.Fatal("expected inline QR payload")
	}

	st, err := e.payments.Status(ctx, res.Order.ID)
	if err != nil {
		t.Fatalf("payment status: %v", err)
	}
	if st.Status != "pending" {
		t.Fatalf("payment status %q", st.Status)
	}

	if err := e.payments.Cancel(ctx, res.Order.ID); err != nil {
		t.Fatalf("cancel payment: %v", err)
	}
	st, err = e.payments.Status(ctx, res.Order.ID)
	if err != nil {
		t.Fatalf("payment status: %v", err)
	}
	if st.Status != "cancelled" {
		t.Fatalf("payment status %q after cancel", st.Status)
	}
}

func TestPlaceOrder_HostedQRMode(t *testing.T) {
	e := setup(t, apitest.WithHostedQR())
	ctx := context.Background()
	e.fillCart(t, ctx)
	addrID := e.shipTo(t, ctx)

	res, err := e.checkout.PlaceOrder(ctx, addrID, payment.MethodPayOS, "")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if res.Payment.RenderMode() != payment.RenderHostedImage {
		t.Fatalf("expected hosted image mode for %q", res.Payment.QRCode)
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	addrID := e.shipTo(t, ctx)

	if _, err := e.checkout.PlaceOrder(ctx, addrID, payment.MethodCOD, ""); !api.IsStatus(err, 422) {
		t.Fatalf("expected 422 for empty cart, got %v", err)
	}
}

func TestPlaceOrder_UnknownAddress(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.fillCart(t, ctx)

	_, err := e.checkout.PlaceOrder(ctx, 9999, payment.MethodCOD, "")
	apiErr, ok := api.AsError(err)
	if !ok || apiErr.Kind != api.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(apiErr.Details["address_id"]) == 0 {
		t.Fatalf("expected address_id detail, got %v", apiErr.Details)
	}
}

func TestOrderHistoryPagination(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	addrID := e.shipTo(t, ctx)

	// six orders fill one history page of five plus one overflow
	ids := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		if err := e.cart.AddProduct(ctx, 101, 1); err != nil {
			t.Fatalf("add: %v", err)
		}
		res, err := e.checkout.PlaceOrder(ctx, addrID, payment.MethodCOD, "")
		if err != nil {
			t.Fatalf("place order %d: %v", i, err)
		}
		ids = append(ids, res.Order.ID)
	}

	first, err := e.orders.List(ctx, 1)
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(first) != 5 {
		t.Fatalf("page 1 has %d orders, want 5", len(first))
	}
	// newest first: the sixth order leads, the first order falls off the page
	if first[0].ID != ids[5] || first[4].ID != ids[1] {
		t.Fatalf("page 1 ids %v, placed %v", first, ids)
	}

	second, err := e.orders.List(ctx, 2)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(second) != 1 || second[0].ID != ids[0] {
		t.Fatalf("page 2 %+v, want the oldest order %d", second, ids[0])
	}

	third, err := e.orders.List(ctx, 3)
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(third) != 0 {
		t.Fatalf("page 3 has %d orders", len(third))
	}
}

func TestCancelOrder(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.fillCart(t, ctx)
	addrID := e.shipTo(t, ctx)

	res, err := e.checkout.PlaceOrder(ctx, addrID, payment.MethodCOD, "")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if !res.Order.Cancellable() {
		t.Fatal("fresh order should be cancellable")
	}

	if err := e.orders.Cancel(ctx, res.Order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, err := e.orders.Get(ctx, res.Order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != order.StatusCancelled {
		t.Fatalf("status %q after cancel", got.Status)
	}
	// cancelling twice is rejected
	if err := e.orders.Cancel(ctx, res.Order.ID); !api.IsStatus(err, 422) {
		t.Fatalf("expected 422 on double cancel, got %v", err)
	}
}
