package cart_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ngochuy-hya/uteshop-storefront/internal/api"
	"github.com/ngochuy-hya/uteshop-storefront/internal/apitest"
	"github.com/ngochuy-hya/uteshop-storefront/internal/auth"
	"github.com/ngochuy-hya/uteshop-storefront/internal/cart"
)

func setup(t *testing.T) *cart.Service {
	t.Helper()
	srv := apitest.New()
	baseURL, err := srv.Start()
	if err != nil {
		t.Fatalf("start fake api: %v", err)
	}
	t.Cleanup(srv.Close)

	client := api.NewClient(baseURL, 5*time.Second, api.NewSession(""))
	if _, err := auth.NewService(client).Login(context.Background(), apitest.SeedEmail, apitest.SeedPassword); err != nil {
		t.Fatalf("login: %v", err)
	}
	return cart.NewService(client)
}

func TestService_AddAndFetch(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	if err := svc.Add(ctx, 101, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	items, err := svc.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != 101 || items[0].Quantity != 2 {
		t.Fatalf("unexpected cart %+v", items)
	}
	if want := items[0].UnitPrice.Mul(decimal.NewFromInt(2)); !items[0].LineTotal.Equal(want) {
		t.Fatalf("line total %s, want %s", items[0].LineTotal, want)
	}

	// adding the same product again merges into one row
	if err := svc.Add(ctx, 101, 1); err != nil {
		t.Fatalf("second add: %v", err)
	}
	items, err = svc.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("expected merged row with quantity 3, got %+v", items)
	}
}

func TestService_AddExceedsStock(t *testing.T) {
	svc := setup(t)

	// product 103 has 4 units in stock
	err := svc.Add(context.Background(), 103, 10)
	if err == nil {
		t.Fatal("expected stock validation error")
	}
	apiErr, ok := api.AsError(err)
	if !ok {
		t.Fatalf("expected *api.Error, got %v", err)
	}
	if apiErr.Kind != api.KindValidation {
		t.Fatalf("expected validation kind, got %v", apiErr.Kind)
	}
	if msgs := apiErr.Details["quantity"]; len(msgs) == 0 || !strings.Contains(msgs[0], "stock") {
		t.Fatalf("expected quantity detail, got %v", apiErr.Details)
	}
}

func TestService_AddInactiveProduct(t *testing.T) {
	svc := setup(t)

	// product 105 is delisted
	if err := svc.Add(context.Background(), 105, 1); !api.IsStatus(err, 422) {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestService_AddUnknownProduct(t *testing.T) {
	svc := setup(t)

	if err := svc.Add(context.Background(), 9999, 1); !api.IsStatus(err, 404) {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestService_UpdateRemoveClear(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	if err := svc.Add(ctx, 101, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	items, err := svc.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if err := svc.UpdateQuantity(ctx, items[0].ID, 5); err != nil {
		t.Fatalf("update: %v", err)
	}
	// quantities above stock are the server's call to reject
	if err := svc.UpdateQuantity(ctx, items[0].ID, 9999); !api.IsStatus(err, 422) {
		t.Fatalf("expected 422, got %v", err)
	}

	if err := svc.Remove(ctx, items[0].ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Add(ctx, 102, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	items, err = svc.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("cart not empty after clear: %+v", items)
	}
}
