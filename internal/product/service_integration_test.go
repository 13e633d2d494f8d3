package product_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ngochuy-hya/uteshop-storefront/internal/api"
	"github.com/ngochuy-hya/uteshop-storefront/internal/apitest"
	"github.com/ngochuy-hya/uteshop-storefront/internal/product"
)

func setup(t *testing.T) *product.Service {
	t.Helper()
	srv := apitest.New()
	baseURL, err := srv.Start()
	if err != nil {
		t.Fatalf("start fake api: %v", err)
	}
	t.Cleanup(srv.Close)

	// catalog endpoints need no login
	return product.NewService(api.NewClient(baseURL, 5*time.Second, api.NewSession("")))
}

func TestList(t *testing.T) {
	svc := setup(t)

	products, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 5 {
		t.Fatalf("got %d products", len(products))
	}
}

func TestGet(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	p, err := svc.Get(ctx, 102)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Title != "Quan jean slim" || !p.Price.Equal(decimal.NewFromInt(50_000)) {
		t.Fatalf("unexpected product %+v", p)
	}
	if p.OldPrice == nil || !p.OldPrice.Equal(decimal.NewFromInt(80_000)) {
		t.Fatalf("old price missing on sale product: %+v", p)
	}

	if _, err := svc.Get(ctx, 9999); !api.IsStatus(err, 404) {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestByCategoryAndSearch(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	aos, err := svc.ByCategory(ctx, "ao")
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if len(aos) != 2 {
		t.Fatalf("category ao returned %d products", len(aos))
	}

	hits, err := svc.Search(ctx, "sneaker")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != 103 {
		t.Fatalf("unexpected hits %+v", hits)
	}

	// queries with reserved characters survive the round trip
	none, err := svc.Search(ctx, "ao & quan?")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("unexpected hits %+v", none)
	}
}
