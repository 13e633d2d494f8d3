package product

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ngochuy-hya/uteshop-storefront/internal/api"
)

// Service wraps the public /products endpoints.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// List returns the full catalog page the listing views filter client-side.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := s.client.GetPublic(ctx, "/products", &out); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id int) (Product, error) {
	var out Product
	if err := s.client.GetPublic(ctx, fmt.Sprintf("/products/%d", id), &out); err != nil {
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return out, nil
}

// ByCategory returns the catalog slice for one category.
func (s *Service) ByCategory(ctx context.Context, category string) ([]Product, error) {
	var out []Product
	path := "/products?category=" + url.QueryEscape(category)
	if err := s.client.GetPublic(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("products by category %q: %w", category, err)
	}
	return out, nil
}

// Search runs a server-side title search.
func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	var out []Product
	path := "/products?q=" + url.QueryEscape(query)
	if err := s.client.GetPublic(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("search products %q: %w", query, err)
	}
	return out, nil
}
