package cart

import (
	"context"
	"fmt"

	"github.com/ngochuy-hya/uteshop-storefront/internal/api"
)

// API is the slice of the cart endpoints the store needs. The REST-backed
// Service implements it; tests swap in fakes.
type API interface {
	Fetch(ctx context.Context) ([]Item, error)
	Add(ctx context.Context, productID, qty int) error
	UpdateQuantity(ctx context.Context, itemID, qty int) error
	Remove(ctx context.Context, itemID int) error
}

// Service wraps the /cart endpoints.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Fetch returns the authoritative cart with line totals recomputed locally.
func (s *Service) Fetch(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := s.client.GetJSON(ctx, "/cart", &items); err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	for i := range items {
		items[i].recalcLineTotal()
	}
	return items, nil
}

// Add puts qty units of a product into the server cart.
func (s *Service) Add(ctx context.Context, productID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("add to cart: quantity must be positive, got %d", qty)
	}
	body := map[string]int{"product_id": productID, "quantity": qty}
	if err := s.client.PostJSON(ctx, "/cart", body, nil); err != nil {
		return fmt.Errorf("add product %d to cart: %w", productID, err)
	}
	return nil
}

// UpdateQuantity sets the absolute quantity of a cart item.
func (s *Service) UpdateQuantity(ctx context.Context, itemID, qty int) error {
	body := map[string]int{"quantity": qty}
	if err := s.client.PutJSON(ctx, fmt.Sprintf("/cart/%d", itemID), body, nil); err != nil {
		return fmt.Errorf("update cart item %d: %w", itemID, err)
	}
	return nil
}

// Remove deletes one cart item.
func (s *Service) Remove(ctx context.Context, itemID int) error {
	if err := s.client.DeleteJSON(ctx, fmt.Sprintf("/cart/%d", itemID), nil); err != nil {
		return fmt.Errorf("remove cart item %d: %w", itemID, err)
	}
	return nil
}

// Clear empties the server cart.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.client.DeleteJSON(ctx, "/cart", nil); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
