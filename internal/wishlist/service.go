package wishlist

import (
	"context"
	"fmt"

	"github.com/ngochuy-hya/uteshop-storefront/internal/api"
)

// API is the slice of the wishlist endpoints the store needs.
type API interface {
	Fetch(ctx context.Context) ([]Item, error)
	Add(ctx context.Context, productID int) (Item, error)
	Delete(ctx context.Context, itemID int) error
}

// Service wraps the /wishlist endpoints.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Fetch returns the authoritative wishlist.
func (s *Service) Fetch(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := s.client.GetJSON(ctx, "/wishlist", &items); err != nil {
		return nil, fmt.Errorf("fetch wishlist: %w", err)
	}
	return items, nil
}

// Add saves a product and returns the created item, whose ID the store
// needs for later deletes.
func (s *Service) Add(ctx context.Context, productID int) (Item, error) {
	var item Item
	body := map[string]int{"product_id": productID}
	if err := s.client.PostJSON(ctx, "/wishlist", body, &item); err != nil {
		return Item{}, fmt.Errorf("add product %d to wishlist: %w", productID, err)
	}
	return item, nil
}

// Delete removes one wishlist item by its item id.
func (s *Service) Delete(ctx context.Context, itemID int) error {
	if err := s.client.DeleteJSON(ctx, fmt.Sprintf("/wishlist/%d", itemID), nil); err != nil {
		return fmt.Errorf("delete wishlist item %d: %w", itemID, err)
	}
	return nil
}
