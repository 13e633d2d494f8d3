package address

import (
	"context"
	"fmt"

	"github.com/ngochuy-hya/uteshop-storefront/internal/api"
)

// Service wraps the /addresses endpoints.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// List returns the user's address book.
func (s *Service) List(ctx context.Context) ([]Address, error) {
	var out []Address
	if err := s.client.GetJSON(ctx, "/addresses", &out); err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return out, nil
}

// Create adds an address and returns it with its server id.
func (s *Service) Create(ctx context.Context, in Input) (Address, error) {
	var out Address
	if err := s.client.PostJSON(ctx, "/addresses", in, &out); err != nil {
		return Address{}, fmt.Errorf("create address: %w", err)
	}
	return out, nil
}

// Update rewrites an address.
func (s *Service) Update(ctx context.Context, id int, in Input) (Address, error) {
	var out Address
	if err := s.client.PutJSON(ctx, fmt.Sprintf("/addresses/%d", id), in, &out); err != nil {
		return Address{}, fmt.Errorf("update address %d: %w", id, err)
	}
	return out, nil
}

// Delete removes an address.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.client.DeleteJSON(ctx, fmt.Sprintf("/addresses/%d", id), nil); err != nil {
		return fmt.Errorf("delete address %d: %w", id, err)
	}
	return nil
}

// SetDefault marks one address as the shipping default.
func (s *Service) SetDefault(ctx context.Context, id int) error {
	if err := s.client.PostJSON(ctx, fmt.Sprintf("/addresses/%d/default", id), nil, nil); err != nil {
		return fmt.Errorf("set default address %d: %w", id, err)
	}
	return nil
}
