package order

import (
	"context"
	"fmt"

	"github.com/ngochuy-hya/uteshop-storefront/internal/api"
)

// CreateInput is the checkout payload. The server builds the order from the
// user's current cart; the client does not send line items.
type CreateInput struct {
	AddressID     int    `json:"address_id"`
	CouponCode    string `json:"coupon_code,omitempty"`
	PaymentMethod string `json:"payment_method"`
	Note          string `json:"note,omitempty"`
}

// Service wraps the /orders endpoints.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// List returns one page of the user's order history, newest first.
func (s *Service) List(ctx context.Context, page int) ([]Order, error) {
	if page < 1 {
		page = 1
	}
	var out []Order
	if err := s.client.GetJSON(ctx, fmt.Sprintf("/orders?page=%d", page), &out); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, id int) (Order, error) {
	var out Order
	if err := s.client.GetJSON(ctx, fmt.Sprintf("/orders/%d", id), &out); err != nil {
		return Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return out, nil
}

// Create places an order from the server-side cart and returns the record
// with the server's authoritative totals.
func (s *Service) Create(ctx context.Context, in CreateInput) (Order, error) {
	var out Order
	if err := s.client.PostJSON(ctx, "/orders", in, &out); err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return out, nil
}

// Cancel asks the server to cancel a still-cancellable order.
func (s *Service) Cancel(ctx context.Context, id int) error {
	if err := s.client.PostJSON(ctx, fmt.Sprintf("/orders/%d/cancel", id), nil, nil); err != nil {
		return fmt.Errorf("cancel order %d: %w", id, err)
	}
	return nil
}
