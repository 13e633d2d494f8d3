package coupon

import (
	"context"
	"fmt"

	"github.com/ngochuy-hya/uteshop-storefront/internal/api"
	"github.com/shopspring/decimal"
)

// Validator validates a code against a subtotal. The REST-backed Service
// implements it; the applier's tests use fakes.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (ValidateResult, error)
}

// Service wraps the /coupons endpoints.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

type validateRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Validate asks the server whether code applies to subtotal and what it is
// worth there.
func (s *Service) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (ValidateResult, error) {
	var res ValidateResult
	if err := s.client.PostJSON(ctx, "/coupons/validate", validateRequest{Code: code, Subtotal: subtotal}, &res); err != nil {
		return ValidateResult{}, fmt.Errorf("validate coupon %q: %w", code, err)
	}
	return res, nil
}
