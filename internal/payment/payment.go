package payment

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ngochuy-hya/uteshop-storefront/internal/api"
)

// Payment methods accepted at checkout.
const (
	MethodCOD   = "cod"
	MethodPayOS = "payos"
)

// Payment is the PayOS payment object. It exists only during a payment
// attempt; nothing here is persisted client-side.
type Payment struct {
	OrderID int `json:"order_id"`
	// QRCode is either a raw EMVCo payload to render locally or the URL of
	// a hosted QR image; see RenderModeFor.
	QRCode     string `json:"qr_code_url"`
	PaymentURL string `json:"payment_url"`
	Status     string `json:"status"`
}

// RenderMode tells the UI how to present the QR value.
type RenderMode int

const (
	// RenderInlineQR means QRCode is an EMVCo string to encode locally.
	RenderInlineQR RenderMode = iota
	// RenderHostedImage means QRCode is the URL of a ready-made image.
	RenderHostedImage
)

// RenderModeFor classifies a QR value: anything that parses as an http(s)
// URL with a host is a hosted image, everything else is a raw payload.
func RenderModeFor(qr string) RenderMode {
	u, err := url.Parse(qr)
	if err != nil {
		return RenderInlineQR
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return RenderHostedImage
	}
	return RenderInlineQR
}

// RenderMode classifies this payment's QR value.
func (p Payment) RenderMode() RenderMode {
	return RenderModeFor(p.QRCode)
}

// Service wraps the /payment/payos endpoints.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

type createRequest struct {
	OrderID int `json:"order_id"`
}

// CreatePayOS starts a PayOS payment attempt for an order.
func (s *Service) CreatePayOS(ctx context.Context, orderID int) (Payment, error) {
	var out Payment
	if err := s.client.PostJSON(ctx, "/payment/payos/create", createRequest{OrderID: orderID}, &out); err != nil {
		return Payment{}, fmt.Errorf("create payos payment for order %d: %w", orderID, err)
	}
	return out, nil
}

// Status polls the payment state while the QR modal is open.
func (s *Service) Status(ctx context.Context, orderID int) (Payment, error) {
	var out Payment
	if err := s.client.GetJSON(ctx, fmt.Sprintf("/payment/payos/%d", orderID), &out); err != nil {
		return Payment{}, fmt.Errorf("payos status for order %d: %w", orderID, err)
	}
	return out, nil
}

// Cancel abandons the payment attempt when the modal closes.
func (s *Service) Cancel(ctx context.Context, orderID int) error {
	if err := s.client.PostJSON(ctx, fmt.Sprintf("/payment/payos/%d/cancel", orderID), nil, nil); err != nil {
		return fmt.Errorf("cancel payos payment for order %d: %w", orderID, err)
	}
	return nil
}
