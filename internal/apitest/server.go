// Package apitest runs an in-process storefront API with seeded data. It is
// the far side of every integration-style test in this repo and backs the
// cmd/fakeapi binary for manual poking. Responses always use the
// {success, message, data} envelope the client's strict decoder expects.
package apitest

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
)

// Server is the fake storefront API.
type Server struct {
	app          *fiber.App
	store        *memoryStore
	secret       []byte
	accessTTL    time.Duration
	hostedQR     bool
	refreshDelay time.Duration

	refreshCalls atomic.Int64

	ln      net.Listener
	baseURL string
}

// Option tweaks server behaviour for a test.
type Option func(*Server)

// WithAccessTTL controls how long issued access tokens live. A negative TTL
// issues already-expired tokens, which is how the refresh path gets
// exercised.
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

// WithHostedQR makes PayOS payments return a hosted image URL instead of a
// raw EMVCo payload.
func WithHostedQR() Option {
	return func(s *Server) { s.hostedQR = true }
}

// WithRefreshDelay holds the refresh endpoint open for d, so tests can pile
// concurrent requests up behind one in-flight refresh.
func WithRefreshDelay(d time.Duration) Option {
	return func(s *Server) { s.refreshDelay = d }
}

// New builds the server and its routes; call Start to listen.
func New(opts ...Option) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
		store:     newMemoryStore(),
		secret:    []byte("apitest-secret"),
		accessTTL: 15 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	app := s.app

	// public routes go in before the JWT middleware; fiber matches them
	// first so they skip the auth check
	app.Post("/api/auth/login", s.login)
	app.Post("/api/auth/register", s.register)
	app.Post("/api/auth/refresh-token", s.refreshToken)
	app.Get("/api/products", s.listProducts)
	app.Get("/api/products/:id<[0-9]+>", s.getProduct)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: s.secret,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fail(c, fiber.StatusUnauthorized, "invalid or expired token", nil)
		},
	}))

	app.Post("/api/auth/logout", s.logout)
	app.Get("/api/users/me", s.me)
	app.Put("/api/users/me", s.updateMe)

	app.Get("/api/cart", s.getCart)
	app.Post("/api/cart", s.addToCart)
	app.Put("/api/cart/:id<[0-9]+>", s.updateCartItem)
	app.Delete("/api/cart/:id<[0-9]+>", s.removeCartItem)
	app.Delete("/api/cart", s.clearCart)

	app.Get("/api/wishlist", s.getWishlist)
	app.Post("/api/wishlist", s.addToWishlist)
	app.Delete("/api/wishlist/:id<[0-9]+>", s.removeFromWishlist)

	app.Post("/api/coupons/validate", s.validateCoupon)

	app.Get("/api/orders", s.listOrders)
	app.Get("/api/orders/:id<[0-9]+>", s.getOrder)
	app.Post("/api/orders", s.createOrder)
	app.Post("/api/orders/:id<[0-9]+>/cancel", s.cancelOrder)

	app.Get("/api/addresses", s.listAddresses)
	app.Post("/api/addresses", s.createAddress)
	app.Put("/api/addresses/:id<[0-9]+>", s.updateAddress)
	app.Delete("/api/addresses/:id<[0-9]+>", s.deleteAddress)
	app.Post("/api/addresses/:id<[0-9]+>/default", s.setDefaultAddress)

	app.Post("/api/payment/payos/create", s.createPayment)
	app.Get("/api/payment/payos/:id<[0-9]+>", s.paymentStatus)
	app.Post("/api/payment/payos/:id<[0-9]+>/cancel", s.cancelPayment)
}

// Start listens on an ephemeral loopback port and returns the API base URL
// (including the /api prefix).
func (s *Server) Start() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	s.ln = ln
	s.baseURL = "http://" + ln.Addr().String() + "/api"

	go func() {
		_ = s.app.Listener(ln)
	}()
	return s.baseURL, nil
}

// StartOn listens on a fixed address, for cmd/fakeapi. Blocks.
func (s *Server) StartOn(addr string) error {
	return s.app.Listen(addr)
}

// BaseURL is valid after Start.
func (s *Server) BaseURL() string { return s.baseURL }

// Close shuts the listener down.
func (s *Server) Close() {
	_ = s.app.Shutdown()
}

// RefreshCalls reports how many times the refresh endpoint ran, which is
// how tests assert the single-flight guard.
func (s *Server) RefreshCalls() int64 {
	return s.refreshCalls.Load()
}

// ok writes a success envelope.
func ok(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": "",
		"data":    data,
	})
}

// fail writes a failure envelope; errs is the field->messages map for
// validation failures.
func fail(c *fiber.Ctx, status int, message string, errs map[string][]string) error {
	body := fiber.Map{
		"success": false,
		"message": message,
	}
	if len(errs) > 0 {
		body["errors"] = errs
	}
	return c.Status(status).JSON(body)
}
