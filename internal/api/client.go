package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RefreshFunc exchanges the stored refresh token for a new pair. It is
// installed by the auth service, which owns the endpoint.
type RefreshFunc func(ctx context.Context) error

// Client is the HTTP layer every resource service goes through. It attaches
// the bearer token, decodes envelopes, normalizes errors and coordinates the
// single-flight token refresh.
type Client struct {
	baseURL   string
	http      *http.Client
	session   *Session
	refresher refresher
	refreshFn RefreshFunc
}

// NewClient builds a client rooted at baseURL (including the /api prefix).
func NewClient(baseURL string, timeout time.Duration, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: session,
	}
}

// SetRefreshFunc installs the token-refresh call. Without one, a 401 is
// returned as-is.
func (c *Client) SetRefreshFunc(fn RefreshFunc) { c.refreshFn = fn }

// Session exposes the token store, mainly for logout and tests.
func (c *Client) Session() *Session { return c.session }

// GetJSON issues an authenticated GET and decodes the envelope data into out.
func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out, true)
}

// PostJSON issues an authenticated POST with a JSON body.
func (c *Client) PostJSON(ctx context.Context, path string, in, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, in, out, true)
}

// PutJSON issues an authenticated PUT with a JSON body.
func (c *Client) PutJSON(ctx context.Context, path string, in, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, in, out, true)
}

// DeleteJSON issues an authenticated DELETE.
func (c *Client) DeleteJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, true)
}

// PostPublic issues an unauthenticated POST. Login, register and the refresh
// call itself use it; it never retries on 401, which keeps the refresh path
// from recursing.
func (c *Client) PostPublic(ctx context.Context, path string, in, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, in, out, false)
}

// GetPublic issues an unauthenticated GET.
func (c *Client) GetPublic(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out, false)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}, authed bool) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = b
	}

	// an access token known to be expired is refreshed before the request
	// rather than burning a round trip on a guaranteed 401
	if authed && c.refreshFn != nil && c.session.Refresh() != "" && c.session.AccessExpired(time.Now()) {
		_ = c.refreshOnce(ctx)
	}

	status, body, err := c.send(ctx, method, path, payload, authed)
	if err != nil {
		return networkError(err)
	}

	if status == http.StatusUnauthorized && authed && c.refreshFn != nil && c.session.Refresh() != "" {
		if rerr := c.refreshOnce(ctx); rerr != nil {
			// refresh failed: clear the session and surface the original 401
			c.session.Clear()
			return decodeUnauthorized(body)
		}
		status, body, err = c.send(ctx, method, path, payload, authed)
		if err != nil {
			return networkError(err)
		}
	}

	return decodeEnvelope(status, body, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, authed bool) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if tok := c.session.Access(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, err
	}
	return res.StatusCode, body, nil
}

func (c *Client) refreshOnce(ctx context.Context) error {
	return c.refresher.do(ctx, c.refreshFn)
}

// decodeUnauthorized preserves the server's original 401 payload as the
// error the caller sees after a failed refresh.
func decodeUnauthorized(body []byte) error {
	err := decodeEnvelope(http.StatusUnauthorized, body, nil)
	if err == nil {
		return &Error{Kind: KindApplication, Status: http.StatusUnauthorized, Message: "unauthorized"}
	}
	return err
}
