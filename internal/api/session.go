package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenPair is the access/refresh pair issued by the auth endpoints.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session holds the token pair for the current user and persists it to a
// JSON file, the local-storage analog of the browser client.
type Session struct {
	mu   sync.RWMutex
	path string
	pair TokenPair
}

// NewSession loads any persisted token pair from path. An unreadable or
// missing file just means a logged-out session.
func NewSession(path string) *Session {
	s := &Session{path: path}
	if b, err := os.ReadFile(path); err == nil {
		var pair TokenPair
		if json.Unmarshal(b, &pair) == nil {
			s.pair = pair
		}
	}
	return s
}

// Set stores and persists a new token pair.
func (s *Session) Set(pair TokenPair) error {
	s.mu.Lock()
	s.pair = pair
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	b, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear wipes the in-memory pair and removes the persisted file.
func (s *Session) Clear() {
	s.mu.Lock()
	s.pair = TokenPair{}
	s.mu.Unlock()
	if s.path != "" {
		_ = os.Remove(s.path)
	}
}

// Access returns the current access token, empty when logged out.
func (s *Session) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.AccessToken
}

// Refresh returns the current refresh token.
func (s *Session) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.RefreshToken
}

// LoggedIn reports whether a token pair is present.
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.AccessToken != ""
}

// AccessExpired reports whether the access token's exp claim has passed
// (with a small leeway). Tokens that do not parse as JWTs are treated as
// opaque and left for the server to judge.
func (s *Session) AccessExpired(now time.Time) bool {
	tok := s.Access()
	if tok == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return now.Add(30 * time.Second).After(time.Unix(int64(exp), 0))
}
