package auth

import (
	"context"
	"errors"

	"github.com/ngochuy-hya/uteshop-storefront/internal/api"
)

var ErrNotLoggedIn = errors.New("not logged in")

// User is the account as the client renders it.
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// ProfileUpdate carries partial profile edits; empty fields are left alone
// by the server.
type ProfileUpdate struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Service wraps the /auth and /users endpoints and owns the session.
type Service struct {
	client  *api.Client
	session *api.Session
}

// NewService builds the auth service and installs its refresh call on the
// client, so every other service gets the 401-refresh-replay behaviour for
// free.
func NewService(client *api.Client) *Service {
	s := &Service{client: client, session: client.Session()}
	client.SetRefreshFunc(s.refreshTokens)
	return s
}

// Login exchanges credentials for a token pair and stores it.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	var res tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := s.client.PostPublic(ctx, "/auth/login", body, &res); err != nil {
		return User{}, err
	}
	if err := s.session.Set(api.TokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}); err != nil {
		return User{}, err
	}
	return res.User, nil
}

// Register creates an account and logs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	var res tokenResponse
	if err := s.client.PostPublic(ctx, "/auth/register", in, &res); err != nil {
		return User{}, err
	}
	if err := s.session.Set(api.TokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}); err != nil {
		return User{}, err
	}
	return res.User, nil
}

// Logout clears the session. The server call is best effort; a dead token
// is no reason to keep the user logged in locally.
func (s *Service) Logout(ctx context.Context) {
	_ = s.client.PostJSON(ctx, "/auth/logout", nil, nil)
	s.session.Clear()
}

// Profile returns the current user.
func (s *Service) Profile(ctx context.Context) (User, error) {
	if !s.session.LoggedIn() {
		return User{}, ErrNotLoggedIn
	}
	var u User
	if err := s.client.GetJSON(ctx, "/users/me", &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// UpdateProfile applies partial profile edits and returns the updated user.
func (s *Service) UpdateProfile(ctx context.Context, in ProfileUpdate) (User, error) {
	if !s.session.LoggedIn() {
		return User{}, ErrNotLoggedIn
	}
	var u User
	if err := s.client.PutJSON(ctx, "/users/me", in, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// refreshTokens trades the stored refresh token for a new pair. It runs
// under the client's single-flight guard.
func (s *Service) refreshTokens(ctx context.Context) error {
	refresh := s.session.Refresh()
	if refresh == "" {
		return ErrNotLoggedIn
	}
	var res tokenResponse
	body := map[string]string{"refresh_token": refresh}
	if err := s.client.PostPublic(ctx, "/auth/refresh-token", body, &res); err != nil {
		return err
	}
	return s.session.Set(api.TokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken})
}
