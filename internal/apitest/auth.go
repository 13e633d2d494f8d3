package apitest

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var errNoUserInCtx = errors.New("no user in context")

func (s *Server) issuePair(userID int) (fiber.Map, error) {
	now := time.Now()
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"type":    "access",
		"exp":     now.Add(s.accessTTL).Unix(),
	})
	signedAccess, err := access.SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"type":    "refresh",
		"exp":     now.Add(7 * 24 * time.Hour).Unix(),
	})
	signedRefresh, err := refresh.SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return fiber.Map{
		"access_token":  signedAccess,
		"refresh_token": signedRefresh,
	}, nil
}

func userJSON(u storeUser) fiber.Map {
	return fiber.Map{
		"id":         u.ID,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"phone":      u.Phone,
		"avatar_url": u.AvatarURL,
	}
}

func (s *Server) login(c *fiber.Ctx) error {
	payload := new(struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	})
	if err := c.BodyParser(payload); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	s.store.mu.RLock()
	var found *storeUser
	for i := range s.store.users {
		if s.store.users[i].Email == payload.Email {
			found = &s.store.users[i]
			break
		}
	}
	s.store.mu.RUnlock()

	if found == nil || bcrypt.CompareHashAndPassword(found.PasswordHash, []byte(payload.Password)) != nil {
		return fail(c, fiber.StatusUnauthorized, "invalid email or password", nil)
	}

	pair, err := s.issuePair(found.ID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error(), nil)
	}
	pair["user"] = userJSON(*found)
	return ok(c, fiber.StatusOK, pair)
}

func (s *Server) register(c *fiber.Ctx) error {
	payload := new(struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	})
	if err := c.BodyParser(payload); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	errs := map[string][]string{}
	if payload.Email == "" {
		errs["email"] = append(errs["email"], "email is required")
	}
	if len(payload.Password) < 8 {
		errs["password"] = append(errs["password"], "password must be at least 8 characters")
	}
	if len(errs) > 0 {
		return fail(c, fiber.StatusUnprocessableEntity, "validation failed", errs)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.MinCost)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error(), nil)
	}

	s.store.mu.Lock()
	for _, u := range s.store.users {
		if u.Email == payload.Email {
			s.store.mu.Unlock()
			return fail(c, fiber.StatusConflict, "email already exists", nil)
		}
	}
	created := storeUser{
		ID:           len(s.store.users) + 1,
		Email:        payload.Email,
		PasswordHash: hash,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Phone:        payload.Phone,
	}
	s.store.users = append(s.store.users, created)
	s.store.mu.Unlock()

	pair, err := s.issuePair(created.ID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error(), nil)
	}
	pair["user"] = userJSON(created)
	return ok(c, fiber.StatusCreated, pair)
}

func (s *Server) refreshToken(c *fiber.Ctx) error {
	s.refreshCalls.Add(1)
	if s.refreshDelay > 0 {
		time.Sleep(s.refreshDelay)
	}

	payload := new(struct {
		RefreshToken string `json:"refresh_token"`
	})
	if err := c.BodyParser(payload); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(payload.RefreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !tok.Valid || claims["type"] != "refresh" {
		return fail(c, fiber.StatusUnauthorized, "invalid refresh token", nil)
	}
	userID, ok2 := claims["user_id"].(float64)
	if !ok2 {
		return fail(c, fiber.StatusUnauthorized, "invalid refresh token", nil)
	}

	pair, err := s.issuePair(int(userID))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error(), nil)
	}
	return ok(c, fiber.StatusOK, pair)
}

func (s *Server) logout(c *fiber.Ctx) error {
	return ok(c, fiber.StatusOK, fiber.Map{"logged_out": true})
}

// userIDFromCtx reads the user_id claim the JWT middleware stored.
func userIDFromCtx(c *fiber.Ctx) (int, error) {
	tok, ok2 := c.Locals("user").(*jwt.Token)
	if !ok2 {
		return 0, errNoUserInCtx
	}
	claims, ok2 := tok.Claims.(jwt.MapClaims)
	if !ok2 {
		return 0, errNoUserInCtx
	}
	id, ok2 := claims["user_id"].(float64)
	if !ok2 {
		return 0, errNoUserInCtx
	}
	return int(id), nil
}

func (s *Server) me(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	for _, u := range s.store.users {
		if u.ID == userID {
			return ok(c, fiber.StatusOK, userJSON(u))
		}
	}
	return fail(c, fiber.StatusNotFound, "user not found", nil)
}

func (s *Server) updateMe(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}

	payload := new(struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
		AvatarURL string `json:"avatar_url"`
	})
	if err := c.BodyParser(payload); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for i := range s.store.users {
		if s.store.users[i].ID != userID {
			continue
		}
		if payload.FirstName != "" {
			s.store.users[i].FirstName = payload.FirstName
		}
		if payload.LastName != "" {
			s.store.users[i].LastName = payload.LastName
		}
		if payload.Phone != "" {
			s.store.users[i].Phone = payload.Phone
		}
		if payload.AvatarURL != "" {
			s.store.users[i].AvatarURL = payload.AvatarURL
		}
		return ok(c, fiber.StatusOK, userJSON(s.store.users[i]))
	}
	return fail(c, fiber.StatusNotFound, "user not found", nil)
}
