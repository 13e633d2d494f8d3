package apitest

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// wishlistItemJSON must be called with the store lock held.
func (s *Server) wishlistItemJSON(row wishlistRow) fiber.Map {
	p, _ := s.store.product(row.ProductID)
	m := fiber.Map{
		"id":         row.ID,
		"product_id": row.ProductID,
		"title":      p.Title,
		"price":      p.Price,
		"stock":      p.Stock,
		"is_active":  p.IsActive,
		"img_src":    p.ImgSrc,
	}
	if p.OldPrice != nil {
		m["old_price"] = *p.OldPrice
	}
	if p.Discount > 0 {
		m["sale_label"] = fmt.Sprintf("-%d%%", p.Discount)
	}
	return m
}

func (s *Server) getWishlist(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	rows := s.store.wishlists[userID]
	out := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.wishlistItemJSON(row))
	}
	return ok(c, fiber.StatusOK, out)
}

func (s *Server) addToWishlist(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}

	payload := new(struct {
		ProductID int `json:"product_id"`
	})
	if err := c.BodyParser(payload); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, found := s.store.product(payload.ProductID); !found {
		return fail(c, fiber.StatusNotFound, "product not found", nil)
	}
	for _, row := range s.store.wishlists[userID] {
		if row.ProductID == payload.ProductID {
			return fail(c, fiber.StatusConflict, "product already in wishlist", nil)
		}
	}

	s.store.nextWishlistItemID++
	row := wishlistRow{ID: s.store.nextWishlistItemID, ProductID: payload.ProductID}
	s.store.wishlists[userID] = append(s.store.wishlists[userID], row)
	return ok(c, fiber.StatusCreated, s.wishlistItemJSON(row))
}

func (s *Server) removeFromWishlist(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}
	itemID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid id", nil)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	rows := s.store.wishlists[userID]
	for i := range rows {
		if rows[i].ID == itemID {
			s.store.wishlists[userID] = append(rows[:i], rows[i+1:]...)
			return ok(c, fiber.StatusOK, fiber.Map{"deleted": itemID})
		}
	}
	return fail(c, fiber.StatusNotFound, "wishlist item not found", nil)
}
