package apitest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// cartItemJSON must be called with the store lock held.
func (s *Server) cartItemJSON(row cartRow) fiber.Map {
	p, _ := s.store.product(row.ProductID)
	m := fiber.Map{
		"id":         row.ID,
		"product_id": row.ProductID,
		"title":      p.Title,
		"quantity":   row.Quantity,
		"unit_price": p.Price,
		"discount":   p.Discount,
		"stock":      p.Stock,
		"is_active":  p.IsActive,
		"img_src":    p.ImgSrc,
		"line_total": p.Price.Mul(decimal.NewFromInt(int64(row.Quantity))),
	}
	if p.OldPrice != nil {
		m["old_price"] = *p.OldPrice
	}
	if row.Color != "" {
		m["color"] = row.Color
	}
	if row.Size != "" {
		m["size"] = row.Size
	}
	return m
}

// cartJSON must be called with the store lock held.
func (s *Server) cartJSON(userID int) []fiber.Map {
	rows := s.store.carts[userID]
	out := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.cartItemJSON(row))
	}
	return out
}

func (s *Server) getCart(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return ok(c, fiber.StatusOK, s.cartJSON(userID))
}

func (s *Server) addToCart(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}

	payload := new(struct {
		ProductID int    `json:"product_id"`
		Quantity  int    `json:"quantity"`
		Color     string `json:"color"`
		Size      string `json:"size"`
	})
	if err := c.BodyParser(payload); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if payload.Quantity <= 0 {
		return fail(c, fiber.StatusUnprocessableEntity, "validation failed",
			map[string][]string{"quantity": {"quantity must be at least 1"}})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	p, found := s.store.product(payload.ProductID)
	if !found {
		return fail(c, fiber.StatusNotFound, "product not found", nil)
	}
	if !p.IsActive {
		return fail(c, fiber.StatusUnprocessableEntity, "validation failed",
			map[string][]string{"product_id": {"product is not available"}})
	}

	rows := s.store.carts[userID]
	for i := range rows {
		if rows[i].ProductID == payload.ProductID && rows[i].Color == payload.Color && rows[i].Size == payload.Size {
			if rows[i].Quantity+payload.Quantity > p.Stock {
				return fail(c, fiber.StatusUnprocessableEntity, "validation failed",
					map[string][]string{"quantity": {"quantity exceeds available stock"}})
			}
			rows[i].Quantity += payload.Quantity
			s.store.carts[userID] = rows
			return ok(c, fiber.StatusOK, s.cartItemJSON(rows[i]))
		}
	}

	if payload.Quantity > p.Stock {
		return fail(c, fiber.StatusUnprocessableEntity, "validation failed",
			map[string][]string{"quantity": {"quantity exceeds available stock"}})
	}

	s.store.nextCartItemID++
	row := cartRow{
		ID:        s.store.nextCartItemID,
		ProductID: payload.ProductID,
		Quantity:  payload.Quantity,
		Color:     payload.Color,
		Size:      payload.Size,
	}
	s.store.carts[userID] = append(rows, row)
	return ok(c, fiber.StatusCreated, s.cartItemJSON(row))
}

func (s *Server) updateCartItem(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}
	itemID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid id", nil)
	}

	payload := new(struct {
		Quantity int `json:"quantity"`
	})
	if err := c.BodyParser(payload); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if payload.Quantity < 1 {
		return fail(c, fiber.StatusUnprocessableEntity, "validation failed",
			map[string][]string{"quantity": {"quantity must be at least 1"}})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	rows := s.store.carts[userID]
	for i := range rows {
		if rows[i].ID != itemID {
			continue
		}
		p, _ := s.store.product(rows[i].ProductID)
		if payload.Quantity > p.Stock {
			return fail(c, fiber.StatusUnprocessableEntity, "validation failed",
				map[string][]string{"quantity": {"quantity exceeds available stock"}})
		}
		rows[i].Quantity = payload.Quantity
		s.store.carts[userID] = rows
		return ok(c, fiber.StatusOK, s.cartItemJSON(rows[i]))
	}
	return fail(c, fiber.StatusNotFound, "cart item not found", nil)
}

func (s *Server) removeCartItem(c *fiber.Ctx) error {
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

	rows := s.store.carts[userID]
	for i := range rows {
		if rows[i].ID == itemID {
			s.store.carts[userID] = append(rows[:i], rows[i+1:]...)
			return ok(c, fiber.StatusOK, fiber.Map{"deleted": itemID})
		}
	}
	return fail(c, fiber.StatusNotFound, "cart item not found", nil)
}

func (s *Server) clearCart(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}

	s.store.mu.Lock()
	s.store.carts[userID] = nil
	s.store.mu.Unlock()
	return ok(c, fiber.StatusOK, fiber.Map{"cleared": true})
}
