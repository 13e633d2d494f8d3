package apitest

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func productJSON(p storeProduct) fiber.Map {
	m := fiber.Map{
		"id":        p.ID,
		"title":     p.Title,
		"brand":     p.Brand,
		"category":  p.Category,
		"price":     p.Price,
		"discount":  p.Discount,
		"stock":     p.Stock,
		"is_active": p.IsActive,
		"img_src":   p.ImgSrc,
	}
	if p.OldPrice != nil {
		m["old_price"] = *p.OldPrice
	}
	if len(p.Colors) > 0 {
		m["colors"] = p.Colors
	}
	if len(p.Sizes) > 0 {
		m["sizes"] = p.Sizes
	}
	return m
}

func (s *Server) listProducts(c *fiber.Ctx) error {
	category := c.Query("category")
	query := strings.ToLower(c.Query("q"))

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	out := make([]fiber.Map, 0, len(s.store.products))
	for _, p := range s.store.products {
		if category != "" && p.Category != category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Title), query) {
			continue
		}
		out = append(out, productJSON(p))
	}
	return ok(c, fiber.StatusOK, out)
}

func (s *Server) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid id", nil)
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	p, found := s.store.product(id)
	if !found {
		return fail(c, fiber.StatusNotFound, "product not found", nil)
	}
	return ok(c, fiber.StatusOK, productJSON(p))
}
