package apitest

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ngochuy-hya/uteshop-storefront/internal/checkout"
	"github.com/ngochuy-hya/uteshop-storefront/internal/coupon"
)

func (s *Server) validateCoupon(c *fiber.Ctx) error {
	payload := new(struct {
		Code     string          `json:"code"`
		Subtotal decimal.Decimal `json:"subtotal"`
	})
	if err := c.BodyParser(payload); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	s.store.mu.RLock()
	cp, found := s.store.findCoupon(payload.Code)
	s.store.mu.RUnlock()
	if !found {
		return fail(c, fiber.StatusNotFound, "coupon not found", nil)
	}

	discount, err := cp.DiscountFor(payload.Subtotal, time.Now())
	if err != nil {
		msg := "coupon cannot be applied"
		switch {
		case errors.Is(err, coupon.ErrExpired):
			msg = "coupon expired"
		case errors.Is(err, coupon.ErrBelowMinimum):
			msg = "order subtotal is below the coupon minimum"
		}
		return fail(c, fiber.StatusUnprocessableEntity, msg, nil)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"coupon":          cp,
		"discount_amount": discount,
	})
}

func orderJSON(o orderRow) fiber.Map {
	items := make([]fiber.Map, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, fiber.Map{
			"product_id": it.ProductID,
			"title":      it.Title,
			"quantity":   it.Quantity,
			"unit_price": it.UnitPrice,
			"line_total": it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
			"img_src":    it.ImgSrc,
		})
	}
	return fiber.Map{
		"id":             o.ID,
		"code":           o.Code,
		"status":         o.Status,
		"items":          items,
		"subtotal":       o.Subtotal,
		"discount":       o.Discount,
		"shipping":       o.Shipping,
		"tax":            o.Tax,
		"total":          o.Total,
		"payment_method": o.PaymentMethod,
		"created_at":     o.CreatedAt,
	}
}

// ordersPerPage is the history page size.
const ordersPerPage = 5

func (s *Server) listOrders(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	rows := s.store.orders[userID]
	newest := make([]orderRow, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		newest = append(newest, rows[i])
	}

	start := (page - 1) * ordersPerPage
	if start > len(newest) {
		start = len(newest)
	}
	end := start + ordersPerPage
	if end > len(newest) {
		end = len(newest)
	}

	out := make([]fiber.Map, 0, end-start)
	for _, row := range newest[start:end] {
		out = append(out, orderJSON(row))
	}
	return ok(c, fiber.StatusOK, out)
}

func (s *Server) getOrder(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid id", nil)
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	for _, o := range s.store.orders[userID] {
		if o.ID == orderID {
			return ok(c, fiber.StatusOK, orderJSON(o))
		}
	}
	return fail(c, fiber.StatusNotFound, "order not found", nil)
}

func (s *Server) createOrder(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}

	payload := new(struct {
		AddressID     int    `json:"address_id"`
		CouponCode    string `json:"coupon_code"`
		PaymentMethod string `json:"payment_method"`
		Note          string `json:"note"`
	})
	if err := c.BodyParser(payload); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	rows := s.store.carts[userID]
	if len(rows) == 0 {
		return fail(c, fiber.StatusUnprocessableEntity, "cart is empty", nil)
	}

	addressFound := false
	for _, a := range s.store.addresses[userID] {
		if a.ID == payload.AddressID {
			addressFound = true
			break
		}
	}
	if !addressFound {
		return fail(c, fiber.StatusUnprocessableEntity, "validation failed",
			map[string][]string{"address_id": {"address not found"}})
	}

	subtotal := s.store.cartSubtotal(userID)
	discount := decimal.Zero
	if payload.CouponCode != "" {
		cp, found := s.store.findCoupon(payload.CouponCode)
		if !found {
			return fail(c, fiber.StatusUnprocessableEntity, "validation failed",
				map[string][]string{"coupon_code": {"coupon not found"}})
		}
		discount, err = cp.DiscountFor(subtotal, time.Now())
		if err != nil {
			return fail(c, fiber.StatusUnprocessableEntity, "validation failed",
				map[string][]string{"coupon_code": {"coupon cannot be applied"}})
		}
	}

	sum := checkout.Summarize(subtotal, discount)

	items := make([]orderLine, 0, len(rows))
	for _, row := range rows {
		p, _ := s.store.product(row.ProductID)
		items = append(items, orderLine{
			ProductID: row.ProductID,
			Title:     p.Title,
			Quantity:  row.Quantity,
			UnitPrice: p.Price,
			ImgSrc:    p.ImgSrc,
		})
	}

	s.store.nextOrderID++
	o := orderRow{
		ID:            s.store.nextOrderID,
		Code:          "UTE-" + uuid.NewString()[:8],
		Status:        "pending",
		Items:         items,
		Subtotal:      sum.Subtotal,
		Discount:      sum.Discount,
		Shipping:      sum.Shipping,
		Tax:           sum.Tax,
		Total:         sum.Total,
		PaymentMethod: payload.PaymentMethod,
		CreatedAt:     time.Now().UTC(),
	}
	s.store.orders[userID] = append(s.store.orders[userID], o)
	s.store.carts[userID] = nil

	return ok(c, fiber.StatusCreated, orderJSON(o))
}

func (s *Server) cancelOrder(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid id", nil)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	rows := s.store.orders[userID]
	for i := range rows {
		if rows[i].ID != orderID {
			continue
		}
		if rows[i].Status != "pending" && rows[i].Status != "confirmed" {
			return fail(c, fiber.StatusUnprocessableEntity, "order can no longer be cancelled", nil)
		}
		rows[i].Status = "cancelled"
		s.store.orders[userID] = rows
		return ok(c, fiber.StatusOK, orderJSON(rows[i]))
	}
	return fail(c, fiber.StatusNotFound, "order not found", nil)
}

func addressJSON(a addressRow) fiber.Map {
	return fiber.Map{
		"id":         a.ID,
		"name":       a.Name,
		"phone":      a.Phone,
		"line":       a.Line,
		"ward":       a.Ward,
		"district":   a.District,
		"city":       a.City,
		"is_default": a.IsDefault,
	}
}

type addressPayload struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Line     string `json:"line"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	City     string `json:"city"`
}

func (s *Server) listAddresses(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	rows := s.store.addresses[userID]
	out := make([]fiber.Map, 0, len(rows))
	for _, a := range rows {
		out = append(out, addressJSON(a))
	}
	return ok(c, fiber.StatusOK, out)
}

func (s *Server) createAddress(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}

	payload := new(addressPayload)
	if err := c.BodyParser(payload); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if payload.Line == "" || payload.City == "" {
		return fail(c, fiber.StatusUnprocessableEntity, "validation failed",
			map[string][]string{"line": {"address line and city are required"}})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	s.store.nextAddressID++
	a := addressRow{
		ID:       s.store.nextAddressID,
		Name:     payload.Name,
		Phone:    payload.Phone,
		Line:     payload.Line,
		Ward:     payload.Ward,
		District: payload.District,
		City:     payload.City,
		// first address becomes the default
		IsDefault: len(s.store.addresses[userID]) == 0,
	}
	s.store.addresses[userID] = append(s.store.addresses[userID], a)
	return ok(c, fiber.StatusCreated, addressJSON(a))
}

func (s *Server) updateAddress(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid id", nil)
	}

	payload := new(addressPayload)
	if err := c.BodyParser(payload); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	rows := s.store.addresses[userID]
	for i := range rows {
		if rows[i].ID != id {
			continue
		}
		rows[i].Name = payload.Name
		rows[i].Phone = payload.Phone
		rows[i].Line = payload.Line
		rows[i].Ward = payload.Ward
		rows[i].District = payload.District
		rows[i].City = payload.City
		s.store.addresses[userID] = rows
		return ok(c, fiber.StatusOK, addressJSON(rows[i]))
	}
	return fail(c, fiber.StatusNotFound, "address not found", nil)
}

func (s *Server) deleteAddress(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid id", nil)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	rows := s.store.addresses[userID]
	for i := range rows {
		if rows[i].ID == id {
			s.store.addresses[userID] = append(rows[:i], rows[i+1:]...)
			return ok(c, fiber.StatusOK, fiber.Map{"deleted": id})
		}
	}
	return fail(c, fiber.StatusNotFound, "address not found", nil)
}

func (s *Server) setDefaultAddress(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid id", nil)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	rows := s.store.addresses[userID]
	found := false
	for i := range rows {
		rows[i].IsDefault = rows[i].ID == id
		if rows[i].IsDefault {
			found = true
		}
	}
	if !found {
		return fail(c, fiber.StatusNotFound, "address not found", nil)
	}
	s.store.addresses[userID] = rows
	return ok(c, fiber.StatusOK, fiber.Map{"default": id})
}

func (s *Server) createPayment(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", nil)
	}

	payload := new(struct {
		OrderID int `json:"order_id"`
	})
	if err := c.BodyParser(payload); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var target *orderRow
	rows := s.store.orders[userID]
	for i := range rows {
		if rows[i].ID == payload.OrderID {
			target = &rows[i]
			break
		}
	}
	if target == nil {
		return fail(c, fiber.StatusNotFound, "order not found", nil)
	}

	qr := fmt.Sprintf("00020101021238570010A000000727012300069704%06d5204539953037045802VN6304", target.ID)
	if s.hostedQR {
		qr = fmt.Sprintf("https://img.payos.local/qr/%d.png", target.ID)
	}
	p := paymentRow{
		OrderID:    target.ID,
		QRCode:     qr,
		PaymentURL: fmt.Sprintf("https://pay.payos.local/checkout/%s", target.Code),
		Status:     "pending",
	}
	s.store.payments[target.ID] = p
	return ok(c, fiber.StatusCreated, paymentJSON(p))
}

func paymentJSON(p paymentRow) fiber.Map {
	return fiber.Map{
		"order_id":    p.OrderID,
		"qr_code_url": p.QRCode,
		"payment_url": p.PaymentURL,
		"status":      p.Status,
	}
}

func (s *Server) paymentStatus(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid id", nil)
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	p, found := s.store.payments[orderID]
	if !found {
		return fail(c, fiber.StatusNotFound, "payment not found", nil)
	}
	return ok(c, fiber.StatusOK, paymentJSON(p))
}

func (s *Server) cancelPayment(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid id", nil)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p, found := s.store.payments[orderID]
	if !found {
		return fail(c, fiber.StatusNotFound, "payment not found", nil)
	}
	p.Status = "cancelled"
	s.store.payments[orderID] = p
	return ok(c, fiber.StatusOK, paymentJSON(p))
}
