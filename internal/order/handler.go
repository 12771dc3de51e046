package order

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/westmarin/yacht-store-backend/internal/coupon"
	"github.com/westmarin/yacht-store-backend/internal/identity"
)

// Handler exposes checkout and order lookups. The admin status override is
// registered separately behind the admin middleware.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout", h.checkout)
	app.Get("/api/v1/orders", h.listOrders)
	app.Get("/api/v1/orders/:id<[0-9]+>", h.getOrder)
}

func (h *Handler) RegisterAdminRoutes(app *fiber.App) {
	app.Patch("/api/v1/admin/orders/:id<[0-9]+>/status", identity.RequireAdmin, h.setStatus)
}

type checkoutRequest struct {
	ShippingMethodID int     `json:"shippingMethodId"`
	Address          Address `json:"shippingAddress"`
	Notes            string  `json:"notes"`
	GuestEmail       string  `json:"guestEmail"`
	CouponCode       string  `json:"couponCode"`
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(checkoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ShippingMethodID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "shippingMethodId is required"})
	}

	created, err := h.service.Create(ident, CheckoutInput{
		ShippingMethodID: payload.ShippingMethodID,
		Address:          payload.Address,
		Notes:            payload.Notes,
		GuestEmail:       payload.GuestEmail,
		CouponCode:       payload.CouponCode,
	})
	if err != nil {
		return h.checkoutError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) checkoutError(c *fiber.Ctx, err error) error {
	var chk *CheckoutError
	if errors.As(err, &chk) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":    "checkout validation failed",
			"violations": chk.Violations,
		})
	}

	switch err {
	case ErrEmptyCart:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "EmptyCart", "message": err.Error()})
	case ErrInvalidShippingMethod:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "InvalidShippingMethod", "message": err.Error()})
	case ErrGuestEmailRequired:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case coupon.ErrNotFound, coupon.ErrInactive, coupon.ErrExpired, coupon.ErrMinOrder, coupon.ErrExhausted:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orders, err := h.service.ListForIdentity(ident)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	detail, err := h.service.GetForIdentity(ident, orderID)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(detail)
}

type statusRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"trackingNumber"`
}

// setStatus is the admin escape hatch: any status, no transition guard.
func (h *Handler) setStatus(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	status := Status(payload.Status)
	if !ValidStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown status"})
	}

	if err := h.service.SetStatus(orderID, status, payload.TrackingNumber); err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	ord, err := h.service.GetByID(orderID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(ord)
}
