package cart

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/westmarin/yacht-store-backend/internal/identity"
)

// Handler delegates cart operations to the cart service. Routes work for both
// authenticated accounts and guests carrying a session token header.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart", h.addToCart)
	app.Put("/api/v1/cart/:lineID<[0-9]+>", h.setQuantity)
	app.Delete("/api/v1/cart/:lineID<[0-9]+>", h.removeLine)
	app.Delete("/api/v1/cart", h.clearCart)
}

type addRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}

	line, err := h.service.Add(ident.Key(), payload.ProductID, payload.Quantity)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(line)
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	lineID, err := strconv.Atoi(c.Params("lineID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid line id"})
	}

	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := h.service.SetQuantity(ident.Key(), lineID, payload.Quantity); err != nil {
		return h.serviceError(c, err)
	}
	return h.respondWithCart(c, ident.Key())
}

func (h *Handler) removeLine(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	lineID, err := strconv.Atoi(c.Params("lineID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid line id"})
	}

	if err := h.service.Remove(ident.Key(), lineID); err != nil {
		return h.serviceError(c, err)
	}
	return h.respondWithCart(c, ident.Key())
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.Clear(ident.Key()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON([]Item{})
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return h.respondWithCart(c, ident.Key())
}

func (h *Handler) respondWithCart(c *fiber.Ctx, ownerKey string) error {
	items, err := h.service.Get(ownerKey)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}

func (h *Handler) serviceError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrLineNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "cart line not found"})
	case ErrNotOwner:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "cart line belongs to another owner"})
	case ErrInvalidQuantity, ErrProductUnavailable, ErrInsufficientStock:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
