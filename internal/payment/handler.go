package payment

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/westmarin/yacht-store-backend/internal/identity"
	"github.com/westmarin/yacht-store-backend/internal/order"
)

// Handler exposes the payment intent endpoint and the provider webhook. The
// webhook is public: its only gate is the event signature.
type Handler struct {
	service       *Service
	reconciler    *Reconciler
	events        EventStore
	webhookSecret string
	log           zerolog.Logger
}

func NewHandler(service *Service, reconciler *Reconciler, events EventStore, webhookSecret string, log zerolog.Logger) *Handler {
	return &Handler{
		service:       service,
		reconciler:    reconciler,
		events:        events,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/api/v1/orders/:id<[0-9]+>/payment-intent", h.createIntent)
}

func (h *Handler) RegisterWebhookRoute(app *fiber.App) {
	app.Post("/api/v1/payments/webhook", h.handleWebhook)
}

func (h *Handler) createIntent(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	intent, err := h.service.CreateIntent(ident.Key(), orderID)
	if err != nil {
		switch {
		case err == order.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		case err == ErrAmountTooSmall, err == ErrOrderNotPayable:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrProvider):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(intent)
}

// sessionObject is the slice of a checkout session payload we care about.
type sessionObject struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

// intentObject is the slice of a payment intent payload we care about.
type intentObject struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// handleWebhook verifies the event signature before trusting anything in the
// body, skips exact redeliveries, and dispatches by event type. It answers
// 200 for processed or deliberately ignored events, 400 only for signature
// failures, and 500 for internal errors so the provider redelivers.
func (h *Handler) handleWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	sig := c.Get("Stripe-Signature")

	event, err := webhook.ConstructEventWithOptions(payload, sig, h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		h.log.Warn().Err(err).Msg("webhook signature verification failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid signature"})
	}

	if seen, err := h.events.Seen(event.ID); err == nil && seen {
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		var sess sessionObject
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			h.log.Warn().Err(err).Str("event_id", event.ID).Msg("malformed session payload, ignoring")
			return c.JSON(fiber.Map{"received": true})
		}
		ref := sess.PaymentIntent
		if ref == "" {
			ref = sess.ID
		}
		if err := h.reconciler.PaymentSucceeded(sess.Metadata["order_number"], ref); err != nil {
			h.log.Error().Err(err).Str("event_id", event.ID).Msg("reconciliation failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "reconciliation failed"})
		}

	case "payment_intent.succeeded":
		var pi intentObject
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			h.log.Warn().Err(err).Str("event_id", event.ID).Msg("malformed intent payload, ignoring")
			return c.JSON(fiber.Map{"received": true})
		}
		if err := h.reconciler.PaymentSucceeded(pi.Metadata["order_number"], pi.ID); err != nil {
			h.log.Error().Err(err).Str("event_id", event.ID).Msg("reconciliation failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "reconciliation failed"})
		}

	case "payment_intent.payment_failed":
		var pi intentObject
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			h.log.Warn().Err(err).Str("event_id", event.ID).Msg("malformed intent payload, ignoring")
			return c.JSON(fiber.Map{"received": true})
		}
		if err := h.reconciler.PaymentFailed(pi.ID); err != nil {
			h.log.Error().Err(err).Str("event_id", event.ID).Msg("reconciliation failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "reconciliation failed"})
		}

	default:
		// unhandled event types are acknowledged so the provider stops resending
	}

	if err := h.events.MarkProcessed(event.ID, string(event.Type)); err != nil {
		h.log.Error().Err(err).Str("event_id", event.ID).Msg("could not record webhook event")
	}
	return c.JSON(fiber.Map{"received": true})
}
