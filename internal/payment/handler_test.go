package payment

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westmarin/yacht-store-backend/internal/catalog"
	"github.com/westmarin/yacht-store-backend/internal/order"
)

const testWebhookSecret = "whsec_test"

func newWebhookApp(t *testing.T, w *world) *fiber.App {
	t.Helper()
	svc := NewService(newFakeProvider(), w.orders)
	h := NewHandler(svc, w.reconciler, NewInMemoryEventStore(), testWebhookSecret, zerolog.Nop())
	app := fiber.New()
	h.RegisterWebhookRoute(app)
	return app
}

// signPayload produces a Stripe-Signature header the verifier accepts.
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventJSON(eventID, eventType, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"data":{"object":%s}}`, eventID, eventType, object))
}

func postWebhook(t *testing.T, app *fiber.App, payload []byte, sig string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sig != "" {
		req.Header.Set("Stripe-Signature", sig)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	return res.StatusCode
}

func TestWebhook_BadSignatureMutatesNothing(t *testing.T) {
	w := newWorld(t, []catalog.Product{{ID: 1, Name: "Anchor winch", PriceCents: 10000, Stock: 5, Active: true}})
	ord := w.placeOrder(t, ident(1), 1, 2)
	app := newWebhookApp(t, w)

	payload := eventJSON("evt_1", "checkout.session.completed",
		fmt.Sprintf(`{"id":"cs_1","payment_intent":"pi_9","metadata":{"order_number":%q}}`, ord.Number))

	assert.Equal(t, fiber.StatusBadRequest, postWebhook(t, app, payload, "t=1,v1=deadbeef"))
	assert.Equal(t, fiber.StatusBadRequest, postWebhook(t, app, payload, ""))

	got, err := w.orders.GetByID(ord.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)
	p, err := w.catalogRepo.GetProduct(1)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

func TestWebhook_CheckoutSessionCompleted(t *testing.T) {
	w := newWorld(t, []catalog.Product{{ID: 1, Name: "Anchor winch", PriceCents: 10000, Stock: 5, Active: true}})
	ord := w.placeOrder(t, ident(1), 1, 2)
	app := newWebhookApp(t, w)

	payload := eventJSON("evt_1", "checkout.session.completed",
		fmt.Sprintf(`{"id":"cs_1","payment_intent":"pi_9","metadata":{"order_number":%q}}`, ord.Number))

	status := postWebhook(t, app, payload, signPayload(payload, testWebhookSecret))
	assert.Equal(t, fiber.StatusOK, status)

	got, err := w.orders.GetByID(ord.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, got.Status)
	assert.Equal(t, "pi_9", got.ProviderPaymentRef)
	p, err := w.catalogRepo.GetProduct(1)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestWebhook_RedeliveryIsAcknowledgedWithoutEffect(t *testing.T) {
	w := newWorld(t, []catalog.Product{{ID: 1, Name: "Fender set", PriceCents: 2500, Stock: 10, Active: true}})
	ord := w.placeOrder(t, ident(1), 1, 4)
	app := newWebhookApp(t, w)

	payload := eventJSON("evt_dup", "checkout.session.completed",
		fmt.Sprintf(`{"id":"cs_1","payment_intent":"pi_1","metadata":{"order_number":%q}}`, ord.Number))

	assert.Equal(t, fiber.StatusOK, postWebhook(t, app, payload, signPayload(payload, testWebhookSecret)))
	assert.Equal(t, fiber.StatusOK, postWebhook(t, app, payload, signPayload(payload, testWebhookSecret)))

	p, err := w.catalogRepo.GetProduct(1)
	require.NoError(t, err)
	assert.Equal(t, 6, p.Stock)
}

func TestWebhook_PaymentFailed(t *testing.T) {
	w := newWorld(t, []catalog.Product{{ID: 1, Name: "Shackle", PriceCents: 300, Stock: 50, Active: true}})
	ord := w.placeOrder(t, ident(1), 1, 1)
	require.NoError(t, w.orders.SetPaymentRef(ord.ID, "pi_fail"))
	app := newWebhookApp(t, w)

	payload := eventJSON("evt_f", "payment_intent.payment_failed", `{"id":"pi_fail","metadata":{}}`)

	assert.Equal(t, fiber.StatusOK, postWebhook(t, app, payload, signPayload(payload, testWebhookSecret)))

	got, err := w.orders.GetByID(ord.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
	p, err := w.catalogRepo.GetProduct(1)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Stock)
}

func TestWebhook_UnknownEventTypeIsAcknowledged(t *testing.T) {
	w := newWorld(t, nil)
	app := newWebhookApp(t, w)

	payload := eventJSON("evt_u", "invoice.created", `{"id":"in_1"}`)
	assert.Equal(t, fiber.StatusOK, postWebhook(t, app, payload, signPayload(payload, testWebhookSecret)))
}

func TestWebhook_UnknownOrderIsAcknowledged(t *testing.T) {
	w := newWorld(t, nil)
	app := newWebhookApp(t, w)

	payload := eventJSON("evt_g", "checkout.session.completed",
		`{"id":"cs_x","payment_intent":"pi_x","metadata":{"order_number":"WM-20200101-000000"}}`)
	assert.Equal(t, fiber.StatusOK, postWebhook(t, app, payload, signPayload(payload, testWebhookSecret)))
}
