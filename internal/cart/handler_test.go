package cart

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/westmarin/yacht-store-backend/internal/catalog"
	"github.com/westmarin/yacht-store-backend/internal/identity"
)

func setupApp() *fiber.App {
	svc, _ := newCartFixture(catalog.Product{ID: 1, Name: "Cleat", PriceCents: 500, Stock: 4, Active: true})
	a := fiber.New()
	NewHandler(svc).RegisterRoutes(a)
	return a
}

func TestAddToCart_GuestSession(t *testing.T) {
	a := setupApp()

	b, _ := json.Marshal(map[string]int{"productId": 1, "quantity": 2})
	req := httptest.NewRequest("POST", "/api/v1/cart", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(identity.SessionHeader, "sess-123")

	res, err := a.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}

	var line Line
	json.NewDecoder(res.Body).Decode(&line)
	if line.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", line.Quantity)
	}
}

func TestAddToCart_NoIdentity(t *testing.T) {
	a := setupApp()

	b, _ := json.Marshal(map[string]int{"productId": 1, "quantity": 1})
	req := httptest.NewRequest("POST", "/api/v1/cart", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	res, err := a.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != 401 {
		t.Fatalf("expected 401 got %d", res.StatusCode)
	}
}

func TestGetCart_EmptyForFreshSession(t *testing.T) {
	a := setupApp()

	req := httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set(identity.SessionHeader, "sess-fresh")

	res, err := a.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}

	var items []Item
	json.NewDecoder(res.Body).Decode(&items)
	if len(items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(items))
	}
}

func TestAddToCart_InsufficientStock(t *testing.T) {
	a := setupApp()

	b, _ := json.Marshal(map[string]int{"productId": 1, "quantity": 9})
	req := httptest.NewRequest("POST", "/api/v1/cart", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(identity.SessionHeader, "sess-123")

	res, err := a.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != 400 {
		t.Fatalf("expected 400 got %d", res.StatusCode)
	}
}
