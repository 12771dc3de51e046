package order

import (
	"fmt"
	"strings"
)

// Status is the order lifecycle state. The forward path is
// pending → processing → shipped → delivered; pending and processing may also
// exit to cancelled. The reconciler only ever performs the guarded
// pending → processing transition; admins may force any status.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Address is the shipping destination embedded in an order.
type Address struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

// Order is the durable record of a checkout attempt. Monetary fields are
// integer cents and satisfy total = subtotal + shipping - discount at
// creation time. OwnerKey scopes the order to the cart identity that placed
// it; AccountID is nil for guest orders, in which case GuestEmail is set.
type Order struct {
	ID                 int     `json:"orderId"`
	Number             string  `json:"orderNumber"`
	OwnerKey           string  `json:"-"`
	AccountID          *int    `json:"accountId,omitempty"`
	GuestEmail         *string `json:"guestEmail,omitempty"`
	Status             Status  `json:"status"`
	SubtotalCents      int64   `json:"subtotalCents"`
	ShippingCents      int64   `json:"shippingCents"`
	DiscountCents      int64   `json:"discountCents"`
	TotalCents         int64   `json:"totalCents"`
	CouponID           *int    `json:"couponId,omitempty"`
	ShippingMethodID   int     `json:"shippingMethodId"`
	Address            Address `json:"shippingAddress"`
	Notes              string  `json:"notes,omitempty"`
	ProviderPaymentRef string  `json:"providerPaymentRef,omitempty"`
	TrackingNumber     string  `json:"trackingNumber,omitempty"`
	CreatedAt          string  `json:"createdAt"`
	UpdatedAt          string  `json:"updatedAt"`
}

// Line is an order line with product fields snapshotted at order time, so
// historical orders stay stable when the catalog entry later changes.
type Line struct {
	ID           int    `json:"lineId"`
	OrderID      int    `json:"orderId"`
	ProductID    int    `json:"productId"`
	ProductName  string `json:"productName"`
	ProductImage string `json:"productImage,omitempty"`
	Quantity     int    `json:"quantity"`
	PriceCents   int64  `json:"priceCents"`
}

// Violation codes surfaced by checkout validation.
const (
	ViolationProductUnavailable = "ProductUnavailable"
	ViolationInsufficientStock  = "InsufficientStock"
)

// Violation describes one cart line that failed checkout validation.
type Violation struct {
	Code      string `json:"code"`
	ProductID int    `json:"productId"`
	Message   string `json:"message"`
}

// CheckoutError aggregates every validation violation found in the cart, in
// cart-line order, so the caller sees all problems at once.
type CheckoutError struct {
	Violations []Violation
}

func (e *CheckoutError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, fmt.Sprintf("product %d: %s", v.ProductID, v.Message))
	}
	return "checkout validation failed: " + strings.Join(msgs, "; ")
}
