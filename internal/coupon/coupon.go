package coupon

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("coupon not found")
	ErrInactive  = errors.New("coupon is not active")
	ErrExpired   = errors.New("coupon has expired")
	ErrMinOrder  = errors.New("order amount below coupon minimum")
	ErrExhausted = errors.New("coupon usage limit reached")
)

// Type distinguishes percentage coupons from fixed-amount ones.
type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
)

// Coupon is a discount code applied at checkout. For percentage coupons Value
// is 0..100; for fixed coupons it is an amount in cents. UsageCount is
// reserved at order creation and never released, even if the payment later
// fails.
type Coupon struct {
	ID               int        `json:"couponId"`
	Code             string     `json:"code"`
	Type             Type       `json:"type"`
	Value            int64      `json:"value"`
	MinOrderCents    int64      `json:"minOrderCents,omitempty"`
	MaxDiscountCents int64      `json:"maxDiscountCents,omitempty"`
	UsageLimit       int        `json:"usageLimit,omitempty"`
	UsageCount       int        `json:"usageCount"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	Active           bool       `json:"active"`
}

// NormalizeCode upper-cases and trims a user-supplied coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks whether the coupon can apply to an order of the given
// subtotal at the given time.
func (cp Coupon) Validate(subtotalCents int64, now time.Time) error {
	if !cp.Active {
		return ErrInactive
	}
	if cp.ExpiresAt != nil && now.After(*cp.ExpiresAt) {
		return ErrExpired
	}
	if cp.MinOrderCents > 0 && subtotalCents < cp.MinOrderCents {
		return ErrMinOrder
	}
	if cp.UsageLimit > 0 && cp.UsageCount >= cp.UsageLimit {
		return ErrExhausted
	}
	return nil
}

// DiscountFor computes the discount in cents for the given subtotal,
// capped by MaxDiscountCents and by the subtotal itself.
func (cp Coupon) DiscountFor(subtotalCents int64) int64 {
	var discount int64
	switch cp.Type {
	case TypePercentage:
		pct := decimal.NewFromInt(cp.Value).Div(decimal.NewFromInt(100))
		discount = decimal.NewFromInt(subtotalCents).Mul(pct).Round(0).IntPart()
	case TypeFixed:
		discount = cp.Value
	}
	if cp.MaxDiscountCents > 0 && discount > cp.MaxDiscountCents {
		discount = cp.MaxDiscountCents
	}
	if discount > subtotalCents {
		discount = subtotalCents
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
