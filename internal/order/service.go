package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/westmarin/yacht-store-backend/internal/cart"
	"github.com/westmarin/yacht-store-backend/internal/catalog"
	"github.com/westmarin/yacht-store-backend/internal/coupon"
	"github.com/westmarin/yacht-store-backend/internal/identity"
)

var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrInvalidShippingMethod  = errors.New("shipping method missing or inactive")
	ErrGuestEmailRequired     = errors.New("guest checkout requires an email")
	ErrTooManyNumberConflicts = errors.New("could not generate a unique order number")
)

// numberAttempts bounds order-number regeneration on unique conflicts.
const numberAttempts = 5

// CheckoutInput is the caller-facing checkout submission.
type CheckoutInput struct {
	ShippingMethodID int
	Address          Address
	Notes            string
	GuestEmail       string
	CouponCode       string
}

// Detail is an order together with its snapshot lines.
type Detail struct {
	Order
	Lines []Line `json:"lines"`
}

// Service implements order creation, listing and the status mutations used by
// the payment reconciler and admin tooling.
type Service struct {
	repo    Repository
	carts   cart.ServiceInterface
	catalog catalog.ServiceInterface
	coupons coupon.Repository
}

func NewService(repo Repository, carts cart.ServiceInterface, cat catalog.ServiceInterface, coupons coupon.Repository) *Service {
	return &Service{repo: repo, carts: carts, catalog: cat, coupons: coupons}
}

// Create converts the caller's cart into a pending order. Validation happens
// against the catalog at this instant; prices, names and images are
// snapshotted onto the order lines. Stock is validated but NOT debited here;
// the payment reconciler debits it when the payment succeeds.
func (s *Service) Create(ident identity.Identity, in CheckoutInput) (Order, error) {
	var guestEmail *string
	if ident.IsGuest() {
		if in.GuestEmail == "" {
			return Order{}, ErrGuestEmailRequired
		}
		guestEmail = &in.GuestEmail
	}

	lines, err := s.carts.Lines(ident.Key())
	if err != nil {
		return Order{}, err
	}
	if len(lines) == 0 {
		return Order{}, ErrEmptyCart
	}

	method, err := s.catalog.GetShippingMethod(in.ShippingMethodID)
	if err != nil || !method.Active {
		if err != nil && err != catalog.ErrShippingMethodNotFound {
			return Order{}, err
		}
		return Order{}, ErrInvalidShippingMethod
	}

	orderLines, subtotal, err := s.validateLines(lines)
	if err != nil {
		return Order{}, err
	}

	var couponID *int
	var discount int64
	if in.CouponCode != "" {
		cp, err := s.coupons.GetByCode(in.CouponCode)
		if err != nil {
			return Order{}, err
		}
		if err := cp.Validate(subtotal, time.Now().UTC()); err != nil {
			return Order{}, err
		}
		discount = cp.DiscountFor(subtotal)
		couponID = &cp.ID
	}

	now := time.Now().UTC()
	ord := Order{
		OwnerKey:         ident.Key(),
		GuestEmail:       guestEmail,
		Status:           StatusPending,
		SubtotalCents:    subtotal,
		ShippingCents:    method.PriceCents,
		DiscountCents:    discount,
		TotalCents:       subtotal + method.PriceCents - discount,
		CouponID:         couponID,
		ShippingMethodID: method.ID,
		Address:          in.Address,
		Notes:            in.Notes,
		CreatedAt:        now.Format(time.RFC3339),
		UpdatedAt:        now.Format(time.RFC3339),
	}
	if !ident.IsGuest() {
		id := ident.AccountID
		ord.AccountID = &id
	}

	// the order number carries a unique constraint; regenerate on collision
	for attempt := 0; attempt < numberAttempts; attempt++ {
		ord.Number = GenerateNumber(now)
		created, err := s.repo.Create(ord, orderLines)
		if err == ErrNumberTaken {
			continue
		}
		if err != nil {
			return Order{}, err
		}
		return created, nil
	}
	return Order{}, ErrTooManyNumberConflicts
}

// validateLines reloads every cart line's product and collects all
// violations instead of failing on the first, so the caller can fix the
// whole cart at once. Violations follow cart-line order.
func (s *Service) validateLines(lines []cart.Line) ([]Line, int64, error) {
	orderLines := make([]Line, 0, len(lines))
	violations := make([]Violation, 0)
	var subtotal int64

	for _, l := range lines {
		p, err := s.catalog.GetProduct(l.ProductID)
		if err == catalog.ErrNotFound {
			violations = append(violations, Violation{
				Code:      ViolationProductUnavailable,
				ProductID: l.ProductID,
				Message:   "product no longer exists",
			})
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		if !p.Active {
			violations = append(violations, Violation{
				Code:      ViolationProductUnavailable,
				ProductID: l.ProductID,
				Message:   "product is no longer available",
			})
			continue
		}
		if p.Stock < l.Quantity {
			violations = append(violations, Violation{
				Code:      ViolationInsufficientStock,
				ProductID: l.ProductID,
				Message:   fmt.Sprintf("only %d in stock, %d requested", p.Stock, l.Quantity),
			})
			continue
		}

		orderLines = append(orderLines, Line{
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductImage: p.ImageURL,
			Quantity:     l.Quantity,
			PriceCents:   p.PriceCents,
		})
		subtotal += p.PriceCents * int64(l.Quantity)
	}

	if len(violations) > 0 {
		return nil, 0, &CheckoutError{Violations: violations}
	}
	return orderLines, subtotal, nil
}

// GetForIdentity loads an order with its lines, refusing callers that do not
// own it. Admins go through GetByID instead.
func (s *Service) GetForIdentity(ident identity.Identity, orderID int) (Detail, error) {
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Detail{}, err
	}
	if ord.OwnerKey != ident.Key() {
		return Detail{}, ErrNotFound
	}
	lines, err := s.repo.LinesByOrderID(ord.ID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Order: ord, Lines: lines}, nil
}

func (s *Service) ListForIdentity(ident identity.Identity) ([]Order, error) {
	return s.repo.ListByOwner(ident.Key())
}

func (s *Service) GetByID(orderID int) (Order, error) {
	return s.repo.GetByID(orderID)
}

func (s *Service) GetByNumber(number string) (Order, error) {
	return s.repo.GetByNumber(number)
}

func (s *Service) SetPaymentRef(orderID int, ref string) error {
	return s.repo.SetPaymentRef(orderID, ref)
}

// MarkPaid is the reconciler's success transition; see Repository.MarkPaid.
func (s *Service) MarkPaid(orderID int, providerRef string) (bool, error) {
	return s.repo.MarkPaid(orderID, providerRef)
}

// MarkFailed is the reconciler's failure transition; see Repository.MarkFailed.
func (s *Service) MarkFailed(providerRef string) (bool, error) {
	return s.repo.MarkFailed(providerRef)
}

// SetStatus is the admin escape hatch: it applies any status unconditionally,
// so a human operator can override (or race) the reconciler. Last writer
// wins.
func (s *Service) SetStatus(orderID int, status Status, trackingNumber string) error {
	return s.repo.SetStatus(orderID, status, trackingNumber)
}
