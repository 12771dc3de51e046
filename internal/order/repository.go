package order

import (
	"errors"
	"sync"
)

var (
	ErrNotFound    = errors.New("order not found")
	ErrNumberTaken = errors.New("order number already taken")
)

// Repository persists orders. Create, MarkPaid and MarkFailed are
// transactional: Create writes the order, its lines, the coupon usage
// reservation and the cart cleanup all-or-nothing; MarkPaid couples the
// pending→processing transition with the stock debit so duplicate webhook
// deliveries cannot debit twice.
type Repository interface {
	Create(ord Order, lines []Line) (Order, error)
	GetByID(id int) (Order, error)
	GetByNumber(number string) (Order, error)
	LinesByOrderID(orderID int) ([]Line, error)
	ListByOwner(ownerKey string) ([]Order, error)
	SetPaymentRef(orderID int, ref string) error
	MarkPaid(orderID int, providerRef string) (bool, error)
	MarkFailed(providerRef string) (bool, error)
	SetStatus(orderID int, status Status, trackingNumber string) error
}

// StockDebiter debits product stock, floored at zero.
type StockDebiter interface {
	DebitStock(productID, qty int) error
}

// CouponReserver increments coupon usage if the usage limit allows it.
type CouponReserver interface {
	ReserveUsage(couponID int) error
}

// CartClearer removes all cart lines for an owner key.
type CartClearer interface {
	Clear(ownerKey string) error
}

// InMemoryRepository is used for tests and local scenarios. It mirrors the
// Postgres repository's transactional behavior through the collaborator
// interfaces it is constructed with.
type InMemoryRepository struct {
	mu      sync.RWMutex
	orders  []Order
	lines   []Line
	nextID  int
	stock   StockDebiter
	coupons CouponReserver
	carts   CartClearer
}

func NewInMemoryRepository(stock StockDebiter, coupons CouponReserver, carts CartClearer) *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, stock: stock, coupons: coupons, carts: carts}
}

func (r *InMemoryRepository) Create(ord Order, lines []Line) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.orders {
		if existing.Number == ord.Number {
			return Order{}, ErrNumberTaken
		}
	}

	// reserve coupon usage first so an exhausted coupon aborts the creation
	if ord.CouponID != nil && r.coupons != nil {
		if err := r.coupons.ReserveUsage(*ord.CouponID); err != nil {
			return Order{}, err
		}
	}

	ord.ID = r.nextID
	r.nextID++
	r.orders = append(r.orders, ord)
	for i := range lines {
		lines[i].ID = len(r.lines) + 1
		lines[i].OrderID = ord.ID
		r.lines = append(r.lines, lines[i])
	}

	if r.carts != nil {
		if err := r.carts.Clear(ord.OwnerKey); err != nil {
			return Order{}, err
		}
	}
	return ord, nil
}

func (r *InMemoryRepository) GetByID(id int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ord := range r.orders {
		if ord.ID == id {
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) GetByNumber(number string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ord := range r.orders {
		if ord.Number == number {
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) LinesByOrderID(orderID int) ([]Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Line, 0)
	for _, l := range r.lines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListByOwner(ownerKey string) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, ord := range r.orders {
		if ord.OwnerKey == ownerKey {
			out = append(out, ord)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) SetPaymentRef(orderID int, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ord := range r.orders {
		if ord.ID == orderID {
			r.orders[i].ProviderPaymentRef = ref
			return nil
		}
	}
	return ErrNotFound
}

// MarkPaid transitions an order from pending to processing, persists the
// provider reference and debits stock for every line. It reports false when
// the order was not in pending, which makes redelivered success events
// no-ops.
func (r *InMemoryRepository) MarkPaid(orderID int, providerRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, ord := range r.orders {
		if ord.ID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, ErrNotFound
	}
	if r.orders[idx].Status != StatusPending {
		return false, nil
	}

	r.orders[idx].Status = StatusProcessing
	r.orders[idx].ProviderPaymentRef = providerRef

	if r.stock != nil {
		for _, l := range r.lines {
			if l.OrderID == orderID {
				if err := r.stock.DebitStock(l.ProductID, l.Quantity); err != nil {
					return false, err
				}
			}
		}
	}
	return true, nil
}

// MarkFailed cancels the order holding the given provider reference, but only
// from the early states. It reports false when no order matched. The empty
// reference never matches; pending orders without a bridged payment carry it.
func (r *InMemoryRepository) MarkFailed(providerRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if providerRef == "" {
		return false, nil
	}
	for i, ord := range r.orders {
		if ord.ProviderPaymentRef == providerRef &&
			(ord.Status == StatusPending || ord.Status == StatusProcessing) {
			r.orders[i].Status = StatusCancelled
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) SetStatus(orderID int, status Status, trackingNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ord := range r.orders {
		if ord.ID == orderID {
			r.orders[i].Status = status
			if trackingNumber != "" {
				r.orders[i].TrackingNumber = trackingNumber
			}
			return nil
		}
	}
	return ErrNotFound
}
