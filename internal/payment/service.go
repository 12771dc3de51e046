package payment

import (
	"fmt"

	"github.com/westmarin/yacht-store-backend/internal/order"
)

// OrderBridge is the slice of the order service the intent bridge needs.
type OrderBridge interface {
	GetByID(orderID int) (order.Order, error)
	SetPaymentRef(orderID int, ref string) error
}

// Service is the payment intent bridge: it opens one provider payment per
// order and persists the provider's reference onto the order.
type Service struct {
	provider Provider
	orders   OrderBridge
}

func NewService(provider Provider, orders OrderBridge) *Service {
	return &Service{provider: provider, orders: orders}
}

// CreateIntent opens (or reuses) a payment intent for the order. Retrying is
// safe: when the order already holds a provider reference and that intent is
// still open, the existing intent is returned instead of opening a second
// one, so a retrying client cannot double-charge.
func (s *Service) CreateIntent(ownerKey string, orderID int) (Intent, error) {
	ord, err := s.orders.GetByID(orderID)
	if err != nil {
		return Intent{}, err
	}
	if ord.OwnerKey != ownerKey {
		return Intent{}, order.ErrNotFound
	}
	if ord.Status != order.StatusPending {
		return Intent{}, ErrOrderNotPayable
	}
	if ord.TotalCents < MinAmountCents {
		return Intent{}, ErrAmountTooSmall
	}

	if ord.ProviderPaymentRef != "" {
		existing, err := s.provider.GetIntent(ord.ProviderPaymentRef)
		if err == nil && existing.Open {
			return existing, nil
		}
		// fall through: the old intent is gone or closed, open a new one
	}

	intent, err := s.provider.CreateIntent(ord.TotalCents, Currency, ord.Number)
	if err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	if err := s.orders.SetPaymentRef(ord.ID, intent.ID); err != nil {
		return Intent{}, err
	}
	return intent, nil
}
