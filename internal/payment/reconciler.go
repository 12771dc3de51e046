package payment

import (
	"github.com/rs/zerolog"

	"github.com/westmarin/yacht-store-backend/internal/order"
)

// OrderStore is the slice of the order service the reconciler needs.
type OrderStore interface {
	GetByNumber(number string) (order.Order, error)
	MarkPaid(orderID int, providerRef string) (bool, error)
	MarkFailed(providerRef string) (bool, error)
}

// Reconciler applies asynchronous provider events to orders. Deliveries are
// at-least-once and unordered, so every path here must converge under
// redelivery: unknown orders are ignored, and the success transition only
// fires from pending.
type Reconciler struct {
	orders OrderStore
	log    zerolog.Logger
}

func NewReconciler(orders OrderStore, log zerolog.Logger) *Reconciler {
	return &Reconciler{orders: orders, log: log}
}

// PaymentSucceeded matches the event back to the order by its order number —
// never by provider reference, which may not be persisted yet if the event
// races the intent bridge's write — and performs the guarded
// pending→processing transition plus the stock debit.
func (r *Reconciler) PaymentSucceeded(orderNumber, providerRef string) error {
	if orderNumber == "" {
		r.log.Warn().Str("provider_ref", providerRef).Msg("success event without order number, ignoring")
		return nil
	}

	ord, err := r.orders.GetByNumber(orderNumber)
	if err == order.ErrNotFound {
		// duplicate redelivery for a deleted order, or a foreign event;
		// failing here would only make the provider retry harder
		r.log.Warn().Str("order_number", orderNumber).Msg("success event for unknown order, ignoring")
		return nil
	}
	if err != nil {
		return err
	}

	transitioned, err := r.orders.MarkPaid(ord.ID, providerRef)
	if err != nil {
		return err
	}
	if !transitioned {
		r.log.Info().Str("order_number", orderNumber).Msg("order already reconciled, duplicate delivery ignored")
		return nil
	}

	r.log.Info().Str("order_number", orderNumber).Str("provider_ref", providerRef).Msg("payment succeeded, order processing")
	return nil
}

// PaymentFailed cancels the order holding the provider reference. No stock
// moves: nothing was debited for an order that never reached processing via
// this path. An empty reference never matches: orders the bridge has not
// written a reference to yet carry an empty one, and a blank lookup would
// sweep them all up.
func (r *Reconciler) PaymentFailed(providerRef string) error {
	if providerRef == "" {
		r.log.Warn().Msg("failure event without provider reference, ignoring")
		return nil
	}

	matched, err := r.orders.MarkFailed(providerRef)
	if err != nil {
		return err
	}
	if !matched {
		r.log.Warn().Str("provider_ref", providerRef).Msg("failure event matched no order, ignoring")
		return nil
	}

	r.log.Info().Str("provider_ref", providerRef).Msg("payment failed, order cancelled")
	return nil
}
