package payment

import (
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct{}

func NewStripeProvider(apiKey string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{}
}

func (p *StripeProvider) CreateIntent(amountCents int64, currency, orderNumber string) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("order_number", orderNumber)

	pi, err := paymentintent.New(params)
	if err != nil {
		return Intent{}, err
	}
	return intentFrom(pi), nil
}

func (p *StripeProvider) GetIntent(id string) (Intent, error) {
	pi, err := paymentintent.Get(id, nil)
	if err != nil {
		return Intent{}, err
	}
	return intentFrom(pi), nil
}

func intentFrom(pi *stripe.PaymentIntent) Intent {
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Open:         intentOpen(pi.Status),
	}
}

// intentOpen reports whether the intent can still be completed by the client,
// which is when the bridge reuses it instead of opening a second one.
func intentOpen(status stripe.PaymentIntentStatus) bool {
	switch status {
	case stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusProcessing:
		return true
	}
	return false
}
