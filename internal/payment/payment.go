package payment

import "errors"

var (
	ErrAmountTooSmall  = errors.New("order total is below the provider minimum")
	ErrOrderNotPayable = errors.New("order is not awaiting payment")
	ErrProvider        = errors.New("payment provider error")
)

// MinAmountCents is the smallest amount the provider will transact.
const MinAmountCents int64 = 50

// Currency is the storefront's settlement currency.
const Currency = "eur"

// Intent is the provider-side payment request opened for one order. The
// client secret is handed to the browser SDK; the ID is persisted on the
// order as the provider payment reference.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	AmountCents  int64  `json:"amountCents"`
	Open         bool   `json:"-"`
}

// Provider opens and inspects payment intents at the external payment
// service. The order number travels as correlating metadata so webhook events
// can be matched back without relying on the intent id being persisted yet.
type Provider interface {
	CreateIntent(amountCents int64, currency, orderNumber string) (Intent, error)
	GetIntent(id string) (Intent, error)
}
