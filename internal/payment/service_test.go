package payment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westmarin/yacht-store-backend/internal/order"
)

// fakeProvider records created intents and serves them back by id.
type fakeProvider struct {
	intents map[string]Intent
	created int
	fail    bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{intents: make(map[string]Intent)}
}

func (p *fakeProvider) CreateIntent(amountCents int64, currency, orderNumber string) (Intent, error) {
	if p.fail {
		return Intent{}, errors.New("api down")
	}
	p.created++
	in := Intent{
		ID:           fmt.Sprintf("pi_%d", p.created),
		ClientSecret: fmt.Sprintf("pi_%d_secret", p.created),
		AmountCents:  amountCents,
		Open:         true,
	}
	p.intents[in.ID] = in
	return in, nil
}

func (p *fakeProvider) GetIntent(id string) (Intent, error) {
	in, ok := p.intents[id]
	if !ok {
		return Intent{}, errors.New("no such intent")
	}
	return in, nil
}

func (p *fakeProvider) close(id string) {
	in := p.intents[id]
	in.Open = false
	p.intents[id] = in
}

// fakeOrders is a minimal OrderBridge.
type fakeOrders struct {
	orders map[int]order.Order
}

func (f *fakeOrders) GetByID(orderID int) (order.Order, error) {
	ord, ok := f.orders[orderID]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return ord, nil
}

func (f *fakeOrders) SetPaymentRef(orderID int, ref string) error {
	ord, ok := f.orders[orderID]
	if !ok {
		return order.ErrNotFound
	}
	ord.ProviderPaymentRef = ref
	f.orders[orderID] = ord
	return nil
}

func pendingOrder(id int, total int64) order.Order {
	return order.Order{
		ID:         id,
		Number:     "WM-20260314-ABCDEF",
		OwnerKey:   "account:7",
		Status:     order.StatusPending,
		TotalCents: total,
	}
}

func TestCreateIntent_OpensAndPersistsRef(t *testing.T) {
	provider := newFakeProvider()
	orders := &fakeOrders{orders: map[int]order.Order{1: pendingOrder(1, 19000)}}
	svc := NewService(provider, orders)

	intent, err := svc.CreateIntent("account:7", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(19000), intent.AmountCents)
	assert.NotEmpty(t, intent.ClientSecret)

	ord, _ := orders.GetByID(1)
	assert.Equal(t, intent.ID, ord.ProviderPaymentRef)
}

func TestCreateIntent_RetryReusesOpenIntent(t *testing.T) {
	provider := newFakeProvider()
	orders := &fakeOrders{orders: map[int]order.Order{1: pendingOrder(1, 19000)}}
	svc := NewService(provider, orders)

	first, err := svc.CreateIntent("account:7", 1)
	require.NoError(t, err)

	// client retries: same intent back, no second charge opened
	second, err := svc.CreateIntent("account:7", 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, provider.created)
}

func TestCreateIntent_ClosedIntentIsReplaced(t *testing.T) {
	provider := newFakeProvider()
	orders := &fakeOrders{orders: map[int]order.Order{1: pendingOrder(1, 19000)}}
	svc := NewService(provider, orders)

	first, err := svc.CreateIntent("account:7", 1)
	require.NoError(t, err)
	provider.close(first.ID)

	second, err := svc.CreateIntent("account:7", 1)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, provider.created)
}

func TestCreateIntent_BelowMinimum(t *testing.T) {
	svc := NewService(newFakeProvider(), &fakeOrders{orders: map[int]order.Order{1: pendingOrder(1, 49)}})

	_, err := svc.CreateIntent("account:7", 1)
	assert.ErrorIs(t, err, ErrAmountTooSmall)
}

func TestCreateIntent_WrongOwnerLooksLikeMissing(t *testing.T) {
	svc := NewService(newFakeProvider(), &fakeOrders{orders: map[int]order.Order{1: pendingOrder(1, 19000)}})

	_, err := svc.CreateIntent("account:99", 1)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestCreateIntent_NonPendingOrder(t *testing.T) {
	ord := pendingOrder(1, 19000)
	ord.Status = order.StatusCancelled
	svc := NewService(newFakeProvider(), &fakeOrders{orders: map[int]order.Order{1: ord}})

	_, err := svc.CreateIntent("account:7", 1)
	assert.ErrorIs(t, err, ErrOrderNotPayable)
}

func TestCreateIntent_ProviderFailure(t *testing.T) {
	provider := newFakeProvider()
	provider.fail = true
	svc := NewService(provider, &fakeOrders{orders: map[int]order.Order{1: pendingOrder(1, 19000)}})

	_, err := svc.CreateIntent("account:7", 1)
	assert.ErrorIs(t, err, ErrProvider)
}
