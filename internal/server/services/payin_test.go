package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geotrade/marketplace/internal/logging"
	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/clients"
	"github.com/geotrade/marketplace/internal/server/models"
)

type payinEnv struct {
	svc      *PayInService
	rm       *fakeRepoManager
	sessions *fakeSession
	payment  *fakePayment
}

func newPayinEnv(t *testing.T) *payinEnv {
	t.Helper()
	rm := newFakeRepoManager()
	sessions := newFakeSession()
	payment := &fakePayment{}
	svc := NewPayInService(nil, rm, payment, sessions, logging.NewNop())
	return &payinEnv{svc: svc, rm: rm, sessions: sessions, payment: payment}
}

func (e *payinEnv) seedOrder(t *testing.T, accountKey uuid.UUID) (*models.Order, string) {
	t.Helper()
	ctx := context.Background()

	order := &models.Order{
		Key:        uuid.New(),
		AccountKey: accountKey,
		CartKey:    uuid.New(),
		Status:     models.OrderStatusCreated,
		TotalPrice: decimal.NewFromInt(124),
		Currency:   "EUR",
	}
	_, err := e.rm.orders.Create(ctx, order)
	require.NoError(t, err)

	cart := &models.Cart{Key: uuid.New(), AccountKey: &accountKey, Status: models.CartStatusOpen}
	_, err = e.rm.carts.Create(ctx, cart)
	require.NoError(t, err)

	token, err := e.sessions.Bind(ctx, cart.Key.String())
	require.NoError(t, err)
	return order, token
}

func TestCreateBankwire_SuccessResetsCart(t *testing.T) {
	env := newPayinEnv(t)
	ctx := context.Background()
	accountKey := uuid.New()
	order, token := env.seedOrder(t, accountKey)

	env.payment.bankwireResult = &clients.PayInResult{
		ProviderID:    "p-1",
		Status:        models.TransactionStatusCreated,
		WireReference: "REF-42",
	}

	before, _ := env.sessions.Resolve(ctx, token)

	payin, err := env.svc.CreateBankwire(ctx, accountKey, order.Key, token)
	require.NoError(t, err)

	assert.Equal(t, models.PayInKindBankwire, payin.Kind)
	assert.Equal(t, "REF-42", payin.WireReference)
	assert.True(t, payin.Amount.Equal(order.TotalPrice))

	after, err := env.sessions.Resolve(ctx, token)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestCreateBankwire_FailedLeavesCart(t *testing.T) {
	env := newPayinEnv(t)
	ctx := context.Background()
	accountKey := uuid.New()
	order, token := env.seedOrder(t, accountKey)

	env.payment.bankwireResult = &clients.PayInResult{
		ProviderID: "p-1",
		Status:     models.TransactionStatusFailed,
	}

	before, _ := env.sessions.Resolve(ctx, token)

	payin, err := env.svc.CreateBankwire(ctx, accountKey, order.Key, token)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, payin.Status)

	after, _ := env.sessions.Resolve(ctx, token)
	assert.Equal(t, before, after)
}

func TestCreateCardDirect_SecureModeLeavesCart(t *testing.T) {
	env := newPayinEnv(t)
	ctx := context.Background()
	accountKey := uuid.New()
	order, token := env.seedOrder(t, accountKey)

	// 3-D-Secure pending: no execution timestamp yet.
	env.payment.cardResult = &clients.PayInResult{
		ProviderID:            "p-2",
		Status:                models.TransactionStatusCreated,
		SecureModeRedirectURL: "https://3ds.example.com/redirect",
	}

	before, _ := env.sessions.Resolve(ctx, token)

	payin, err := env.svc.CreateCardDirect(ctx, accountKey, order.Key,
		&CardDetails{CardID: "card-1", ReturnURL: "https://shop/return"}, token)
	require.NoError(t, err)

	assert.Equal(t, "https://3ds.example.com/redirect", payin.SecureModeRedirectURL)

	// Cart untouched so the client can retry after the redirect.
	after, err := env.sessions.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCreateCardDirect_ExecutedResetsCart(t *testing.T) {
	env := newPayinEnv(t)
	ctx := context.Background()
	accountKey := uuid.New()
	order, token := env.seedOrder(t, accountKey)

	executedOn := time.Now()
	env.payment.cardResult = &clients.PayInResult{
		ProviderID: "p-3",
		Status:     models.TransactionStatusSucceeded,
		ExecutedOn: &executedOn,
	}

	before, _ := env.sessions.Resolve(ctx, token)

	_, err := env.svc.CreateCardDirect(ctx, accountKey, order.Key, &CardDetails{CardID: "card-1"}, token)
	require.NoError(t, err)

	after, _ := env.sessions.Resolve(ctx, token)
	assert.NotEqual(t, before, after)
}

func TestCreateBankwire_ProviderError(t *testing.T) {
	env := newPayinEnv(t)
	ctx := context.Background()
	accountKey := uuid.New()
	order, token := env.seedOrder(t, accountKey)

	env.payment.payinErr = assert.AnError

	_, err := env.svc.CreateBankwire(ctx, accountKey, order.Key, token)

	var me *msg.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, msg.CodePaymentProvider, me.Code)
	assert.Empty(t, env.rm.payins.payins)
}

func TestCreateBankwire_ForeignOrderIsNotFound(t *testing.T) {
	env := newPayinEnv(t)
	ctx := context.Background()
	order, token := env.seedOrder(t, uuid.New())

	env.payment.bankwireResult = &clients.PayInResult{Status: models.TransactionStatusCreated}

	_, err := env.svc.CreateBankwire(ctx, uuid.New(), order.Key, token)
	assert.Error(t, err)
}
