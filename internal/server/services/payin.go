package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/logging"
	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/clients"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/geotrade/marketplace/internal/server/repositories/repomanager"
	"github.com/geotrade/marketplace/internal/server/session"
)

const fulfillmentTimeout = 30 * time.Second

// CardDetails carries the tokenized card reference for a card-direct
// payment. Raw card data never reaches the gateway.
type CardDetails struct {
	CardID    string
	ReturnURL string
}

// PayInService creates payment transactions for orders and applies the cart
// reset rules tied to each payment method.
type PayInService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	payment     clients.PaymentClient
	sessions    session.Store
	logger      logging.Logger
}

func NewPayInService(db *sql.DB, m repomanager.RepositoryManager, payment clients.PaymentClient,
	sessions session.Store, logger logging.Logger) *PayInService {
	return &PayInService{
		db:          db,
		repomanager: m,
		payment:     payment,
		sessions:    sessions,
		logger:      logger,
	}
}

// CreateBankwire creates a bankwire pay-in for an order. The response
// carries the wire reference the consumer must include with the transfer.
// The session cart is reset unless the provider reports FAILED.
func (s *PayInService) CreateBankwire(ctx context.Context, accountKey, orderKey uuid.UUID, token string) (*models.PayIn, error) {
	order, err := s.repomanager.Orders(s.db).FindOne(ctx, accountKey, orderKey)
	if err != nil {
		return nil, err
	}

	result, err := s.payment.CreateBankwirePayIn(ctx, &clients.BankwirePayInRequest{
		ReferenceKey: order.Key.String(),
		CustomerKey:  accountKey.String(),
		Amount:       order.TotalPrice,
		Currency:     order.Currency,
	})
	if err != nil {
		s.logger.Error(ctx, "bankwire pay-in failed", "order", orderKey, "error", err)
		return nil, msg.New(msg.CodePaymentProvider, "Payment provider rejected the request")
	}

	payin, err := s.store(ctx, order, models.PayInKindBankwire, result)
	if err != nil {
		return nil, err
	}

	if result.Status != models.TransactionStatusFailed {
		s.resetCart(ctx, token, accountKey)
		s.startFulfillment(order.Key, payin.Key)
	}
	return payin, nil
}

// CreateCardDirect creates a card pay-in. When the provider demands
// 3-D-Secure validation the redirect URL is returned and the session cart
// is left untouched so the client can retry after the redirect.
func (s *PayInService) CreateCardDirect(ctx context.Context, accountKey, orderKey uuid.UUID, card *CardDetails, token string) (*models.PayIn, error) {
	order, err := s.repomanager.Orders(s.db).FindOne(ctx, accountKey, orderKey)
	if err != nil {
		return nil, err
	}

	result, err := s.payment.CreateCardDirectPayIn(ctx, &clients.CardDirectPayInRequest{
		ReferenceKey: order.Key.String(),
		CustomerKey:  accountKey.String(),
		Amount:       order.TotalPrice,
		Currency:     order.Currency,
		CardID:       card.CardID,
		ReturnURL:    card.ReturnURL,
	})
	if err != nil {
		s.logger.Error(ctx, "card pay-in failed", "order", orderKey, "error", err)
		return nil, msg.New(msg.CodePaymentProvider, "Payment provider rejected the request")
	}

	payin, err := s.store(ctx, order, models.PayInKindCardDirect, result)
	if err != nil {
		return nil, err
	}

	executed := result.ExecutedOn != nil && result.Status == models.TransactionStatusSucceeded
	if executed {
		s.resetCart(ctx, token, accountKey)
	}
	if result.Status != models.TransactionStatusFailed {
		s.startFulfillment(order.Key, payin.Key)
	}
	return payin, nil
}

func (s *PayInService) store(ctx context.Context, order *models.Order, kind models.PayInKind, result *clients.PayInResult) (*models.PayIn, error) {
	payin := &models.PayIn{
		Key:                   uuid.New(),
		OrderKey:              order.Key,
		AccountKey:            order.AccountKey,
		ProviderID:            result.ProviderID,
		Kind:                  kind,
		Status:                result.Status,
		Amount:                order.TotalPrice,
		Currency:              order.Currency,
		WireReference:         result.WireReference,
		SecureModeRedirectURL: result.SecureModeRedirectURL,
		ExecutedOn:            result.ExecutedOn,
	}

	created, err := s.repomanager.PayIns(s.db).Create(ctx, payin)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return created, nil
}

// resetCart points the session at a fresh cart after a successful payment
// hand-off. Failures are logged, not surfaced: the payment already exists.
func (s *PayInService) resetCart(ctx context.Context, token string, accountKey uuid.UUID) {
	if token == "" {
		return
	}

	fresh := &models.Cart{Key: uuid.New(), AccountKey: &accountKey, Status: models.CartStatusOpen}
	if _, err := s.repomanager.Carts(s.db).Create(ctx, fresh); err != nil {
		s.logger.Error(ctx, "cart reset failed", "error", err)
		return
	}
	if err := s.sessions.Rebind(ctx, token, fresh.Key.String()); err != nil {
		s.logger.Error(ctx, "cart rebind failed", "error", err)
	}
}

// startFulfillment registers the order-fulfillment hand-off. Settlement is
// confirmed asynchronously by a provider webhook; the goroutine only moves
// the order to PENDING so operators can see the hand-off happened.
func (s *PayInService) startFulfillment(orderKey, payinKey uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fulfillmentTimeout)
		defer cancel()

		err := s.repomanager.Orders(s.db).UpdateStatus(ctx, orderKey, models.OrderStatusPending)
		if err != nil {
			s.logger.Error(ctx, "fulfillment registration failed", "order", orderKey, "payin", payinKey, "error", err)
			return
		}
		s.logger.Info(ctx, "order fulfillment started", "order", orderKey, "payin", payinKey)
	}()
}

// PayIn returns one of the account's pay-ins.
func (s *PayInService) PayIn(ctx context.Context, accountKey, payinKey uuid.UUID) (*models.PayIn, error) {
	return s.repomanager.PayIns(s.db).FindOne(ctx, accountKey, payinKey)
}

// PayIns lists the account's pay-ins.
func (s *PayInService) PayIns(ctx context.Context, accountKey uuid.UUID, offset, limit int) ([]*models.PayIn, error) {
	return s.repomanager.PayIns(s.db).FindAll(ctx, accountKey, offset, limit)
}
