package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/dbx"
	"github.com/geotrade/marketplace/internal/logging"
	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/lease"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/geotrade/marketplace/internal/server/repositories/repomanager"
	"github.com/geotrade/marketplace/internal/server/session"
)

// CheckoutService converts a session's cart into an immutable order. Two
// layers guard against duplicate orders: a redis lease per cart key, and a
// unique index on orders.cart_key.
type CheckoutService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    session.Store
	carts       *CartService
	guard       lease.Manager
	logger      logging.Logger
}

func NewCheckoutService(db *sql.DB, m repomanager.RepositoryManager, sessions session.Store,
	carts *CartService, guard lease.Manager, logger logging.Logger) *CheckoutService {
	return &CheckoutService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		carts:       carts,
		guard:       guard,
		logger:      logger,
	}
}

// Checkout creates an order from the session's cart, freezes the cart and
// points the session at a fresh empty one. The same token remains valid, so
// a client retrying with a stale view cannot create a second order.
func (s *CheckoutService) Checkout(ctx context.Context, token string, accountKey uuid.UUID) (*models.Order, error) {
	cart, token, err := s.carts.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	if cart.Status != models.CartStatusOpen {
		return nil, msg.New(msg.CodeCartCheckedOut, "Cart has already been checked out")
	}
	if len(cart.Items) == 0 {
		return nil, msg.New(msg.CodeCartEmpty, "Cannot check out an empty cart")
	}

	cartRepo := s.repomanager.Carts(s.db)

	if cart.AccountKey == nil {
		if err := cartRepo.SetAccount(ctx, cart.Key, accountKey); err != nil {
			return nil, common.ErrorInternal
		}
	} else if *cart.AccountKey != accountKey {
		return nil, common.ErrorForbidden
	}

	ok, err := s.guard.Acquire(ctx, cart.Key.String(), accountKey.String())
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, msg.New(msg.CodeDuplicateOrder, "An order for this cart already exists")
	}

	order := buildOrder(cart, accountKey)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Carts(tx).MarkCheckedOut(ctx, cart.Key); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return msg.New(msg.CodeCartCheckedOut, "Cart has already been checked out")
			}
			return err
		}

		created, err := s.repomanager.Orders(tx).Create(ctx, order)
		if err != nil {
			return err
		}
		order = created
		return nil
	})
	if err != nil {
		var me *msg.Error
		if errors.As(err, &me) {
			return nil, me
		}
		s.logger.Error(ctx, "checkout failed", "cart", cart.Key, "error", err)
		return nil, common.ErrorInternal
	}

	// Point the session at a fresh cart; the old one is frozen.
	if err := s.resetSession(ctx, token, accountKey); err != nil {
		s.logger.Error(ctx, "cart reset after checkout failed", "cart", cart.Key, "error", err)
	}

	return order, nil
}

func buildOrder(cart *models.Cart, accountKey uuid.UUID) *models.Order {
	order := &models.Order{
		Key:        uuid.New(),
		AccountKey: accountKey,
		CartKey:    cart.Key,
		Status:     models.OrderStatusCreated,
		TotalPrice: decimal.Zero,
	}

	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			AssetID:         item.AssetID,
			AssetTitle:      item.Asset.Title,
			PricingModelKey: item.PricingModelKey,
			TotalPrice:      item.Quotation.TotalPrice,
			Currency:        item.Quotation.Currency,
		})
		order.TotalPrice = order.TotalPrice.Add(item.Quotation.TotalPrice)
		order.Currency = item.Quotation.Currency
	}
	return order
}

// resetSession rebinds the session token to a new empty cart owned by the
// same account.
func (s *CheckoutService) resetSession(ctx context.Context, token string, accountKey uuid.UUID) error {
	fresh := &models.Cart{Key: uuid.New(), AccountKey: &accountKey, Status: models.CartStatusOpen}
	if _, err := s.repomanager.Carts(s.db).Create(ctx, fresh); err != nil {
		return err
	}
	return s.sessions.Rebind(ctx, token, fresh.Key.String())
}

// Order returns one of the account's orders.
func (s *CheckoutService) Order(ctx context.Context, accountKey, orderKey uuid.UUID) (*models.Order, error) {
	return s.repomanager.Orders(s.db).FindOne(ctx, accountKey, orderKey)
}

// Orders lists the account's orders.
func (s *CheckoutService) Orders(ctx context.Context, accountKey uuid.UUID, offset, limit int) ([]*models.Order, error) {
	return s.repomanager.Orders(s.db).FindAll(ctx, accountKey, offset, limit)
}
