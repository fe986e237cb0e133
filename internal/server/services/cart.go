package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/logging"
	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/clients"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/geotrade/marketplace/internal/server/repositories/repomanager"
	"github.com/geotrade/marketplace/internal/server/session"
)

// CartService manages per-session shopping carts. Every read and mutation
// returns the cart enriched with live catalogue data and freshly computed
// quotations.
type CartService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    session.Store
	catalogue   clients.CatalogueClient
	quotations  *QuotationService
	logger      logging.Logger
}

func NewCartService(db *sql.DB, m repomanager.RepositoryManager, sessions session.Store,
	catalogue clients.CatalogueClient, quotations *QuotationService, logger logging.Logger) *CartService {
	return &CartService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		catalogue:   catalogue,
		quotations:  quotations,
		logger:      logger,
	}
}

// Resolve maps a session token to its cart, creating both when the token is
// absent or no longer resolves. The (possibly new) token is returned with
// the enriched cart.
func (s *CartService) Resolve(ctx context.Context, token string) (*models.Cart, string, error) {
	repo := s.repomanager.Carts(s.db)

	if token != "" {
		cartKey, err := s.sessions.Resolve(ctx, token)
		if err == nil {
			key, parseErr := uuid.Parse(cartKey)
			if parseErr != nil {
				return nil, "", common.ErrorInternal
			}
			cart, err := repo.FindOne(ctx, key)
			if err == nil {
				if err := s.enrich(ctx, cart); err != nil {
					return nil, "", err
				}
				return cart, token, nil
			}
			if !errors.Is(err, common.ErrorNotFound) {
				return nil, "", common.ErrorInternal
			}
		} else if !errors.Is(err, common.ErrInvalidToken) {
			return nil, "", common.ErrorInternal
		}
	}

	cart, err := repo.Create(ctx, &models.Cart{Key: uuid.New(), Status: models.CartStatusOpen})
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	newToken, err := s.sessions.Bind(ctx, cart.Key.String())
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	return cart, newToken, nil
}

// AddItem appends a catalogue asset to the session's cart and returns the
// refreshed cart.
func (s *CartService) AddItem(ctx context.Context, token string, item *models.CartItem) (*models.Cart, string, error) {
	cart, token, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if cart.Status != models.CartStatusOpen {
		return nil, "", msg.New(msg.CodeCartCheckedOut, "Cart has already been checked out")
	}

	item.Key = uuid.New()
	if err := s.repomanager.Carts(s.db).AddItem(ctx, item, cart.Key); err != nil {
		return nil, "", common.ErrorInternal
	}
	return s.refresh(ctx, cart.Key, token)
}

// RemoveItem deletes one item and returns the refreshed cart.
func (s *CartService) RemoveItem(ctx context.Context, token string, itemKey uuid.UUID) (*models.Cart, string, error) {
	cart, token, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if cart.Status != models.CartStatusOpen {
		return nil, "", msg.New(msg.CodeCartCheckedOut, "Cart has already been checked out")
	}

	if err := s.repomanager.Carts(s.db).RemoveItem(ctx, cart.Key, itemKey); err != nil {
		return nil, "", err
	}
	return s.refresh(ctx, cart.Key, token)
}

// Clear removes all items and returns the refreshed cart.
func (s *CartService) Clear(ctx context.Context, token string) (*models.Cart, string, error) {
	cart, token, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if cart.Status != models.CartStatusOpen {
		return nil, "", msg.New(msg.CodeCartCheckedOut, "Cart has already been checked out")
	}

	if err := s.repomanager.Carts(s.db).ClearItems(ctx, cart.Key); err != nil {
		return nil, "", common.ErrorInternal
	}
	return s.refresh(ctx, cart.Key, token)
}

func (s *CartService) refresh(ctx context.Context, cartKey uuid.UUID, token string) (*models.Cart, string, error) {
	cart, err := s.repomanager.Carts(s.db).FindOne(ctx, cartKey)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	if err := s.enrich(ctx, cart); err != nil {
		return nil, "", err
	}
	return cart, token, nil
}

// enrich attaches live catalogue items and computed quotations to every
// cart item. Quotation failures surface with their own code; any other
// enrichment failure collapses to a generic internal error so storage
// details never leak.
func (s *CartService) enrich(ctx context.Context, cart *models.Cart) error {
	if len(cart.Items) == 0 {
		return nil
	}

	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.AssetID)
	}

	catalogueItems, err := s.catalogue.FindAllByID(ctx, ids)
	if err != nil {
		s.logger.Error(ctx, "cart enrichment failed", "cart", cart.Key, "error", err)
		return common.ErrorInternal
	}

	byID := make(map[string]*models.CatalogueItem, len(catalogueItems))
	for i := range catalogueItems {
		byID[catalogueItems[i].ID] = &catalogueItems[i]
	}

	for i := range cart.Items {
		item := &cart.Items[i]

		asset, ok := byID[item.AssetID]
		if !ok {
			s.logger.Error(ctx, "cart item references unknown asset", "cart", cart.Key, "asset", item.AssetID)
			return common.ErrorInternal
		}
		item.Asset = asset

		pm, err := s.quotations.SelectModel(asset, item.PricingModelKey.String())
		if err != nil {
			return err
		}
		quotation, err := s.quotations.Compute(pm, item.QuotationRows, item.QuotationCalls)
		if err != nil {
			return err
		}
		item.Quotation = quotation
	}
	return nil
}
