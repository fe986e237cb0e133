package web

import (
	"context"

	"github.com/google/uuid"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/geotrade/marketplace/internal/server/repositories/drafts"
	"github.com/geotrade/marketplace/internal/server/services"
)

// Stubs cover only the methods a test overrides; everything else reports a
// missing record.

type stubAccounts struct {
	register func(ctx context.Context, email, password string) (*models.Account, error)
	login    func(ctx context.Context, email, password string) (string, error)
	profile  func(ctx context.Context, accountKey uuid.UUID) (*models.Account, error)
}

func (s *stubAccounts) Register(ctx context.Context, email, password string) (*models.Account, error) {
	if s.register == nil {
		return nil, common.ErrorNotFound
	}
	return s.register(ctx, email, password)
}

func (s *stubAccounts) Login(ctx context.Context, email, password string) (string, error) {
	if s.login == nil {
		return "", common.ErrorNotFound
	}
	return s.login(ctx, email, password)
}

func (s *stubAccounts) Profile(ctx context.Context, accountKey uuid.UUID) (*models.Account, error) {
	if s.profile == nil {
		return nil, common.ErrorNotFound
	}
	return s.profile(ctx, accountKey)
}

type stubVerification struct {
	VerificationService
	createDocument func(ctx context.Context, customerKey uuid.UUID, customerType models.CustomerType) (*models.KycDocument, error)
}

func (s *stubVerification) CreateDocument(ctx context.Context, customerKey uuid.UUID, customerType models.CustomerType) (*models.KycDocument, error) {
	if s.createDocument == nil {
		return nil, common.ErrorNotFound
	}
	return s.createDocument(ctx, customerKey, customerType)
}

type stubCarts struct {
	resolve    func(ctx context.Context, token string) (*models.Cart, string, error)
	addItem    func(ctx context.Context, token string, item *models.CartItem) (*models.Cart, string, error)
	removeItem func(ctx context.Context, token string, itemKey uuid.UUID) (*models.Cart, string, error)
	clear      func(ctx context.Context, token string) (*models.Cart, string, error)
}

func (s *stubCarts) Resolve(ctx context.Context, token string) (*models.Cart, string, error) {
	if s.resolve == nil {
		return nil, "", common.ErrorInternal
	}
	return s.resolve(ctx, token)
}

func (s *stubCarts) AddItem(ctx context.Context, token string, item *models.CartItem) (*models.Cart, string, error) {
	if s.addItem == nil {
		return nil, "", common.ErrorInternal
	}
	return s.addItem(ctx, token, item)
}

func (s *stubCarts) RemoveItem(ctx context.Context, token string, itemKey uuid.UUID) (*models.Cart, string, error) {
	if s.removeItem == nil {
		return nil, "", common.ErrorInternal
	}
	return s.removeItem(ctx, token, itemKey)
}

func (s *stubCarts) Clear(ctx context.Context, token string) (*models.Cart, string, error) {
	if s.clear == nil {
		return nil, "", common.ErrorInternal
	}
	return s.clear(ctx, token)
}

type stubCheckout struct {
	checkout func(ctx context.Context, token string, accountKey uuid.UUID) (*models.Order, error)
	order    func(ctx context.Context, accountKey, orderKey uuid.UUID) (*models.Order, error)
	orders   func(ctx context.Context, accountKey uuid.UUID, offset, limit int) ([]*models.Order, error)
}

func (s *stubCheckout) Checkout(ctx context.Context, token string, accountKey uuid.UUID) (*models.Order, error) {
	if s.checkout == nil {
		return nil, common.ErrorNotFound
	}
	return s.checkout(ctx, token, accountKey)
}

func (s *stubCheckout) Order(ctx context.Context, accountKey, orderKey uuid.UUID) (*models.Order, error) {
	if s.order == nil {
		return nil, common.ErrorNotFound
	}
	return s.order(ctx, accountKey, orderKey)
}

func (s *stubCheckout) Orders(ctx context.Context, accountKey uuid.UUID, offset, limit int) ([]*models.Order, error) {
	if s.orders == nil {
		return nil, common.ErrorNotFound
	}
	return s.orders(ctx, accountKey, offset, limit)
}

type stubDrafts struct {
	DraftService
	create func(ctx context.Context, ownerKey, publisherKey uuid.UUID, cmd *services.DraftCommand) (*models.AssetDraft, error)
	list   func(ctx context.Context, publisherKey uuid.UUID, q drafts.Query) ([]*models.AssetDraft, error)
}

func (s *stubDrafts) Create(ctx context.Context, ownerKey, publisherKey uuid.UUID, cmd *services.DraftCommand) (*models.AssetDraft, error) {
	if s.create == nil {
		return nil, common.ErrorNotFound
	}
	return s.create(ctx, ownerKey, publisherKey, cmd)
}

func (s *stubDrafts) FindAll(ctx context.Context, publisherKey uuid.UUID, q drafts.Query) ([]*models.AssetDraft, error) {
	if s.list == nil {
		return nil, common.ErrorNotFound
	}
	return s.list(ctx, publisherKey, q)
}
