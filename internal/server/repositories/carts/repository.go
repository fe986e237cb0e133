package carts

import (
	"context"

	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	// FindOne returns the cart with its items. Quotations and catalogue data
	// are not stored; the service layer attaches them.
	FindOne(ctx context.Context, cartKey uuid.UUID) (*models.Cart, error)
	SetAccount(ctx context.Context, cartKey, accountKey uuid.UUID) error
	// MarkCheckedOut freezes an OPEN cart. Returns ErrorNotFound when the
	// cart is absent or already checked out.
	MarkCheckedOut(ctx context.Context, cartKey uuid.UUID) error
	AddItem(ctx context.Context, item *models.CartItem, cartKey uuid.UUID) error
	RemoveItem(ctx context.Context, cartKey, itemKey uuid.UUID) error
	ClearItems(ctx context.Context, cartKey uuid.UUID) error
}
