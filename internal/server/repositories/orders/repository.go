package orders

import (
	"context"

	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts the order and its item rows. A unique index on cart_key
	// guarantees at most one order per cart.
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOne(ctx context.Context, accountKey, orderKey uuid.UUID) (*models.Order, error)
	FindAll(ctx context.Context, accountKey uuid.UUID, offset, limit int) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, orderKey uuid.UUID, status models.OrderStatus) error
}
