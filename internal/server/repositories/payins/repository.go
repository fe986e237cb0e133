package payins

import (
	"context"

	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, payin *models.PayIn) (*models.PayIn, error)
	FindOne(ctx context.Context, accountKey, payinKey uuid.UUID) (*models.PayIn, error)
	FindAll(ctx context.Context, accountKey uuid.UUID, offset, limit int) ([]*models.PayIn, error)
}
