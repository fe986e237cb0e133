package accounts

import (
	"context"

	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByKey(ctx context.Context, key uuid.UUID) (*models.Account, error)
}
