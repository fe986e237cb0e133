// Package contracts persists master contracts and provider contract
// templates. The one-ACTIVE-template-per-provider invariant is enforced both
// here (Publish) and by a partial unique index.
package contracts

import (
	"context"

	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	FindOneMaster(ctx context.Context, key uuid.UUID) (*models.MasterContract, error)
	FindAllMasters(ctx context.Context, activeOnly bool, offset, limit int) ([]*models.MasterContract, error)

	CreateTemplate(ctx context.Context, tpl *models.ContractTemplate) (*models.ContractTemplate, error)
	UpdateTemplate(ctx context.Context, tpl *models.ContractTemplate) (*models.ContractTemplate, error)
	FindOneTemplate(ctx context.Context, providerKey, key uuid.UUID) (*models.ContractTemplate, error)
	FindAllTemplates(ctx context.Context, providerKey uuid.UUID, statuses []models.ContractStatus, offset, limit int) ([]*models.ContractTemplate, error)
	// Deactivate moves the template from ACTIVE to INACTIVE.
	Deactivate(ctx context.Context, providerKey, key uuid.UUID) error
	// DeactivateActive retires whatever template is currently ACTIVE for the
	// provider, if any.
	DeactivateActive(ctx context.Context, providerKey uuid.UUID) error
	// Publish moves a DRAFT template to ACTIVE.
	Publish(ctx context.Context, providerKey, key uuid.UUID) error
	DeleteDraft(ctx context.Context, providerKey, key uuid.UUID) error
}
