// Package kyc persists the local mirror of KYC documents and UBO
// declarations tracked at the external verification provider.
package kyc

import (
	"context"

	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	CreateDocument(ctx context.Context, doc *models.KycDocument) (*models.KycDocument, error)
	FindOneDocument(ctx context.Context, customerKey, docKey uuid.UUID) (*models.KycDocument, error)
	FindAllDocuments(ctx context.Context, customerKey uuid.UUID, customerType models.CustomerType, offset, limit int) ([]*models.KycDocument, error)
	// UpdateDocumentStatus transitions the status only when the document is
	// currently in one of the expected statuses.
	UpdateDocumentStatus(ctx context.Context, customerKey, docKey uuid.UUID, expected []models.KycStatus, next models.KycStatus) error
	IncrementPageCount(ctx context.Context, docKey uuid.UUID) error

	CreateDeclaration(ctx context.Context, dec *models.UboDeclaration) (*models.UboDeclaration, error)
	FindOneDeclaration(ctx context.Context, customerKey, decKey uuid.UUID) (*models.UboDeclaration, error)
	FindAllDeclarations(ctx context.Context, customerKey uuid.UUID, offset, limit int) ([]*models.UboDeclaration, error)
	UpdateDeclarationStatus(ctx context.Context, customerKey, decKey uuid.UUID, expected []models.KycStatus, next models.KycStatus) error
	AddUbo(ctx context.Context, decKey uuid.UUID, ubo *models.Ubo) error
}
