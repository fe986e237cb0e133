// Package drafts persists provider asset drafts and their attached resources.
package drafts

import (
	"context"

	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/google/uuid"
)

// Query filters draft listings. Zero values mean "no filter".
type Query struct {
	Statuses []models.DraftStatus
	Offset   int
	Limit    int
}

type Repository interface {
	Create(ctx context.Context, draft *models.AssetDraft) (*models.AssetDraft, error)
	Update(ctx context.Context, draft *models.AssetDraft) (*models.AssetDraft, error)
	// UpdateStatus changes the status only when the draft currently has one
	// of the expected statuses. Returns ErrorNotFound when no row matched.
	UpdateStatus(ctx context.Context, publisherKey, draftKey uuid.UUID, expected []models.DraftStatus, next models.DraftStatus, rejectionReason string) error
	// FindOne scopes the lookup to the publisher: a draft owned by another
	// publisher is indistinguishable from a missing one.
	FindOne(ctx context.Context, publisherKey, draftKey uuid.UUID) (*models.AssetDraft, error)
	FindAll(ctx context.Context, publisherKey uuid.UUID, q Query) ([]*models.AssetDraft, error)
	// FindAllPending lists drafts awaiting review in the given status,
	// regardless of publisher. Used by the helpdesk surface.
	FindAllPending(ctx context.Context, status models.DraftStatus, offset, limit int) ([]*models.AssetDraft, error)
	SoftDelete(ctx context.Context, publisherKey, draftKey uuid.UUID) error
	AddResource(ctx context.Context, resource *models.AssetResource) error
	FindResources(ctx context.Context, draftKey uuid.UUID) ([]models.AssetResource, error)
	FindResource(ctx context.Context, draftKey, resourceKey uuid.UUID) (*models.AssetResource, error)
}
