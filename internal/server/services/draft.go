package services

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/logging"
	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/clients"
	"github.com/geotrade/marketplace/internal/server/config"
	"github.com/geotrade/marketplace/internal/server/filestore"
	"github.com/geotrade/marketplace/internal/server/lease"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/geotrade/marketplace/internal/server/repositories/drafts"
	"github.com/geotrade/marketplace/internal/server/repositories/repomanager"
)

// DraftCommand carries the mutable fields of a draft. Owner and publisher
// keys always come from the caller's token, never from the request body.
type DraftCommand struct {
	Title         string
	Description   string
	AssetType     string
	PricingModels []models.PricingModel
	Lock          bool
}

// DraftService drives the provider asset publication workflow: create,
// edit, submit, review and publish.
type DraftService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	locks          lease.Manager
	files          filestore.Store
	catalogue      clients.CatalogueClient
	providerReview bool
	logger         logging.Logger
}

func NewDraftService(db *sql.DB, m repomanager.RepositoryManager, locks lease.Manager,
	files filestore.Store, catalogue clients.CatalogueClient, cfg *config.Config, logger logging.Logger) *DraftService {
	return &DraftService{
		db:             db,
		repomanager:    m,
		locks:          locks,
		files:          files,
		catalogue:      catalogue,
		providerReview: cfg.DraftProviderReview,
		logger:         logger,
	}
}

// Create starts a new draft in DRAFT status. With cmd.Lock the caller also
// takes the edit lease.
func (s *DraftService) Create(ctx context.Context, ownerKey, publisherKey uuid.UUID, cmd *DraftCommand) (*models.AssetDraft, error) {
	draft := &models.AssetDraft{
		Key:           uuid.New(),
		OwnerKey:      ownerKey,
		PublisherKey:  publisherKey,
		Status:        models.DraftStatusDraft,
		Title:         cmd.Title,
		Description:   cmd.Description,
		AssetType:     cmd.AssetType,
		PricingModels: cmd.PricingModels,
	}

	created, err := s.repomanager.Drafts(s.db).Create(ctx, draft)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if cmd.Lock {
		if err := s.acquireLock(ctx, created.Key, ownerKey); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// Update replaces the mutable fields of a DRAFT-status draft.
func (s *DraftService) Update(ctx context.Context, ownerKey, publisherKey, draftKey uuid.UUID, cmd *DraftCommand) (*models.AssetDraft, error) {
	repo := s.repomanager.Drafts(s.db)

	draft, err := repo.FindOne(ctx, publisherKey, draftKey)
	if err != nil {
		return nil, err
	}
	if !draft.Status.Mutable() {
		return nil, msg.New(msg.CodeDraftInvalidStatus, "Draft in status %s cannot be modified", draft.Status)
	}
	if err := s.checkLock(ctx, draftKey, ownerKey); err != nil {
		return nil, err
	}

	draft.Title = cmd.Title
	draft.Description = cmd.Description
	draft.AssetType = cmd.AssetType
	draft.PricingModels = cmd.PricingModels

	updated, err := repo.Update(ctx, draft)
	if err != nil {
		return nil, err
	}

	if cmd.Lock {
		if err := s.acquireLock(ctx, draftKey, ownerKey); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// Submit validates the draft and moves it into review. Validation failures
// are field errors and leave the persisted status untouched.
func (s *DraftService) Submit(ctx context.Context, ownerKey, publisherKey, draftKey uuid.UUID) (*models.AssetDraft, error) {
	repo := s.repomanager.Drafts(s.db)

	draft, err := repo.FindOne(ctx, publisherKey, draftKey)
	if err != nil {
		return nil, err
	}
	if !draft.Status.Mutable() {
		return nil, msg.New(msg.CodeDraftInvalidStatus, "Draft in status %s cannot be submitted", draft.Status)
	}
	if err := s.checkLock(ctx, draftKey, ownerKey); err != nil {
		return nil, err
	}

	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	next := models.DraftStatusPendingHelpdeskReview
	if s.providerReview {
		next = models.DraftStatusPendingProviderReview
	}

	err = repo.UpdateStatus(ctx, publisherKey, draftKey, []models.DraftStatus{models.DraftStatusDraft}, next, "")
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, msg.New(msg.CodeDraftInvalidStatus, "Draft is no longer in a submittable status")
		}
		return nil, err
	}

	// Submission ends the editing session.
	s.locks.Release(ctx, draftKey.String(), ownerKey.String())

	return repo.FindOne(ctx, publisherKey, draftKey)
}

func validateDraft(draft *models.AssetDraft) error {
	var fields []msg.Message

	if draft.Title == "" {
		fields = append(fields, msg.FieldMessage("title", msg.CodeValidation, "Title is required"))
	}
	if draft.Description == "" {
		fields = append(fields, msg.FieldMessage("description", msg.CodeValidation, "Description is required"))
	}
	if len(draft.PricingModels) == 0 {
		fields = append(fields, msg.FieldMessage("pricingModels", msg.CodeValidation, "At least one pricing model is required"))
	}
	if len(draft.Resources) == 0 {
		fields = append(fields, msg.FieldMessage("resources", msg.CodeValidation, "At least one resource must be uploaded"))
	}

	if len(fields) > 0 {
		return msg.Invalid(fields...)
	}
	return nil
}

// AcceptProvider advances a draft from provider review to helpdesk review.
func (s *DraftService) AcceptProvider(ctx context.Context, publisherKey, draftKey uuid.UUID) error {
	return s.transition(ctx, publisherKey, draftKey,
		models.DraftStatusPendingProviderReview, models.DraftStatusPendingHelpdeskReview, "")
}

// RejectProvider returns a draft under provider review to DRAFT with a
// reason. A second reject finds the draft already in DRAFT and fails.
func (s *DraftService) RejectProvider(ctx context.Context, publisherKey, draftKey uuid.UUID, reason string) error {
	return s.transition(ctx, publisherKey, draftKey,
		models.DraftStatusPendingProviderReview, models.DraftStatusDraft, reason)
}

// AcceptHelpdesk publishes a draft: the asset is pushed to the catalogue
// first, then the status moves to PUBLISHED. A catalogue failure leaves
// the draft under helpdesk review so the accept can be retried.
func (s *DraftService) AcceptHelpdesk(ctx context.Context, publisherKey, draftKey uuid.UUID) (*models.AssetDraft, error) {
	repo := s.repomanager.Drafts(s.db)

	draft, err := repo.FindOne(ctx, publisherKey, draftKey)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusPendingHelpdeskReview {
		return nil, msg.New(msg.CodeDraftInvalidStatus,
			"Draft is not in status %s", models.DraftStatusPendingHelpdeskReview)
	}

	item := &models.CatalogueItem{
		ID:            draft.Key.String(),
		Title:         draft.Title,
		Description:   draft.Description,
		PublisherKey:  draft.PublisherKey,
		PricingModels: draft.PricingModels,
	}
	if err := s.catalogue.Publish(ctx, item); err != nil {
		s.logger.Error(ctx, "catalogue publication failed", "draft", draftKey, "error", err)
		return nil, msg.New(msg.CodeCatalogueService, "Catalogue publication failed, draft is still under review")
	}

	err = s.transition(ctx, publisherKey, draftKey,
		models.DraftStatusPendingHelpdeskReview, models.DraftStatusPublished, "")
	if err != nil {
		return nil, err
	}

	draft.Status = models.DraftStatusPublished
	return draft, nil
}

// RejectHelpdesk returns a draft under helpdesk review to DRAFT with a
// reason.
func (s *DraftService) RejectHelpdesk(ctx context.Context, publisherKey, draftKey uuid.UUID, reason string) error {
	return s.transition(ctx, publisherKey, draftKey,
		models.DraftStatusPendingHelpdeskReview, models.DraftStatusDraft, reason)
}

func (s *DraftService) transition(ctx context.Context, publisherKey, draftKey uuid.UUID,
	from, to models.DraftStatus, reason string) error {

	err := s.repomanager.Drafts(s.db).UpdateStatus(ctx, publisherKey, draftKey,
		[]models.DraftStatus{from}, to, reason)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return msg.New(msg.CodeDraftInvalidStatus, "Draft is not in status %s", from)
		}
		return err
	}
	return nil
}

// FindOne returns a draft with its resources, scoped to the publisher.
func (s *DraftService) FindOne(ctx context.Context, publisherKey, draftKey uuid.UUID) (*models.AssetDraft, error) {
	return s.repomanager.Drafts(s.db).FindOne(ctx, publisherKey, draftKey)
}

// FindAll lists the publisher's drafts.
func (s *DraftService) FindAll(ctx context.Context, publisherKey uuid.UUID, q drafts.Query) ([]*models.AssetDraft, error) {
	return s.repomanager.Drafts(s.db).FindAll(ctx, publisherKey, q)
}

// FindAllPendingHelpdesk lists drafts awaiting helpdesk review across all
// publishers.
func (s *DraftService) FindAllPendingHelpdesk(ctx context.Context, offset, limit int) ([]*models.AssetDraft, error) {
	return s.repomanager.Drafts(s.db).FindAllPending(ctx, models.DraftStatusPendingHelpdeskReview, offset, limit)
}

// Delete soft-deletes a draft. Only DRAFT-status drafts can be removed.
func (s *DraftService) Delete(ctx context.Context, ownerKey, publisherKey, draftKey uuid.UUID) error {
	repo := s.repomanager.Drafts(s.db)

	draft, err := repo.FindOne(ctx, publisherKey, draftKey)
	if err != nil {
		return err
	}
	if !draft.Status.Mutable() {
		return msg.New(msg.CodeDraftInvalidStatus, "Draft in status %s cannot be deleted", draft.Status)
	}
	if err := s.checkLock(ctx, draftKey, ownerKey); err != nil {
		return err
	}

	if err := repo.SoftDelete(ctx, publisherKey, draftKey); err != nil {
		return err
	}
	s.locks.Release(ctx, draftKey.String(), ownerKey.String())
	return nil
}

// Lock takes (or refreshes) the edit lease on a draft.
func (s *DraftService) Lock(ctx context.Context, ownerKey, publisherKey, draftKey uuid.UUID) error {
	if _, err := s.repomanager.Drafts(s.db).FindOne(ctx, publisherKey, draftKey); err != nil {
		return err
	}
	return s.acquireLock(ctx, draftKey, ownerKey)
}

// ReleaseLock gives up the edit lease. Releasing a lease held by another
// editor is a locked error; releasing an expired lease is a no-op.
func (s *DraftService) ReleaseLock(ctx context.Context, ownerKey, draftKey uuid.UUID) error {
	holder, err := s.locks.Holder(ctx, draftKey.String())
	if err != nil {
		return common.ErrorInternal
	}
	if holder != "" && holder != ownerKey.String() {
		return msg.New(msg.CodeDraftLocked, "Draft is locked by another editor")
	}

	if _, err := s.locks.Release(ctx, draftKey.String(), ownerKey.String()); err != nil {
		return common.ErrorInternal
	}
	return nil
}

func (s *DraftService) acquireLock(ctx context.Context, draftKey, ownerKey uuid.UUID) error {
	ok, err := s.locks.Acquire(ctx, draftKey.String(), ownerKey.String())
	if err != nil {
		return common.ErrorInternal
	}
	if !ok {
		return msg.New(msg.CodeDraftLocked, "Draft is locked by another editor")
	}
	return nil
}

// checkLock rejects mutation when another editor holds the lease. An
// unlocked draft may be mutated without taking the lease first.
func (s *DraftService) checkLock(ctx context.Context, draftKey, ownerKey uuid.UUID) error {
	holder, err := s.locks.Holder(ctx, draftKey.String())
	if err != nil {
		return common.ErrorInternal
	}
	if holder != "" && holder != ownerKey.String() {
		return msg.New(msg.CodeDraftLocked, "Draft is locked by another editor")
	}
	return nil
}

// allowed MIME types for additional (documentation) resources.
var additionalResourceTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// UploadResource attaches a file to a draft and returns the refreshed
// draft. Contract files must be PDF; the content type is sniffed from the
// bytes, never trusted from the request.
func (s *DraftService) UploadResource(ctx context.Context, ownerKey, publisherKey, draftKey uuid.UUID,
	category models.ResourceCategory, fileName string, data []byte) (*models.AssetDraft, error) {

	repo := s.repomanager.Drafts(s.db)

	draft, err := repo.FindOne(ctx, publisherKey, draftKey)
	if err != nil {
		return nil, err
	}
	if !draft.Status.Mutable() {
		return nil, msg.New(msg.CodeDraftInvalidStatus, "Resources cannot be added in status %s", draft.Status)
	}
	if err := s.checkLock(ctx, draftKey, ownerKey); err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, msg.Invalid(msg.FieldMessage("file", msg.CodeDraftFileMissing, "File is empty"))
	}

	contentType := http.DetectContentType(data)
	switch category {
	case models.ResourceCategoryContract:
		if contentType != "application/pdf" {
			return nil, msg.Invalid(msg.FieldMessage("file", msg.CodeFileTypeNotSupported, "Contract files must be PDF"))
		}
	case models.ResourceCategoryAdditional:
		if !additionalResourceTypes[contentType] {
			return nil, msg.Invalid(msg.FieldMessage("file", msg.CodeFileTypeNotSupported, "File type %s is not supported", contentType))
		}
	}

	storageKey, err := s.files.Put(ctx, "drafts", contentType, data)
	if err != nil {
		s.logger.Error(ctx, "resource upload failed", "draft", draftKey, "error", err)
		return nil, common.ErrorInternal
	}

	resource := &models.AssetResource{
		Key:         uuid.New(),
		DraftKey:    draftKey,
		Category:    category,
		FileName:    fileName,
		Size:        int64(len(data)),
		ContentType: contentType,
		StorageKey:  storageKey,
	}
	if err := repo.AddResource(ctx, resource); err != nil {
		return nil, err
	}

	return repo.FindOne(ctx, publisherKey, draftKey)
}

// DownloadResource streams back an uploaded resource.
func (s *DraftService) DownloadResource(ctx context.Context, publisherKey, draftKey, resourceKey uuid.UUID) (*models.AssetResource, []byte, error) {
	repo := s.repomanager.Drafts(s.db)

	if _, err := repo.FindOne(ctx, publisherKey, draftKey); err != nil {
		return nil, nil, err
	}

	resource, err := repo.FindResource(ctx, draftKey, resourceKey)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.files.Get(ctx, resource.StorageKey)
	if err != nil {
		s.logger.Error(ctx, "resource download failed", "resource", resourceKey, "error", err)
		return nil, nil, common.ErrorInternal
	}
	return resource, data, nil
}

// ImportFromCatalogue starts a new draft from an already-published
// catalogue asset, copying its metadata and pricing models. The created
// draft is returned to the caller.
func (s *DraftService) ImportFromCatalogue(ctx context.Context, ownerKey, publisherKey uuid.UUID, assetID string) (*models.AssetDraft, error) {
	item, err := s.catalogue.FindOne(ctx, assetID)
	if err != nil {
		if clients.IsNotFound(err) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "catalogue lookup failed", "asset", assetID, "error", err)
		return nil, msg.New(msg.CodeCatalogueService, "Catalogue service is unavailable")
	}

	cmd := &DraftCommand{
		Title:         item.Title,
		Description:   item.Description,
		PricingModels: item.PricingModels,
	}
	return s.Create(ctx, ownerKey, publisherKey, cmd)
}
