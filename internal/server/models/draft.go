package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DraftStatus enumerates the asset draft publication workflow states.
type DraftStatus string

const (
	DraftStatusDraft                 DraftStatus = "DRAFT"
	DraftStatusPendingProviderReview DraftStatus = "PENDING_PROVIDER_REVIEW"
	DraftStatusPendingHelpdeskReview DraftStatus = "PENDING_HELPDESK_REVIEW"
	DraftStatusPublished             DraftStatus = "PUBLISHED"
)

// Mutable reports whether a draft in this status accepts updates, resource
// uploads, and submission.
func (s DraftStatus) Mutable() bool {
	return s == DraftStatusDraft
}

// ResourceCategory distinguishes the role of an uploaded draft resource.
type ResourceCategory string

const (
	ResourceCategoryAsset      ResourceCategory = "ASSET"
	ResourceCategoryAdditional ResourceCategory = "ADDITIONAL"
	ResourceCategoryContract   ResourceCategory = "CONTRACT"
)

// AssetResource is an uploaded file attached to a draft. The bytes live in
// object storage under StorageKey.
type AssetResource struct {
	Key         uuid.UUID
	DraftKey    uuid.UUID
	Category    ResourceCategory
	FileName    string
	Size        int64
	ContentType string
	StorageKey  string
	CreatedAt   time.Time
}

// PricingModel is one way a published asset can be priced. The quotation
// engine interprets Type when computing effective prices.
type PricingModel struct {
	Key      uuid.UUID
	Type     PricingModelType
	Price    decimal.Decimal
	Currency string
}

type PricingModelType string

const (
	PricingFixed          PricingModelType = "FIXED"
	PricingFixedPerRows   PricingModelType = "FIXED_PER_ROWS"
	PricingFreeOpenData   PricingModelType = "FREE"
	PricingPerCallSubject PricingModelType = "PER_CALL"
)

// AssetDraft is a provider's in-progress catalogue item.
type AssetDraft struct {
	ID              int64
	Key             uuid.UUID
	OwnerKey        uuid.UUID
	PublisherKey    uuid.UUID
	Status          DraftStatus
	Title           string
	Description     string
	AssetType       string
	RejectionReason string
	Resources       []AssetResource
	PricingModels   []PricingModel
	CreatedAt       time.Time
	ModifiedAt      time.Time
	DeletedAt       *time.Time
}
