package models

import (
	"time"

	"github.com/google/uuid"
)

// ContractStatus enumerates the provider contract template lifecycle.
type ContractStatus string

const (
	ContractStatusDraft    ContractStatus = "DRAFT"
	ContractStatusActive   ContractStatus = "ACTIVE"
	ContractStatusInactive ContractStatus = "INACTIVE"
)

// MasterContract is a platform-owned legal template. Providers derive their
// own templates from an active master and cannot modify it.
type MasterContract struct {
	ID        int64
	Key       uuid.UUID
	Title     string
	Body      string
	Version   int
	Active    bool
	CreatedAt time.Time
}

// ContractTemplate is a provider's versioned legal document. At most one
// template per provider is ACTIVE at any time.
type ContractTemplate struct {
	ID          int64
	Key         uuid.UUID
	ProviderKey uuid.UUID
	MasterKey   uuid.UUID
	Title       string
	Body        string
	Version     int
	Status      ContractStatus
	CreatedAt   time.Time
	ModifiedAt  time.Time
}
