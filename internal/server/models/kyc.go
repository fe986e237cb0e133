package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomerType separates the two compliance tracks. A caller must hold the
// matching role to operate on documents of a given type.
type CustomerType string

const (
	CustomerTypeConsumer CustomerType = "CONSUMER"
	CustomerTypeProvider CustomerType = "PROVIDER"
)

// KycStatus enumerates the verification lifecycle of a document or
// declaration. Pages/UBOs may be added only while the record is CREATED or
// INCOMPLETE; SUBMITTED is terminal for local mutation.
type KycStatus string

const (
	KycStatusCreated    KycStatus = "CREATED"
	KycStatusIncomplete KycStatus = "INCOMPLETE"
	KycStatusSubmitted  KycStatus = "SUBMITTED"
	KycStatusValidated  KycStatus = "VALIDATED"
	KycStatusRefused    KycStatus = "REFUSED"
)

// Mutable reports whether pages or UBOs may still be added.
func (s KycStatus) Mutable() bool {
	return s == KycStatusCreated || s == KycStatusIncomplete
}

// KycDocument is a per-customer identity-proof record mirrored from the
// verification provider.
type KycDocument struct {
	ID            int64
	Key           uuid.UUID
	ProviderDocID string
	CustomerKey   uuid.UUID
	CustomerType  CustomerType
	Status        KycStatus
	PageCount     int
	RefusedReason string
	CreatedAt     time.Time
	ModifiedAt    time.Time
}

// Ubo is a single declared beneficial owner.
type Ubo struct {
	ID          int64
	FirstName   string
	LastName    string
	Birthday    time.Time
	Nationality string
	Address     string
}

// UboDeclaration collects the beneficial owners of a provider organisation.
type UboDeclaration struct {
	ID            int64
	Key           uuid.UUID
	ProviderDecID string
	CustomerKey   uuid.UUID
	Status        KycStatus
	Ubos          []Ubo
	RefusedReason string
	CreatedAt     time.Time
	ModifiedAt    time.Time
}
