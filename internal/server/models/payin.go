package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus mirrors the payment provider's transaction states.
type TransactionStatus string

const (
	TransactionStatusCreated   TransactionStatus = "CREATED"
	TransactionStatusSucceeded TransactionStatus = "SUCCEEDED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// PayInKind distinguishes the supported payment methods.
type PayInKind string

const (
	PayInKindBankwire   PayInKind = "BANKWIRE"
	PayInKindCardDirect PayInKind = "CARD_DIRECT"
)

// PayIn is a payment-provider-tracked financial transaction linked to an
// order. Status changes after creation arrive asynchronously via webhook and
// are only read here.
type PayIn struct {
	ID         int64
	Key        uuid.UUID
	OrderKey   uuid.UUID
	AccountKey uuid.UUID
	ProviderID string
	Kind       PayInKind
	Status     TransactionStatus
	Amount     decimal.Decimal
	Currency   string

	// WireReference is set for bankwire payments: the reference the consumer
	// must include with the transfer.
	WireReference string
	// SecureModeRedirectURL is set when a card payment requires 3-D-Secure
	// validation. Funds are not captured until the redirect flow completes.
	SecureModeRedirectURL string

	ExecutedOn *time.Time
	CreatedAt  time.Time
}
