package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartStatus tracks whether a cart can still be mutated. A checked-out cart
// is frozen forever; the session slot is pointed at a fresh cart instead.
type CartStatus string

const (
	CartStatusOpen       CartStatus = "OPEN"
	CartStatusCheckedOut CartStatus = "CHECKED_OUT"
)

// Quotation is an effective price computed for a cart item at read time.
// Quotations are never persisted: pricing models may depend on time-varying
// parameters.
type Quotation struct {
	TotalPriceExclTax decimal.Decimal `json:"totalPriceExcludingTax"`
	Tax               decimal.Decimal `json:"tax"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
	Currency          string          `json:"currency"`
}

// CartItem references a catalogue asset plus the chosen pricing model and
// per-item quotation parameters.
type CartItem struct {
	ID              int64
	Key             uuid.UUID
	AssetID         string
	PricingModelKey uuid.UUID
	// SystemParameters chosen by the consumer (e.g. rows, calls) feeding the
	// quotation engine.
	QuotationRows  int64
	QuotationCalls int64

	// Enriched at read time, never persisted.
	Asset     *CatalogueItem `json:"asset,omitempty"`
	Quotation *Quotation     `json:"quotation,omitempty"`
}

// Cart holds items selected by a browser session until it is linked to an
// authenticated account at checkout.
type Cart struct {
	ID         int64
	Key        uuid.UUID
	AccountKey *uuid.UUID
	Status     CartStatus
	Items      []CartItem
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// CatalogueItem is the slice of catalogue data the gateway re-exposes on
// cart reads. The catalogue service owns the full record.
type CatalogueItem struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	PublisherKey  uuid.UUID       `json:"publisherKey"`
	PricingModels []PricingModel  `json:"pricingModels"`
	Geometry      json.RawMessage `json:"geometry,omitempty"`
}
