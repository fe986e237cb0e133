// Package services contains the gateway's business logic: the draft
// publication workflow, cart/checkout sequencing, payments, customer
// verification and contract templates. Services return coded *msg.Error
// values for business failures so the web layer maps them without inspecting
// messages.
package services

import (
	"github.com/shopspring/decimal"

	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/models"
)

// taxRate is the VAT applied to every quotation.
var taxRate = decimal.NewFromFloat(0.24)

// rowBlockSize is the pricing unit for FIXED_PER_ROWS models: the price
// applies per started block of a thousand rows.
const rowBlockSize = 1000

// QuotationService computes effective prices for cart items. Quotations are
// computed on every read and never cached: per-row and per-call models
// depend on parameters the consumer may change at any time.
type QuotationService struct{}

func NewQuotationService() *QuotationService {
	return &QuotationService{}
}

// Compute derives a quotation from a pricing model and the consumer's
// parameters. Unknown model types and missing parameters are business
// errors, not internal ones.
func (s *QuotationService) Compute(pm *models.PricingModel, rows, calls int64) (*models.Quotation, error) {
	var exclTax decimal.Decimal

	switch pm.Type {
	case models.PricingFreeOpenData:
		exclTax = decimal.Zero

	case models.PricingFixed:
		exclTax = pm.Price

	case models.PricingFixedPerRows:
		if rows <= 0 {
			return nil, msg.New(msg.CodeQuotation, "Pricing model requires a positive row count")
		}
		blocks := (rows + rowBlockSize - 1) / rowBlockSize
		exclTax = pm.Price.Mul(decimal.NewFromInt(blocks))

	case models.PricingPerCallSubject:
		if calls <= 0 {
			return nil, msg.New(msg.CodeQuotation, "Pricing model requires a positive call count")
		}
		exclTax = pm.Price.Mul(decimal.NewFromInt(calls))

	default:
		return nil, msg.New(msg.CodeQuotation, "Pricing model type %q is not supported", pm.Type)
	}

	exclTax = exclTax.Round(2)
	tax := exclTax.Mul(taxRate).Round(2)

	return &models.Quotation{
		TotalPriceExclTax: exclTax,
		Tax:               tax,
		TotalPrice:        exclTax.Add(tax),
		Currency:          pm.Currency,
	}, nil
}

// SelectModel finds the pricing model a cart item references on its
// catalogue record.
func (s *QuotationService) SelectModel(item *models.CatalogueItem, key string) (*models.PricingModel, error) {
	for i := range item.PricingModels {
		if item.PricingModels[i].Key.String() == key {
			return &item.PricingModels[i], nil
		}
	}
	return nil, msg.New(msg.CodeQuotation, "Pricing model %s is not offered for asset %s", key, item.ID)
}
