package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the order lifecycle. Orders are immutable once
// created; status changes are driven by payment events.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusSucceeded OrderStatus = "SUCCEEDED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderItem snapshots a cart item and its quotation at checkout time.
type OrderItem struct {
	ID              int64
	AssetID         string
	AssetTitle      string
	PricingModelKey uuid.UUID
	TotalPrice      decimal.Decimal
	Currency        string
}

// Order is the immutable result of a cart checkout.
type Order struct {
	ID         int64
	Key        uuid.UUID
	AccountKey uuid.UUID
	CartKey    uuid.UUID
	Status     OrderStatus
	TotalPrice decimal.Decimal
	Currency   string
	Items      []OrderItem
	CreatedAt  time.Time
}
