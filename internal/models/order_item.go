package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	OrderID      uint            `json:"order_id" gorm:"not null;index"`
	ProductID    uint            `json:"product_id" gorm:"not null"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	PaidQuantity int             `json:"paid_quantity" gorm:"not null;default:0"`
	PriceAtOrder decimal.Decimal `json:"price_at_order" gorm:"type:decimal(12,2);not null"`
	Status       string          `json:"status" gorm:"default:'pending'"`
	Notes        string          `json:"notes"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Product      *Product        `json:"product,omitempty"`
}

func (i *OrderItem) PendingQuantity() int {
	return i.Quantity - i.PaidQuantity
}

// OrderItemStatus is the kitchen workflow state, independent of payment.
type OrderItemStatus string

const (
	ItemPending   OrderItemStatus = "pending"
	ItemPreparing OrderItemStatus = "preparing"
	ItemReady     OrderItemStatus = "ready"
	ItemDelivered OrderItemStatus = "delivered"
)

func (s OrderItemStatus) Valid() bool {
	switch s {
	case ItemPending, ItemPreparing, ItemReady, ItemDelivered:
		return true
	}
	return false
}
