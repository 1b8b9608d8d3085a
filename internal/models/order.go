package models

import (
	"time"

	"restaurant_pos/internal/money"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a tab: one seating, takeout or delivery transaction.
type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	StoreID         uint            `json:"store_id" gorm:"not null;index"`
	UserID          uint            `json:"user_id" gorm:"not null"`
	CustomerID      *uint           `json:"customer_id" gorm:"index"`
	TableID         *uint           `json:"table_id" gorm:"index"`
	OrderType       string          `json:"order_type" gorm:"not null"`         // DINE_IN, DELIVERY, TAKEOUT
	Status          string          `json:"status" gorm:"default:'open';index"` // open, on_hold, closed, paid, cancelled
	DeliveryAddress string          `json:"delivery_address"`
	ClosedAt        *time.Time      `json:"closed_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"-"`
	AmountDue       decimal.Decimal `json:"amount_due" gorm:"-"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	Table           *Table          `json:"table,omitempty"`
	Customer        *Customer       `json:"customer,omitempty"`
}

type OrderType string

const (
	DineIn   OrderType = "DINE_IN"
	Delivery OrderType = "DELIVERY"
	Takeout  OrderType = "TAKEOUT"
)

func (t OrderType) Valid() bool {
	switch t {
	case DineIn, Delivery, Takeout:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderOpen      OrderStatus = "open"
	OrderOnHold    OrderStatus = "on_hold"
	OrderClosed    OrderStatus = "closed"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderOpen:   {OrderOnHold, OrderPaid, OrderCancelled, OrderClosed},
	OrderOnHold: {OrderOpen},
	OrderPaid:   {OrderClosed},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Closed and cancelled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FullyPaid is true when every line has paid_quantity == quantity.
// An order without lines is not considered paid.
func (o *Order) FullyPaid() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, item := range o.Items {
		if item.PaidQuantity != item.Quantity {
			return false
		}
	}
	return true
}

func (o *Order) FindItem(itemID uint) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// Total is the rounded sum of all lines at their order-time prices.
func (o *Order) Total() decimal.Decimal {
	lines := make([]decimal.Decimal, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, money.LineTotal(item.PriceAtOrder, item.Quantity))
	}
	return money.Round(money.Sum(lines...))
}

// Due is what is still owed for the unpaid quantities.
func (o *Order) Due() decimal.Decimal {
	lines := make([]decimal.Decimal, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, money.LineTotal(item.PriceAtOrder, item.PendingQuantity()))
	}
	return money.Round(money.Sum(lines...))
}

// AfterFind fills the computed amounts once items are preloaded.
func (o *Order) AfterFind(tx *gorm.DB) error {
	o.TotalAmount = o.Total()
	o.AmountDue = o.Due()
	return nil
}
