package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is written once per payment event and never updated.
type Sale struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Reference     string          `json:"reference" gorm:"size:36;uniqueIndex;not null"`
	StoreID       uint            `json:"store_id" gorm:"not null;index"`
	UserID        uint            `json:"user_id" gorm:"not null"`
	CustomerID    *uint           `json:"customer_id" gorm:"index"`
	OrderID       *uint           `json:"order_id" gorm:"index"`
	Kind          string          `json:"kind" gorm:"not null"` // partial_payment, checkout
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `json:"payment_method" gorm:"not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	Items         []SaleItem      `json:"items" gorm:"foreignKey:SaleID"`
	Payments      []Payment       `json:"payments" gorm:"foreignKey:SaleID"`
}

type SaleKind string

const (
	SalePartialPayment SaleKind = "partial_payment"
	SaleCheckout       SaleKind = "checkout"
)

type SaleItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	SaleID      uint            `json:"sale_id" gorm:"not null;index"`
	ProductID   uint            `json:"product_id" gorm:"not null;index"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	PriceAtSale decimal.Decimal `json:"price_at_sale" gorm:"type:decimal(12,2);not null"`
	Product     *Product        `json:"product,omitempty"`
}

type Payment struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	SaleID        uint            `json:"sale_id" gorm:"not null;index"`
	OrderID       *uint           `json:"order_id" gorm:"index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `json:"payment_method" gorm:"not null"`
	Status        string          `json:"status" gorm:"default:'approved'"`
	CreatedAt     time.Time       `json:"created_at"`
}

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentPix        PaymentMethod = "pix"
	PaymentOther      PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentPix, PaymentOther:
		return true
	}
	return false
}

const PaymentApproved = "approved"
