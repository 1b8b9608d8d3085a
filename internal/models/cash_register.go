package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashRegister is one drawer session. ExpectedBalance, CountedBalance and
// Difference are filled on close.
type CashRegister struct {
	ID              uint              `json:"id" gorm:"primaryKey"`
	StoreID         uint              `json:"store_id" gorm:"not null;index"`
	UserID          uint              `json:"user_id" gorm:"not null"`
	Status          string            `json:"status" gorm:"default:'open';index"` // open, closed
	OpeningBalance  decimal.Decimal   `json:"opening_balance" gorm:"type:decimal(12,2);not null"`
	ExpectedBalance *decimal.Decimal  `json:"expected_balance" gorm:"type:decimal(12,2)"`
	CountedBalance  *decimal.Decimal  `json:"counted_balance" gorm:"type:decimal(12,2)"`
	Difference      *decimal.Decimal  `json:"difference" gorm:"type:decimal(12,2)"`
	OpenedAt        time.Time         `json:"opened_at"`
	ClosedAt        *time.Time        `json:"closed_at"`
	Transactions    []CashTransaction `json:"transactions,omitempty" gorm:"foreignKey:CashRegisterID"`
}

type CashRegisterStatus string

const (
	RegisterOpen   CashRegisterStatus = "open"
	RegisterClosed CashRegisterStatus = "closed"
)

// CashTransaction is immutable; corrections are new entries.
type CashTransaction struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	CashRegisterID uint            `json:"cash_register_id" gorm:"not null;index"`
	SaleID         *uint           `json:"sale_id" gorm:"index"`
	UserID         uint            `json:"user_id"`
	Type           string          `json:"type" gorm:"not null"` // sale, change, deposit, withdrawal
	PaymentMethod  string          `json:"payment_method" gorm:"not null"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Description    string          `json:"description"`
	CreatedAt      time.Time       `json:"created_at"`
}

type CashTransactionType string

const (
	CashSale       CashTransactionType = "sale"
	CashDeposit    CashTransactionType = "deposit"
	CashWithdrawal CashTransactionType = "withdrawal"
	// CashChange is cash handed back when a sale was overpaid.
	CashChange CashTransactionType = "change"
)
