package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	StoreID           uint            `json:"store_id" gorm:"not null;index"`
	Name              string          `json:"name" gorm:"not null"`
	CategoryID        *uint           `json:"category_id" gorm:"index"`
	Price             decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	TrackStock        bool            `json:"track_stock" gorm:"default:false"`
	StockQuantity     int             `json:"stock_quantity" gorm:"default:0"`
	LowStockThreshold int             `json:"low_stock_threshold" gorm:"default:0"`
	IsActive          bool            `json:"is_active" gorm:"default:true"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Category groups products on the POS menu.
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoreID   uint      `json:"store_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StockMovementReason string

const (
	StockReasonSale       StockMovementReason = "sale"
	StockReasonEntry      StockMovementReason = "entry"
	StockReasonAdjustment StockMovementReason = "adjustment"
)

// StockMovement is an append-only record; Quantity is signed (negative on sale).
type StockMovement struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoreID   uint      `json:"store_id" gorm:"not null;index"`
	ProductID uint      `json:"product_id" gorm:"not null;index"`
	SaleID    *uint     `json:"sale_id" gorm:"index"`
	UserID    uint      `json:"user_id"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Reason    string    `json:"reason" gorm:"not null"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
