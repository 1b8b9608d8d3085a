package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	StoreID       uint            `json:"store_id" gorm:"not null;index"`
	Name          string          `json:"name" gorm:"not null"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	TotalSpent    decimal.Decimal `json:"total_spent" gorm:"type:decimal(12,2);not null;default:0"`
	LoyaltyPoints int             `json:"loyalty_points" gorm:"default:0"`
	LastSeenAt    *time.Time      `json:"last_seen_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
