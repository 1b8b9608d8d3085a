package models

import "time"

// SideEffectJob is an outbox row written in the same transaction as the sale
// it refers to.
type SideEffectJob struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	StoreID       uint      `json:"store_id" gorm:"not null"`
	SaleID        uint      `json:"sale_id" gorm:"not null;index"`
	Kind          string    `json:"kind" gorm:"not null"`
	Status        string    `json:"status" gorm:"default:'pending';index"` // pending, done, failed
	Attempts      int       `json:"attempts" gorm:"default:0"`
	NextAttemptAt time.Time `json:"next_attempt_at" gorm:"index"`
	LastError     string    `json:"last_error"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SideEffectKind string

const (
	EffectStockDeduction  SideEffectKind = "stock_deduction"
	EffectCashTransaction SideEffectKind = "cash_transaction"
	EffectCustomerStats   SideEffectKind = "customer_stats"
	EffectSaleEvent       SideEffectKind = "sale_event"
)

// SaleSideEffects lists the jobs enqueued for every sale, in run order.
var SaleSideEffects = []SideEffectKind{
	EffectStockDeduction,
	EffectCashTransaction,
	EffectCustomerStats,
	EffectSaleEvent,
}

type SideEffectStatus string

const (
	JobPending SideEffectStatus = "pending"
	JobDone    SideEffectStatus = "done"
	JobFailed  SideEffectStatus = "failed"
)

// AllModels is the AutoMigrate list.
func AllModels() []interface{} {
	return []interface{}{
		&Store{},
		&User{},
		&Category{},
		&Product{},
		&StockMovement{},
		&Customer{},
		&Table{},
		&Wall{},
		&Reservation{},
		&Order{},
		&OrderItem{},
		&Sale{},
		&SaleItem{},
		&Payment{},
		&CashRegister{},
		&CashTransaction{},
		&SideEffectJob{},
	}
}
