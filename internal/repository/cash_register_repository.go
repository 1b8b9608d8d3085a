package repository

import (
	"context"

	"restaurant_pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CashRegisterRepository interface {
	Create(ctx context.Context, register *models.CashRegister) error
	// GetOpen returns the store's open register, locked for the rest of the
	// transaction.
	GetOpen(ctx context.Context, storeID uint) (*models.CashRegister, error)
	GetByID(ctx context.Context, storeID, id uint) (*models.CashRegister, error)
	Update(ctx context.Context, register *models.CashRegister) error
	AddTransaction(ctx context.Context, txn *models.CashTransaction) error
	CountSaleTransactions(ctx context.Context, saleID uint) (int64, error)
	Totals(ctx context.Context, registerID uint) ([]CashTotalRow, error)
}

type CashTotalRow struct {
	Type          string
	PaymentMethod string
	Total         decimal.Decimal
}

type cashRegisterRepository struct {
	db *gorm.DB
}

func NewCashRegisterRepository(db *gorm.DB) CashRegisterRepository {
	return &cashRegisterRepository{db: db}
}

func (r *cashRegisterRepository) Create(ctx context.Context, register *models.CashRegister) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(register).Error
}

func (r *cashRegisterRepository) GetOpen(ctx context.Context, storeID uint) (*models.CashRegister, error) {
	var register models.CashRegister
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND status = ?", storeID, string(models.RegisterOpen)).
		First(&register).Error
	if err != nil {
		return nil, err
	}
	return &register, nil
}

func (r *cashRegisterRepository) GetByID(ctx context.Context, storeID, id uint) (*models.CashRegister, error) {
	var register models.CashRegister
	err := r.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("cash_transactions.id")
		}).
		Where("id = ? AND store_id = ?", id, storeID).
		First(&register).Error
	if err != nil {
		return nil, err
	}
	return &register, nil
}

func (r *cashRegisterRepository) Update(ctx context.Context, register *models.CashRegister) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(register).Error
}

func (r *cashRegisterRepository) AddTransaction(ctx context.Context, txn *models.CashTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *cashRegisterRepository) CountSaleTransactions(ctx context.Context, saleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CashTransaction{}).Where("sale_id = ?", saleID).Count(&count).Error
	return count, err
}

func (r *cashRegisterRepository) Totals(ctx context.Context, registerID uint) ([]CashTotalRow, error) {
	var rows []CashTotalRow
	err := r.db.WithContext(ctx).Model(&models.CashTransaction{}).
		Select("type, payment_method, SUM(amount) AS total").
		Where("cash_register_id = ?", registerID).
		Group("type, payment_method").
		Scan(&rows).Error
	return rows, err
}
