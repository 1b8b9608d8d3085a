package repository

import (
	"context"
	"time"

	"restaurant_pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, storeID, id uint) (*models.Customer, error)
	GetByStore(ctx context.Context, storeID uint) ([]models.Customer, error)
	ApplySale(ctx context.Context, id uint, amount decimal.Decimal, points int, seenAt time.Time) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, storeID, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("id = ? AND store_id = ?", id, storeID).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetByStore(ctx context.Context, storeID uint) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("name").Find(&customers).Error
	return customers, err
}

func (r *customerRepository) ApplySale(ctx context.Context, id uint, amount decimal.Decimal, points int, seenAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_spent":    gorm.Expr("total_spent + ?", amount),
			"loyalty_points": gorm.Expr("loyalty_points + ?", points),
			"last_seen_at":   seenAt,
		}).Error
}
