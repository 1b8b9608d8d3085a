package repository

import (
	"context"
	"time"

	"restaurant_pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepository interface {
	// Create inserts the sale together with its items and payments.
	Create(ctx context.Context, sale *models.Sale) error
	GetFull(ctx context.Context, storeID, id uint) (*models.Sale, error)
	GetByIDUnscoped(ctx context.Context, id uint) (*models.Sale, error)
	List(ctx context.Context, storeID uint, limit, offset int) ([]models.Sale, error)
	ListByCustomer(ctx context.Context, storeID, customerID uint) ([]models.Sale, error)
	ListByOrder(ctx context.Context, storeID, orderID uint) ([]models.Sale, error)
	Summary(ctx context.Context, storeID uint, from, to time.Time) (SalesSummaryRow, error)
	TopProducts(ctx context.Context, storeID uint, from, to time.Time, limit int, byRevenue bool) ([]TopProductRow, error)
	ByPaymentMethod(ctx context.Context, storeID uint, from, to time.Time) ([]PaymentMethodRow, error)
}

type SalesSummaryRow struct {
	TotalSales      decimal.Decimal
	NumTransactions int64
}

type TopProductRow struct {
	ProductID         uint
	ProductName       string
	TotalQuantitySold int64
	TotalRevenue      decimal.Decimal
}

type PaymentMethodRow struct {
	PaymentMethod    string
	TotalAmount      decimal.Decimal
	TransactionCount int64
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *saleRepository) full(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sale_items.id")
		}).
		Preload("Items.Product").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payments.id")
		})
}

func (r *saleRepository) GetFull(ctx context.Context, storeID, id uint) (*models.Sale, error) {
	var sale models.Sale
	err := r.full(ctx).Where("id = ? AND store_id = ?", id, storeID).First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetByIDUnscoped is for background jobs that already carry the sale id.
func (r *saleRepository) GetByIDUnscoped(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	err := r.full(ctx).First(&sale, id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, storeID uint, limit, offset int) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.full(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&sales).Error
	return sales, err
}

func (r *saleRepository) ListByCustomer(ctx context.Context, storeID, customerID uint) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.full(ctx).
		Where("store_id = ? AND customer_id = ?", storeID, customerID).
		Order("created_at DESC").Order("id DESC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepository) ListByOrder(ctx context.Context, storeID, orderID uint) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.full(ctx).
		Where("store_id = ? AND order_id = ?", storeID, orderID).
		Order("id").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepository) Summary(ctx context.Context, storeID uint, from, to time.Time) (SalesSummaryRow, error) {
	var row SalesSummaryRow
	err := r.db.WithContext(ctx).Model(&models.Sale{}).
		Select("COALESCE(SUM(total_amount), 0) AS total_sales, COUNT(id) AS num_transactions").
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, from, to).
		Scan(&row).Error
	return row, err
}

func (r *saleRepository) TopProducts(ctx context.Context, storeID uint, from, to time.Time, limit int, byRevenue bool) ([]TopProductRow, error) {
	orderBy := "total_quantity_sold DESC"
	if byRevenue {
		orderBy = "total_revenue DESC"
	}

	var rows []TopProductRow
	err := r.db.WithContext(ctx).Table("sale_items").
		Select("sale_items.product_id AS product_id, products.name AS product_name, "+
			"SUM(sale_items.quantity) AS total_quantity_sold, "+
			"SUM(sale_items.quantity * sale_items.price_at_sale) AS total_revenue").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Joins("JOIN products ON products.id = sale_items.product_id").
		Where("sales.store_id = ? AND sales.created_at >= ? AND sales.created_at < ?", storeID, from, to).
		Group("sale_items.product_id, products.name").
		Order(orderBy).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *saleRepository) ByPaymentMethod(ctx context.Context, storeID uint, from, to time.Time) ([]PaymentMethodRow, error) {
	var rows []PaymentMethodRow
	err := r.db.WithContext(ctx).Table("payments").
		Select("payments.payment_method AS payment_method, SUM(payments.amount) AS total_amount, COUNT(payments.id) AS transaction_count").
		Joins("JOIN sales ON sales.id = payments.sale_id").
		Where("sales.store_id = ? AND sales.created_at >= ? AND sales.created_at < ?", storeID, from, to).
		Group("payments.payment_method").
		Order("total_amount DESC").
		Scan(&rows).Error
	return rows, err
}
