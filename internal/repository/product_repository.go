package repository

import (
	"context"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, storeID, id uint) (*models.Product, error)
	GetByIDs(ctx context.Context, storeID uint, ids []uint) (map[uint]models.Product, error)
	// GetByStore lists the store's products, optionally only one category.
	GetByStore(ctx context.Context, storeID uint, categoryID *uint) ([]models.Product, error)
	GetLowStock(ctx context.Context, storeID uint) ([]models.Product, error)
	AdjustStock(ctx context.Context, id uint, delta int) error
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	GetMovements(ctx context.Context, storeID, productID uint) ([]models.StockMovement, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, storeID, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ? AND store_id = ?", id, storeID).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, storeID uint, ids []uint) (map[uint]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Where("store_id = ? AND id IN ?", storeID, ids).Find(&products).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (r *productRepository) GetByStore(ctx context.Context, storeID uint, categoryID *uint) ([]models.Product, error) {
	var products []models.Product
	query := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	err := query.Order("name").Find(&products).Error
	return products, err
}

func (r *productRepository) GetLowStock(ctx context.Context, storeID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND track_stock = ? AND stock_quantity <= low_stock_threshold", storeID, true).
		Order("stock_quantity").
		Find(&products).Error
	return products, err
}

// AdjustStock applies a signed delta in SQL so concurrent sales don't lose updates.
func (r *productRepository) AdjustStock(ctx context.Context, id uint, delta int) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta)).Error
}

func (r *productRepository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *productRepository) GetMovements(ctx context.Context, storeID, productID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND product_id = ?", storeID, productID).
		Order("id").
		Find(&movements).Error
	return movements, err
}
