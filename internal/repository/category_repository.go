package repository

import (
	"context"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, storeID, id uint) (*models.Category, error)
	GetByStore(ctx context.Context, storeID uint) ([]models.Category, error)
	// Delete removes the category and detaches its products.
	Delete(ctx context.Context, storeID, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, storeID, id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("id = ? AND store_id = ?", id, storeID).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetByStore(ctx context.Context, storeID uint) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("name").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) Delete(ctx context.Context, storeID, id uint) error {
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("store_id = ? AND category_id = ?", storeID, id).
		Update("category_id", nil).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.Category{}).Error
}
