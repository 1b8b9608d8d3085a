package repository

import (
	"context"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type WallRepository interface {
	Create(ctx context.Context, wall *models.Wall) error
	GetByID(ctx context.Context, storeID, id uint) (*models.Wall, error)
	GetByStore(ctx context.Context, storeID uint) ([]models.Wall, error)
	Update(ctx context.Context, wall *models.Wall) error
	UpdateLayout(ctx context.Context, storeID, id uint, posX, posY, rotation int) (bool, error)
	Delete(ctx context.Context, storeID, id uint) (bool, error)
}

type wallRepository struct {
	db *gorm.DB
}

func NewWallRepository(db *gorm.DB) WallRepository {
	return &wallRepository{db: db}
}

func (r *wallRepository) Create(ctx context.Context, wall *models.Wall) error {
	return r.db.WithContext(ctx).Create(wall).Error
}

func (r *wallRepository) GetByID(ctx context.Context, storeID, id uint) (*models.Wall, error) {
	var wall models.Wall
	err := r.db.WithContext(ctx).Where("id = ? AND store_id = ?", id, storeID).First(&wall).Error
	if err != nil {
		return nil, err
	}
	return &wall, nil
}

func (r *wallRepository) GetByStore(ctx context.Context, storeID uint) ([]models.Wall, error) {
	var walls []models.Wall
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("id").Find(&walls).Error
	return walls, err
}

func (r *wallRepository) Update(ctx context.Context, wall *models.Wall) error {
	return r.db.WithContext(ctx).Save(wall).Error
}

func (r *wallRepository) UpdateLayout(ctx context.Context, storeID, id uint, posX, posY, rotation int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Wall{}).
		Where("id = ? AND store_id = ?", id, storeID).
		Updates(map[string]interface{}{
			"pos_x":    posX,
			"pos_y":    posY,
			"rotation": rotation,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *wallRepository) Delete(ctx context.Context, storeID, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.Wall{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
