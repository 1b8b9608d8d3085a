package repository

import (
	"context"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type TableRepository interface {
	Create(ctx context.Context, table *models.Table) error
	GetByID(ctx context.Context, storeID, id uint) (*models.Table, error)
	GetByStore(ctx context.Context, storeID uint) ([]models.Table, error)
	// TransitionStatus moves the table to `to` only if its current status is
	// one of `from`. It reports whether a row changed.
	TransitionStatus(ctx context.Context, storeID, id uint, to models.TableStatus, from ...models.TableStatus) (bool, error)
	UpdateLayout(ctx context.Context, storeID, id uint, posX, posY int, rotation *int) (bool, error)
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) Create(ctx context.Context, table *models.Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

func (r *tableRepository) GetByID(ctx context.Context, storeID, id uint) (*models.Table, error) {
	var table models.Table
	err := r.db.WithContext(ctx).Where("id = ? AND store_id = ?", id, storeID).First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) GetByStore(ctx context.Context, storeID uint) ([]models.Table, error) {
	var tables []models.Table
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("id").Find(&tables).Error
	return tables, err
}

func (r *tableRepository) TransitionStatus(ctx context.Context, storeID, id uint, to models.TableStatus, from ...models.TableStatus) (bool, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	result := r.db.WithContext(ctx).Model(&models.Table{}).
		Where("id = ? AND store_id = ? AND status IN ?", id, storeID, statuses).
		Update("status", string(to))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *tableRepository) UpdateLayout(ctx context.Context, storeID, id uint, posX, posY int, rotation *int) (bool, error) {
	updates := map[string]interface{}{
		"pos_x": posX,
		"pos_y": posY,
	}
	if rotation != nil {
		updates["rotation"] = *rotation
	}

	result := r.db.WithContext(ctx).Model(&models.Table{}).
		Where("id = ? AND store_id = ?", id, storeID).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
