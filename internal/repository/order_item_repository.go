package repository

import (
	"context"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemRepository interface {
	Create(ctx context.Context, orderItem *models.OrderItem) error
	// GetByIDInStore resolves an item through its parent order's store.
	GetByIDInStore(ctx context.Context, storeID, id uint) (*models.OrderItem, error)
	UpdateQuantity(ctx context.Context, id uint, quantity int) error
	Delete(ctx context.Context, id uint) error
	// AddPaid increments paid_quantity only while enough quantity is still
	// pending; false means another payment got there first.
	AddPaid(ctx context.Context, id uint, quantity int) (bool, error)
	MarkAllPaid(ctx context.Context, orderID uint) error
	UpdateStatus(ctx context.Context, id uint, status models.OrderItemStatus) error
	Reassign(ctx context.Context, fromOrderID, toOrderID uint) (int64, error)
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) Create(ctx context.Context, orderItem *models.OrderItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(orderItem).Error
}

func (r *orderItemRepository) GetByIDInStore(ctx context.Context, storeID, id uint) (*models.OrderItem, error) {
	var orderItem models.OrderItem
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.id = ? AND orders.store_id = ?", id, storeID).
		Preload("Product").
		First(&orderItem).Error
	if err != nil {
		return nil, err
	}
	return &orderItem, nil
}

func (r *orderItemRepository) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	return r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("id = ?", id).Update("quantity", quantity).Error
}

func (r *orderItemRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.OrderItem{}, id).Error
}

func (r *orderItemRepository) AddPaid(ctx context.Context, id uint, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("id = ? AND quantity - paid_quantity >= ?", id, quantity).
		Update("paid_quantity", gorm.Expr("paid_quantity + ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *orderItemRepository) MarkAllPaid(ctx context.Context, orderID uint) error {
	return r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Update("paid_quantity", gorm.Expr("quantity")).Error
}

func (r *orderItemRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderItemStatus) error {
	return r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("id = ?", id).Update("status", string(status)).Error
}

func (r *orderItemRepository) Reassign(ctx context.Context, fromOrderID, toOrderID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("order_id = ?", fromOrderID).
		Update("order_id", toOrderID)
	return result.RowsAffected, result.Error
}
