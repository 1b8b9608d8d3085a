package repository

import (
	"context"
	"time"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	// GetFull loads the whole aggregate (items with products, table,
	// customer) in one go. Nothing on the returned order is lazy.
	GetFull(ctx context.Context, storeID, id uint) (*models.Order, error)
	// GetFullForUpdate is GetFull with the order row locked until the
	// surrounding transaction ends.
	GetFullForUpdate(ctx context.Context, storeID, id uint) (*models.Order, error)
	GetOpenByTable(ctx context.Context, storeID, tableID uint) (*models.Order, error)
	GetActivePOS(ctx context.Context, storeID uint) (*models.Order, error)
	ListByStatus(ctx context.Context, storeID uint, status models.OrderStatus, orderType *models.OrderType, newestFirst bool) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus, closedAt *time.Time) error
	SetTable(ctx context.Context, id uint, tableID uint) error
	GetOpenTableSummaries(ctx context.Context, storeID uint) ([]OpenTableSummary, error)
}

// OpenTableSummary is the floor-plan view of an open dine-in order.
type OpenTableSummary struct {
	TableID       uint
	OrderID       uint
	CreatedAt     time.Time
	HasReadyItems bool
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *orderRepository) full(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id")
		}).
		Preload("Items.Product").
		Preload("Table").
		Preload("Customer")
}

func (r *orderRepository) GetFull(ctx context.Context, storeID, id uint) (*models.Order, error) {
	var order models.Order
	err := r.full(ctx).Where("id = ? AND store_id = ?", id, storeID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetFullForUpdate(ctx context.Context, storeID, id uint) (*models.Order, error) {
	var order models.Order
	err := r.full(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND store_id = ?", id, storeID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// seatedStatuses are the order states that still hold a table. A held dine-in
// order keeps its guests seated.
var seatedStatuses = []string{string(models.OrderOpen), string(models.OrderOnHold)}

func (r *orderRepository) GetOpenByTable(ctx context.Context, storeID, tableID uint) (*models.Order, error) {
	var order models.Order
	err := r.full(ctx).
		Where("store_id = ? AND table_id = ? AND status IN ?", storeID, tableID, seatedStatuses).
		Order("id DESC").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetActivePOS(ctx context.Context, storeID uint) (*models.Order, error) {
	var order models.Order
	err := r.full(ctx).
		Where("store_id = ? AND status = ? AND order_type = ? AND table_id IS NULL",
			storeID, string(models.OrderOpen), string(models.Takeout)).
		Order("id DESC").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByStatus(ctx context.Context, storeID uint, status models.OrderStatus, orderType *models.OrderType, newestFirst bool) ([]models.Order, error) {
	query := r.full(ctx).Where("store_id = ? AND status = ?", storeID, string(status))
	if orderType != nil {
		query = query.Where("order_type = ?", string(*orderType))
	}
	if newestFirst {
		query = query.Order("created_at DESC").Order("id DESC")
	} else {
		query = query.Order("created_at").Order("id")
	}

	var orders []models.Order
	err := query.Find(&orders).Error
	return orders, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus, closedAt *time.Time) error {
	updates := map[string]interface{}{"status": string(status)}
	if closedAt != nil {
		updates["closed_at"] = *closedAt
	}
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

func (r *orderRepository) SetTable(ctx context.Context, id uint, tableID uint) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("table_id", tableID).Error
}

func (r *orderRepository) GetOpenTableSummaries(ctx context.Context, storeID uint) ([]OpenTableSummary, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ? AND status IN ? AND table_id IS NOT NULL", storeID, seatedStatuses).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]OpenTableSummary, 0, len(orders))
	for _, o := range orders {
		summary := OpenTableSummary{TableID: *o.TableID, OrderID: o.ID, CreatedAt: o.CreatedAt}
		for _, item := range o.Items {
			if item.Status == string(models.ItemReady) {
				summary.HasReadyItems = true
				break
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
