package services

import (
	"context"

	"restaurant_pos/internal/models"
	"restaurant_pos/pkg/logger"
)

// KitchenCache holds the rendered kitchen board per store. A miss is
// (nil, false, nil).
type KitchenCache interface {
	GetKitchenBoard(ctx context.Context, storeID uint) ([]models.Order, bool, error)
	SetKitchenBoard(ctx context.Context, storeID uint, orders []models.Order) error
	InvalidateKitchenBoard(ctx context.Context, storeID uint) error
}

// NoopKitchenCache always misses. Used when Redis is not configured.
type NoopKitchenCache struct{}

func (NoopKitchenCache) GetKitchenBoard(context.Context, uint) ([]models.Order, bool, error) {
	return nil, false, nil
}

func (NoopKitchenCache) SetKitchenBoard(context.Context, uint, []models.Order) error {
	return nil
}

func (NoopKitchenCache) InvalidateKitchenBoard(context.Context, uint) error {
	return nil
}

func invalidateKitchen(ctx context.Context, cache KitchenCache, log *logger.Logger, storeID uint) {
	if err := cache.InvalidateKitchenBoard(ctx, storeID); err != nil {
		log.Warn("kitchen_cache_invalidate", "Kitchen board cache invalidation failed", "store_id", storeID, "error", err.Error())
	}
}
