package repository

import (
	"context"
	"time"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	GetByID(ctx context.Context, storeID, id uint) (*models.Reservation, error)
	// GetByRange lists reservations due in [from, to), earliest first.
	GetByRange(ctx context.Context, storeID uint, from, to time.Time) ([]models.Reservation, error)
	Delete(ctx context.Context, storeID, id uint) error
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *reservationRepository) GetByID(ctx context.Context, storeID, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Table").
		Where("id = ? AND store_id = ?", id, storeID).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) GetByRange(ctx context.Context, storeID uint, from, to time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Table").
		Where("store_id = ? AND reserved_for >= ? AND reserved_for < ?", storeID, from, to).
		Order("reserved_for, id").
		Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepository) Delete(ctx context.Context, storeID, id uint) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.Reservation{}).Error
}
