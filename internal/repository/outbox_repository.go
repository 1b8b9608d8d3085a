package repository

import (
	"context"
	"time"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type OutboxRepository interface {
	Enqueue(ctx context.Context, jobs []models.SideEffectJob) error
	Due(ctx context.Context, now time.Time, limit int) ([]models.SideEffectJob, error)
	GetBySale(ctx context.Context, saleID uint) ([]models.SideEffectJob, error)
	MarkDone(ctx context.Context, id uint, attempts int) error
	MarkRetry(ctx context.Context, id uint, attempts int, next time.Time, lastError string) error
	MarkFailed(ctx context.Context, id uint, attempts int, lastError string) error
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Enqueue(ctx context.Context, jobs []models.SideEffectJob) error {
	if len(jobs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&jobs).Error
}

func (r *outboxRepository) Due(ctx context.Context, now time.Time, limit int) ([]models.SideEffectJob, error) {
	var jobs []models.SideEffectJob
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", string(models.JobPending), now).
		Order("id").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (r *outboxRepository) GetBySale(ctx context.Context, saleID uint) ([]models.SideEffectJob, error) {
	var jobs []models.SideEffectJob
	err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Order("id").Find(&jobs).Error
	return jobs, err
}

func (r *outboxRepository) MarkDone(ctx context.Context, id uint, attempts int) error {
	return r.db.WithContext(ctx).Model(&models.SideEffectJob{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     string(models.JobDone),
		"attempts":   attempts,
		"last_error": "",
	}).Error
}

func (r *outboxRepository) MarkRetry(ctx context.Context, id uint, attempts int, next time.Time, lastError string) error {
	return r.db.WithContext(ctx).Model(&models.SideEffectJob{}).Where("id = ?", id).Updates(map[string]interface{}{
		"attempts":        attempts,
		"next_attempt_at": next,
		"last_error":      lastError,
	}).Error
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uint, attempts int, lastError string) error {
	return r.db.WithContext(ctx).Model(&models.SideEffectJob{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     string(models.JobFailed),
		"attempts":   attempts,
		"last_error": lastError,
	}).Error
}
