package repository

import (
	"context"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByStore(ctx context.Context, storeID uint) ([]models.User, error)
	CreateStore(ctx context.Context, store *models.Store) error
	GetStore(ctx context.Context, id uint) (*models.Store, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByStore(ctx context.Context, storeID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("id").Find(&users).Error
	return users, err
}

func (r *userRepository) CreateStore(ctx context.Context, store *models.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *userRepository) GetStore(ctx context.Context, id uint) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).First(&store, id).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}
