package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateUserInput struct {
	Username string          `json:"username"`
	FullName string          `json:"full_name"`
	Role     models.UserRole `json:"role"`
	Password string          `json:"password"`
}

type UserService interface {
	CreateUser(ctx context.Context, storeID uint, input CreateUserInput) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsersByStore(ctx context.Context, storeID uint) ([]models.User, error)
	CheckPassword(user *models.User, password string) bool
	ValidateUserRole(user *models.User, allowed ...models.UserRole) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(ctx context.Context, storeID uint, input CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, validationf("username is required")
	}
	if len(input.Password) < 6 {
		return nil, validationf("password must have at least 6 characters")
	}
	if input.Role == "" {
		input.Role = models.Cashier
	}
	if !input.Role.Valid() {
		return nil, validationf("invalid role %q", input.Role)
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, conflictf("username %q is taken", username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		StoreID:      storeID,
		Username:     username,
		FullName:     input.FullName,
		Role:         string(input.Role),
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "user", id)
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user " + username}
		}
		return nil, fmt.Errorf("failed to load user %s: %w", username, err)
	}
	return user, nil
}

func (s *userService) GetUsersByStore(ctx context.Context, storeID uint) ([]models.User, error) {
	return s.userRepo.GetByStore(ctx, storeID)
}

func (s *userService) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// ValidateUserRole fails unless the user holds one of the allowed roles.
// super_admin is always allowed.
func (s *userService) ValidateUserRole(user *models.User, allowed ...models.UserRole) error {
	role := models.UserRole(user.Role)
	if role == models.SuperAdmin {
		return nil
	}
	for _, r := range allowed {
		if role == r {
			return nil
		}
	}
	return errors.New("insufficient permissions")
}
