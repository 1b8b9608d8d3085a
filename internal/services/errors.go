package services

import (
	"errors"
	"fmt"

	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

// Caller is the authenticated principal an operation runs for. Every query
// and mutation is scoped to Caller.StoreID.
type Caller struct {
	StoreID uint
	UserID  uint
	Role    models.UserRole
}

// ValidationError means the request itself is malformed. Nothing was written.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError covers both missing rows and rows owned by another store.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ConflictError means the request is well formed but the current state of an
// order, item or table does not allow it.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

var ErrNoOpenRegister = errors.New("no open cash register")

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func notFound(resource string, id uint) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// lookupErr turns gorm.ErrRecordNotFound into a NotFoundError and wraps
// anything else.
func lookupErr(err error, resource string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(resource, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", resource, id, err)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
