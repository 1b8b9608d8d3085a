package models

import (
	"time"

	"gorm.io/gorm"
)

type Store struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	StoreID      uint           `json:"store_id" gorm:"not null;index"`
	Username     string         `json:"username" gorm:"unique;not null"`
	FullName     string         `json:"full_name"`
	Role         string         `json:"role" gorm:"default:'cashier'"` // super_admin, admin, manager, cashier
	PasswordHash string         `json:"-"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

type UserRole string

const (
	SuperAdmin UserRole = "super_admin"
	Admin      UserRole = "admin"
	Manager    UserRole = "manager"
	Cashier    UserRole = "cashier"
)

func (r UserRole) Valid() bool {
	switch r {
	case SuperAdmin, Admin, Manager, Cashier:
		return true
	}
	return false
}
