package models

import "time"

// Reservation books a table for a party. While it stands the table is
// reserved; seating the party turns the table occupied like any walk-in.
type Reservation struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	StoreID      uint      `json:"store_id" gorm:"not null;index"`
	TableID      uint      `json:"table_id" gorm:"not null;index"`
	Table        *Table    `json:"table,omitempty" gorm:"foreignKey:TableID"`
	CustomerName string    `json:"customer_name" gorm:"not null"`
	PhoneNumber  string    `json:"phone_number"`
	ReservedFor  time.Time `json:"reservation_time" gorm:"not null;index"`
	PartySize    int       `json:"number_of_people" gorm:"not null"`
	Notes        string    `json:"notes"`
	Status       string    `json:"status" gorm:"default:'confirmed'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const ReservationConfirmed = "confirmed"
