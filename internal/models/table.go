package models

import "time"

type Table struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoreID   uint      `json:"store_id" gorm:"not null;index"`
	Number    string    `json:"number" gorm:"not null"`
	Status    string    `json:"status" gorm:"default:'available';index"` // available, occupied, reserved
	Capacity  int       `json:"capacity" gorm:"default:4"`
	Shape     string    `json:"shape" gorm:"default:'rectangle'"` // rectangle, round
	Rotation  int       `json:"rotation" gorm:"default:0"`
	PosX      int       `json:"pos_x" gorm:"default:0"`
	PosY      int       `json:"pos_y" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved:
		return true
	}
	return false
}

type TableShape string

const (
	ShapeRectangle TableShape = "rectangle"
	ShapeRound     TableShape = "round"
)

// Wall is a floor-plan fixture drawn around the tables. It never takes part
// in order flow.
type Wall struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoreID   uint      `json:"store_id" gorm:"not null;index"`
	PosX      int       `json:"pos_x" gorm:"default:50"`
	PosY      int       `json:"pos_y" gorm:"default:50"`
	Width     int       `json:"width" gorm:"default:200"`
	Height    int       `json:"height" gorm:"default:10"`
	Rotation  int       `json:"rotation" gorm:"default:0"`
	WallType  string    `json:"wall_type" gorm:"default:'standard'"` // standard, window, door
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WallType string

const (
	WallStandard WallType = "standard"
	WallWindow   WallType = "window"
	WallDoor     WallType = "door"
)

func (t WallType) Valid() bool {
	switch t {
	case WallStandard, WallWindow, WallDoor:
		return true
	}
	return false
}
