package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"

	"gorm.io/gorm"
)

type CreateTableInput struct {
	Number   string            `json:"number"`
	Capacity int               `json:"capacity"`
	Shape    models.TableShape `json:"shape"`
	PosX     int               `json:"pos_x"`
	PosY     int               `json:"pos_y"`
	Rotation int               `json:"rotation"`
}

type TableLayoutInput struct {
	ID       uint `json:"id"`
	PosX     int  `json:"pos_x"`
	PosY     int  `json:"pos_y"`
	Rotation *int `json:"rotation"`
}

type CreateWallInput struct {
	PosX     int             `json:"pos_x"`
	PosY     int             `json:"pos_y"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Rotation int             `json:"rotation"`
	WallType models.WallType `json:"wall_type"`
}

// UpdateWallInput changes only the fields that are set.
type UpdateWallInput struct {
	PosX     *int             `json:"pos_x"`
	PosY     *int             `json:"pos_y"`
	Width    *int             `json:"width"`
	Height   *int             `json:"height"`
	Rotation *int             `json:"rotation"`
	WallType *models.WallType `json:"wall_type"`
}

type WallLayoutInput struct {
	ID       uint `json:"id"`
	PosX     int  `json:"pos_x"`
	PosY     int  `json:"pos_y"`
	Rotation int  `json:"rotation"`
}

// TableView is a table plus the floor-plan details of its open order.
type TableView struct {
	models.Table
	OpenOrderID   *uint      `json:"open_order_id"`
	OpenedAt      *time.Time `json:"opened_at"`
	HasReadyItems bool       `json:"has_ready_items"`
}

type TableService interface {
	List(ctx context.Context, caller Caller) ([]TableView, error)
	Get(ctx context.Context, caller Caller, id uint) (*models.Table, error)
	Create(ctx context.Context, caller Caller, input CreateTableInput) (*models.Table, error)
	UpdateLayout(ctx context.Context, caller Caller, layout []TableLayoutInput) ([]TableView, error)
	// SetStatus is the manual reserve/free switch. Occupancy belongs to
	// orders, so a table with an open order is refused.
	SetStatus(ctx context.Context, caller Caller, id uint, status models.TableStatus) (*models.Table, error)

	ListWalls(ctx context.Context, caller Caller) ([]models.Wall, error)
	CreateWall(ctx context.Context, caller Caller, input CreateWallInput) (*models.Wall, error)
	UpdateWall(ctx context.Context, caller Caller, id uint, input UpdateWallInput) (*models.Wall, error)
	// UpdateWallLayout moves several walls at once; a foreign or missing wall
	// rolls the whole batch back.
	UpdateWallLayout(ctx context.Context, caller Caller, layout []WallLayoutInput) ([]models.Wall, error)
	DeleteWall(ctx context.Context, caller Caller, id uint) error
}

type tableService struct {
	repos *repository.Repositories
}

func NewTableService(repos *repository.Repositories) TableService {
	return &tableService{repos: repos}
}

func (s *tableService) List(ctx context.Context, caller Caller) ([]TableView, error) {
	tables, err := s.repos.Tables.GetByStore(ctx, caller.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	summaries, err := s.repos.Orders.GetOpenTableSummaries(ctx, caller.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load open orders: %w", err)
	}

	byTable := make(map[uint]repository.OpenTableSummary, len(summaries))
	for _, summary := range summaries {
		byTable[summary.TableID] = summary
	}

	views := make([]TableView, 0, len(tables))
	for _, table := range tables {
		view := TableView{Table: table}
		if summary, ok := byTable[table.ID]; ok {
			orderID := summary.OrderID
			openedAt := summary.CreatedAt
			view.OpenOrderID = &orderID
			view.OpenedAt = &openedAt
			view.HasReadyItems = summary.HasReadyItems
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *tableService) Get(ctx context.Context, caller Caller, id uint) (*models.Table, error) {
	table, err := s.repos.Tables.GetByID(ctx, caller.StoreID, id)
	if err != nil {
		return nil, lookupErr(err, "table", id)
	}
	return table, nil
}

func (s *tableService) Create(ctx context.Context, caller Caller, input CreateTableInput) (*models.Table, error) {
	number := strings.TrimSpace(input.Number)
	if number == "" {
		return nil, validationf("table number is required")
	}
	if input.Capacity < 0 {
		return nil, validationf("capacity cannot be negative")
	}
	if input.Capacity == 0 {
		input.Capacity = 4
	}
	switch input.Shape {
	case "":
		input.Shape = models.ShapeRectangle
	case models.ShapeRectangle, models.ShapeRound:
	default:
		return nil, validationf("invalid table shape %q", input.Shape)
	}

	table := &models.Table{
		StoreID:  caller.StoreID,
		Number:   number,
		Status:   string(models.TableAvailable),
		Capacity: input.Capacity,
		Shape:    string(input.Shape),
		Rotation: input.Rotation,
		PosX:     input.PosX,
		PosY:     input.PosY,
	}
	if err := s.repos.Tables.Create(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return table, nil
}

func (s *tableService) UpdateLayout(ctx context.Context, caller Caller, layout []TableLayoutInput) ([]TableView, error) {
	if len(layout) == 0 {
		return nil, validationf("layout is empty")
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		for _, entry := range layout {
			ok, err := tx.Tables.UpdateLayout(ctx, caller.StoreID, entry.ID, entry.PosX, entry.PosY, entry.Rotation)
			if err != nil {
				return fmt.Errorf("failed to move table %d: %w", entry.ID, err)
			}
			if !ok {
				return notFound("table", entry.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.List(ctx, caller)
}

func (s *tableService) SetStatus(ctx context.Context, caller Caller, id uint, status models.TableStatus) (*models.Table, error) {
	if status != models.TableAvailable && status != models.TableReserved {
		return nil, validationf("table status can only be set to %s or %s", models.TableAvailable, models.TableReserved)
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Tables.GetByID(ctx, caller.StoreID, id); err != nil {
			return lookupErr(err, "table", id)
		}

		order, err := tx.Orders.GetOpenByTable(ctx, caller.StoreID, id)
		if err == nil {
			return conflictf("table %d has open order %d", id, order.ID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check open order for table %d: %w", id, err)
		}

		// An occupied table is only freed by its order.
		ok, err := tx.Tables.TransitionStatus(ctx, caller.StoreID, id, status, models.TableAvailable, models.TableReserved)
		if err != nil {
			return fmt.Errorf("failed to update table %d: %w", id, err)
		}
		if !ok {
			return conflictf("table %d is occupied", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, caller, id)
}

func (s *tableService) ListWalls(ctx context.Context, caller Caller) ([]models.Wall, error) {
	return s.repos.Walls.GetByStore(ctx, caller.StoreID)
}

func (s *tableService) CreateWall(ctx context.Context, caller Caller, input CreateWallInput) (*models.Wall, error) {
	wall := &models.Wall{
		StoreID:  caller.StoreID,
		PosX:     input.PosX,
		PosY:     input.PosY,
		Width:    input.Width,
		Height:   input.Height,
		Rotation: input.Rotation,
		WallType: string(input.WallType),
	}
	if wall.Width == 0 {
		wall.Width = 200
	}
	if wall.Height == 0 {
		wall.Height = 10
	}
	if wall.WallType == "" {
		wall.WallType = string(models.WallStandard)
	}
	if err := validateWall(wall); err != nil {
		return nil, err
	}

	if err := s.repos.Walls.Create(ctx, wall); err != nil {
		return nil, fmt.Errorf("failed to create wall: %w", err)
	}
	return wall, nil
}

func (s *tableService) UpdateWall(ctx context.Context, caller Caller, id uint, input UpdateWallInput) (*models.Wall, error) {
	wall, err := s.repos.Walls.GetByID(ctx, caller.StoreID, id)
	if err != nil {
		return nil, lookupErr(err, "wall", id)
	}

	if input.PosX != nil {
		wall.PosX = *input.PosX
	}
	if input.PosY != nil {
		wall.PosY = *input.PosY
	}
	if input.Width != nil {
		wall.Width = *input.Width
	}
	if input.Height != nil {
		wall.Height = *input.Height
	}
	if input.Rotation != nil {
		wall.Rotation = *input.Rotation
	}
	if input.WallType != nil {
		wall.WallType = string(*input.WallType)
	}
	if err := validateWall(wall); err != nil {
		return nil, err
	}

	if err := s.repos.Walls.Update(ctx, wall); err != nil {
		return nil, fmt.Errorf("failed to update wall %d: %w", id, err)
	}
	return wall, nil
}

func (s *tableService) UpdateWallLayout(ctx context.Context, caller Caller, layout []WallLayoutInput) ([]models.Wall, error) {
	if len(layout) == 0 {
		return nil, validationf("layout is empty")
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		for _, entry := range layout {
			ok, err := tx.Walls.UpdateLayout(ctx, caller.StoreID, entry.ID, entry.PosX, entry.PosY, entry.Rotation)
			if err != nil {
				return fmt.Errorf("failed to move wall %d: %w", entry.ID, err)
			}
			if !ok {
				return notFound("wall", entry.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ListWalls(ctx, caller)
}

func (s *tableService) DeleteWall(ctx context.Context, caller Caller, id uint) error {
	ok, err := s.repos.Walls.Delete(ctx, caller.StoreID, id)
	if err != nil {
		return fmt.Errorf("failed to delete wall %d: %w", id, err)
	}
	if !ok {
		return notFound("wall", id)
	}
	return nil
}

func validateWall(wall *models.Wall) error {
	if wall.Width <= 0 || wall.Height <= 0 {
		return validationf("wall width and height must be positive")
	}
	if !models.WallType(wall.WallType).Valid() {
		return validationf("invalid wall type %q", wall.WallType)
	}
	return nil
}
