package migrations

import (
	"context"
	"errors"
	"fmt"

	"restaurant_pos/internal/database"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DefaultAdminUsername = "admin"

// RunMigrations brings the schema up to date and seeds a first store. With
// reset set every table is dropped first.
func RunMigrations(db *gorm.DB, reset bool, adminPassword string, log *logger.Logger) error {
	log.Info("migrations_started", "Running database migrations", "reset", reset)

	if reset {
		log.Warn("migrations_reset", "Dropping existing tables")
		if err := db.Migrator().DropTable(models.AllModels()...); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
	}

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := createDefaultData(context.Background(), db, adminPassword, log); err != nil {
		return fmt.Errorf("failed to create default data: %w", err)
	}

	log.Info("migrations_completed", "Database migrations completed")
	return nil
}

// createDefaultData seeds one store with a super admin, a small floor plan
// and a starter menu. It does nothing once the admin user exists.
func createDefaultData(ctx context.Context, db *gorm.DB, adminPassword string, log *logger.Logger) error {
	repos := repository.NewRepositories(db)
	userService := services.NewUserService(repos.Users)

	_, err := userService.GetUserByUsername(ctx, DefaultAdminUsername)
	if err == nil {
		log.Info("seed_skipped", "Default admin already exists")
		return nil
	}
	var notFound *services.NotFoundError
	if !errors.As(err, &notFound) {
		return err
	}

	return repos.Transaction(ctx, func(tx *repository.Repositories) error {
		store := &models.Store{Name: "Main Store"}
		if err := tx.DB().WithContext(ctx).Create(store).Error; err != nil {
			return fmt.Errorf("failed to create store: %w", err)
		}

		admin, err := services.NewUserService(tx.Users).CreateUser(ctx, store.ID, services.CreateUserInput{
			Username: DefaultAdminUsername,
			FullName: "Administrator",
			Role:     models.SuperAdmin,
			Password: adminPassword,
		})
		if err != nil {
			return err
		}
		caller := services.Caller{StoreID: store.ID, UserID: admin.ID, Role: models.SuperAdmin}

		tables := services.NewTableService(tx)
		for i := 1; i <= 6; i++ {
			shape := models.ShapeRectangle
			if i > 4 {
				shape = models.ShapeRound
			}
			if _, err := tables.Create(ctx, caller, services.CreateTableInput{
				Number:   fmt.Sprintf("%d", i),
				Capacity: 4,
				Shape:    shape,
				PosX:     ((i - 1) % 3) * 120,
				PosY:     ((i - 1) / 3) * 120,
			}); err != nil {
				return err
			}
		}

		stock := services.NewStockService(tx, log)
		food, err := stock.CreateCategory(ctx, caller, "Food")
		if err != nil {
			return err
		}
		drinks, err := stock.CreateCategory(ctx, caller, "Drinks")
		if err != nil {
			return err
		}
		menu := []services.CreateProductInput{
			{Name: "House Burger", CategoryID: &food.ID, Price: decimal.RequireFromString("12.90"), TrackStock: true, StockQuantity: 40, LowStockThreshold: 5},
			{Name: "Margherita Pizza", CategoryID: &food.ID, Price: decimal.RequireFromString("15.50"), TrackStock: true, StockQuantity: 25, LowStockThreshold: 5},
			{Name: "Caesar Salad", CategoryID: &food.ID, Price: decimal.RequireFromString("9.75")},
			{Name: "French Fries", CategoryID: &food.ID, Price: decimal.RequireFromString("5.00")},
			{Name: "Soft Drink", CategoryID: &drinks.ID, Price: decimal.RequireFromString("3.50"), TrackStock: true, StockQuantity: 120, LowStockThreshold: 24},
			{Name: "Espresso", CategoryID: &drinks.ID, Price: decimal.RequireFromString("2.80")},
		}
		for _, p := range menu {
			if _, err := stock.CreateProduct(ctx, caller, p); err != nil {
				return err
			}
		}

		log.Info("seed_completed", "Default store created",
			"store_id", store.ID, "admin_username", DefaultAdminUsername, "tables", 6, "products", len(menu))
		return nil
	})
}
