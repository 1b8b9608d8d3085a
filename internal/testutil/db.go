// Package testutil builds in-memory databases seeded with a small store for
// repository, service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"restaurant_pos/internal/database"
	"restaurant_pos/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter int64

// NewDB opens a private in-memory sqlite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:pos_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// Fixture is one seeded store.
type Fixture struct {
	Store    models.Store
	Admin    models.User
	Manager  models.User
	Cashier  models.User
	Tables   []models.Table
	Burger   models.Product // 10.00, tracks stock (50)
	Soda     models.Product // 4.50, tracks stock (100)
	Fries    models.Product // 7.25, no stock tracking
	Customer models.Customer
}

// Seed creates a store named name with users, four tables, three products and
// one customer.
func Seed(t *testing.T, db *gorm.DB, name string) *Fixture {
	t.Helper()
	ctx := context.Background()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	f := &Fixture{Store: models.Store{Name: name}}
	must(db.WithContext(ctx).Create(&f.Store).Error)

	f.Admin = models.User{StoreID: f.Store.ID, Username: name + "-admin", Role: string(models.Admin), IsActive: true}
	f.Manager = models.User{StoreID: f.Store.ID, Username: name + "-manager", Role: string(models.Manager), IsActive: true}
	f.Cashier = models.User{StoreID: f.Store.ID, Username: name + "-cashier", Role: string(models.Cashier), IsActive: true}
	must(db.Create(&f.Admin).Error)
	must(db.Create(&f.Manager).Error)
	must(db.Create(&f.Cashier).Error)

	for i := 1; i <= 4; i++ {
		table := models.Table{
			StoreID:  f.Store.ID,
			Number:   fmt.Sprintf("%d", i),
			Status:   string(models.TableAvailable),
			Capacity: 4,
			Shape:    string(models.ShapeRectangle),
		}
		must(db.Create(&table).Error)
		f.Tables = append(f.Tables, table)
	}

	f.Burger = models.Product{StoreID: f.Store.ID, Name: "Burger", Price: decimal.RequireFromString("10.00"), TrackStock: true, StockQuantity: 50, LowStockThreshold: 5, IsActive: true}
	f.Soda = models.Product{StoreID: f.Store.ID, Name: "Soda", Price: decimal.RequireFromString("4.50"), TrackStock: true, StockQuantity: 100, LowStockThreshold: 10, IsActive: true}
	f.Fries = models.Product{StoreID: f.Store.ID, Name: "Fries", Price: decimal.RequireFromString("7.25"), IsActive: true}
	must(db.Create(&f.Burger).Error)
	must(db.Create(&f.Soda).Error)
	must(db.Create(&f.Fries).Error)

	f.Customer = models.Customer{StoreID: f.Store.ID, Name: "Ana", Phone: "555-0101", TotalSpent: decimal.Zero}
	must(db.Create(&f.Customer).Error)

	return f
}

// Table returns the seeded table with the given 1-based number.
func (f *Fixture) Table(number int) models.Table {
	return f.Tables[number-1]
}
