package migrations

import (
	"testing"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/testutil"
	"restaurant_pos/pkg/logger"
)

func TestRunMigrations_SeedsOnce(t *testing.T) {
	db := testutil.NewDB(t)
	log := logger.Discard()

	if err := RunMigrations(db, false, "secret123", log); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(db, false, "secret123", log); err != nil {
		t.Fatalf("second run: %v", err)
	}

	var stores, tables, products, categories, uncategorised int64
	db.Model(&models.Store{}).Count(&stores)
	db.Model(&models.Table{}).Count(&tables)
	db.Model(&models.Product{}).Count(&products)
	db.Model(&models.Category{}).Count(&categories)
	db.Model(&models.Product{}).Where("category_id IS NULL").Count(&uncategorised)
	if stores != 1 || tables != 6 || products != 6 || categories != 2 {
		t.Errorf("expected 1 store, 6 tables, 6 products, 2 categories; got %d, %d, %d, %d", stores, tables, products, categories)
	}
	if uncategorised != 0 {
		t.Errorf("%d seeded products have no category", uncategorised)
	}

	var admin models.User
	if err := db.Where("username = ?", DefaultAdminUsername).First(&admin).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if admin.Role != string(models.SuperAdmin) || admin.PasswordHash == "secret123" {
		t.Errorf("unexpected admin %+v", admin)
	}
}

func TestRunMigrations_RejectsShortPassword(t *testing.T) {
	db := testutil.NewDB(t)

	if err := RunMigrations(db, false, "123", logger.Discard()); err == nil {
		t.Fatal("expected an error for a short admin password")
	}

	var stores int64
	db.Model(&models.Store{}).Count(&stores)
	if stores != 0 {
		t.Errorf("expected the seed to roll back, found %d stores", stores)
	}
}
