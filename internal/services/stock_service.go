package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"restaurant_pos/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProductInput struct {
	Name              string          `json:"name"`
	CategoryID        *uint           `json:"category_id"`
	Price             decimal.Decimal `json:"price"`
	TrackStock        bool            `json:"track_stock"`
	StockQuantity     int             `json:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

type StockService interface {
	CreateProduct(ctx context.Context, caller Caller, input CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, caller Caller, id uint) (*models.Product, error)
	// ListProducts lists the menu, or one category of it when categoryID is set.
	ListProducts(ctx context.Context, caller Caller, categoryID *uint) ([]models.Product, error)
	LowStock(ctx context.Context, caller Caller) ([]models.Product, error)
	Movements(ctx context.Context, caller Caller, productID uint) ([]models.StockMovement, error)
	// AddStockEntry records goods received. Negative quantities are
	// adjustments (breakage, counting corrections).
	AddStockEntry(ctx context.Context, caller Caller, productID uint, quantity int, note string) (*models.Product, error)
	ListCategories(ctx context.Context, caller Caller) ([]models.Category, error)
	CreateCategory(ctx context.Context, caller Caller, name string) (*models.Category, error)
	// DeleteCategory keeps the category's products, uncategorised.
	DeleteCategory(ctx context.Context, caller Caller, id uint) error
	// DeductStockFromSale runs on the side-effect transaction for a sale.
	DeductStockFromSale(ctx context.Context, tx *repository.Repositories, sale *models.Sale) error
}

type stockService struct {
	repos *repository.Repositories
	log   *logger.Logger
}

func NewStockService(repos *repository.Repositories, log *logger.Logger) StockService {
	return &stockService{repos: repos, log: log}
}

func (s *stockService) CreateProduct(ctx context.Context, caller Caller, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationf("product name is required")
	}
	if input.Price.IsNegative() {
		return nil, validationf("price cannot be negative")
	}
	if input.StockQuantity < 0 || input.LowStockThreshold < 0 {
		return nil, validationf("stock quantities cannot be negative")
	}
	if input.CategoryID != nil {
		if _, err := s.repos.Categories.GetByID(ctx, caller.StoreID, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationf("category %d does not exist", *input.CategoryID)
			}
			return nil, fmt.Errorf("failed to check category %d: %w", *input.CategoryID, err)
		}
	}

	product := &models.Product{
		StoreID:           caller.StoreID,
		Name:              name,
		CategoryID:        input.CategoryID,
		Price:             input.Price.Round(2),
		TrackStock:        input.TrackStock,
		StockQuantity:     input.StockQuantity,
		LowStockThreshold: input.LowStockThreshold,
		IsActive:          true,
	}
	if err := s.repos.Products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (s *stockService) GetProduct(ctx context.Context, caller Caller, id uint) (*models.Product, error) {
	product, err := s.repos.Products.GetByID(ctx, caller.StoreID, id)
	if err != nil {
		return nil, lookupErr(err, "product", id)
	}
	return product, nil
}

func (s *stockService) ListProducts(ctx context.Context, caller Caller, categoryID *uint) ([]models.Product, error) {
	return s.repos.Products.GetByStore(ctx, caller.StoreID, categoryID)
}

func (s *stockService) ListCategories(ctx context.Context, caller Caller) ([]models.Category, error) {
	return s.repos.Categories.GetByStore(ctx, caller.StoreID)
}

func (s *stockService) CreateCategory(ctx context.Context, caller Caller, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("category name is required")
	}

	existing, err := s.repos.Categories.GetByStore(ctx, caller.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, name) {
			return nil, conflictf("category %q already exists", c.Name)
		}
	}

	category := &models.Category{StoreID: caller.StoreID, Name: name}
	if err := s.repos.Categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *stockService) DeleteCategory(ctx context.Context, caller Caller, id uint) error {
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Categories.GetByID(ctx, caller.StoreID, id); err != nil {
			return lookupErr(err, "category", id)
		}
		if err := tx.Categories.Delete(ctx, caller.StoreID, id); err != nil {
			return fmt.Errorf("failed to delete category %d: %w", id, err)
		}
		return nil
	})
}

func (s *stockService) LowStock(ctx context.Context, caller Caller) ([]models.Product, error) {
	return s.repos.Products.GetLowStock(ctx, caller.StoreID)
}

func (s *stockService) Movements(ctx context.Context, caller Caller, productID uint) ([]models.StockMovement, error) {
	if _, err := s.GetProduct(ctx, caller, productID); err != nil {
		return nil, err
	}
	return s.repos.Products.GetMovements(ctx, caller.StoreID, productID)
}

func (s *stockService) AddStockEntry(ctx context.Context, caller Caller, productID uint, quantity int, note string) (*models.Product, error) {
	if quantity == 0 {
		return nil, validationf("quantity cannot be zero")
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		product, err := tx.Products.GetByID(ctx, caller.StoreID, productID)
		if err != nil {
			return lookupErr(err, "product", productID)
		}
		if !product.TrackStock {
			return conflictf("product %d does not track stock", productID)
		}

		reason := models.StockReasonEntry
		if quantity < 0 {
			reason = models.StockReasonAdjustment
		}
		if err := tx.Products.AdjustStock(ctx, productID, quantity); err != nil {
			return fmt.Errorf("failed to adjust stock of product %d: %w", productID, err)
		}
		return tx.Products.CreateMovement(ctx, &models.StockMovement{
			StoreID:   caller.StoreID,
			ProductID: productID,
			UserID:    caller.UserID,
			Quantity:  quantity,
			Reason:    string(reason),
			Note:      note,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, caller, productID)
}

func (s *stockService) DeductStockFromSale(ctx context.Context, tx *repository.Repositories, sale *models.Sale) error {
	if len(sale.Items) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(sale.Items))
	for _, item := range sale.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := tx.Products.GetByIDs(ctx, sale.StoreID, ids)
	if err != nil {
		return fmt.Errorf("failed to load products for sale %d: %w", sale.ID, err)
	}

	for _, item := range sale.Items {
		product, ok := products[item.ProductID]
		if !ok || !product.TrackStock {
			continue
		}

		if err := tx.Products.AdjustStock(ctx, product.ID, -item.Quantity); err != nil {
			return fmt.Errorf("failed to deduct stock of product %d: %w", product.ID, err)
		}
		saleID := sale.ID
		err := tx.Products.CreateMovement(ctx, &models.StockMovement{
			StoreID:   sale.StoreID,
			ProductID: product.ID,
			SaleID:    &saleID,
			UserID:    sale.UserID,
			Quantity:  -item.Quantity,
			Reason:    string(models.StockReasonSale),
		})
		if err != nil {
			return fmt.Errorf("failed to record stock movement for product %d: %w", product.ID, err)
		}

		remaining := product.StockQuantity - item.Quantity
		product.StockQuantity = remaining
		products[product.ID] = product
		if remaining < 0 {
			s.log.Warn("stock_negative", "Stock went below zero", "store_id", sale.StoreID, "product_id", product.ID, "stock_quantity", remaining, "sale_id", sale.ID)
		}
	}
	return nil
}
