package services

import (
	"context"
	"fmt"
	"strings"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
)

type CustomerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type CRMService interface {
	Create(ctx context.Context, caller Caller, input CustomerInput) (*models.Customer, error)
	Get(ctx context.Context, caller Caller, id uint) (*models.Customer, error)
	List(ctx context.Context, caller Caller) ([]models.Customer, error)
	// UpdateCustomerStatsFromSale adds the sale total to the customer's spend
	// and one loyalty point per whole currency unit.
	UpdateCustomerStatsFromSale(ctx context.Context, tx *repository.Repositories, sale *models.Sale) error
}

type crmService struct {
	repos *repository.Repositories
}

func NewCRMService(repos *repository.Repositories) CRMService {
	return &crmService{repos: repos}
}

func (s *crmService) Create(ctx context.Context, caller Caller, input CustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationf("customer name is required")
	}

	customer := &models.Customer{
		StoreID: caller.StoreID,
		Name:    name,
		Phone:   strings.TrimSpace(input.Phone),
		Email:   strings.TrimSpace(input.Email),
	}
	if err := s.repos.Customers.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (s *crmService) Get(ctx context.Context, caller Caller, id uint) (*models.Customer, error) {
	customer, err := s.repos.Customers.GetByID(ctx, caller.StoreID, id)
	if err != nil {
		return nil, lookupErr(err, "customer", id)
	}
	return customer, nil
}

func (s *crmService) List(ctx context.Context, caller Caller) ([]models.Customer, error) {
	return s.repos.Customers.GetByStore(ctx, caller.StoreID)
}

func (s *crmService) UpdateCustomerStatsFromSale(ctx context.Context, tx *repository.Repositories, sale *models.Sale) error {
	if sale.CustomerID == nil {
		return nil
	}
	points := int(sale.TotalAmount.Floor().IntPart())
	if err := tx.Customers.ApplySale(ctx, *sale.CustomerID, sale.TotalAmount, points, sale.CreatedAt); err != nil {
		return fmt.Errorf("failed to update customer %d: %w", *sale.CustomerID, err)
	}
	return nil
}
