package services

import (
	"context"
	"fmt"
	"time"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/money"
	"restaurant_pos/internal/repository"
	"restaurant_pos/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentInput struct {
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
}

type CheckoutItemInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CheckoutInput struct {
	Items      []CheckoutItemInput `json:"items"`
	Payments   []PaymentInput      `json:"payments"`
	CustomerID *uint               `json:"customer_id"`
	OrderID    *uint               `json:"order_id"`
}

type SaleService interface {
	// Checkout records a direct POS sale. When OrderID is set the order is
	// fully settled and closed in the same transaction.
	Checkout(ctx context.Context, caller Caller, input CheckoutInput) (*models.Sale, error)
	Get(ctx context.Context, caller Caller, id uint) (*models.Sale, error)
	List(ctx context.Context, caller Caller, limit, offset int) ([]models.Sale, error)
	ListByCustomer(ctx context.Context, caller Caller, customerID uint) ([]models.Sale, error)
	ListByOrder(ctx context.Context, caller Caller, orderID uint) ([]models.Sale, error)
}

// EffectNotifier is poked after a settlement commits so queued side effects
// run without waiting for the next tick.
type EffectNotifier interface {
	Notify()
}

type noopNotifier struct{}

func (noopNotifier) Notify() {}

type saleService struct {
	repos   *repository.Repositories
	kitchen KitchenCache
	effects EffectNotifier
	log     *logger.Logger
}

func NewSaleService(repos *repository.Repositories, kitchen KitchenCache, effects EffectNotifier, log *logger.Logger) SaleService {
	if kitchen == nil {
		kitchen = NoopKitchenCache{}
	}
	if effects == nil {
		effects = noopNotifier{}
	}
	return &saleService{repos: repos, kitchen: kitchen, effects: effects, log: log}
}

// settlementLine is one paid increment: quantity of a product at a fixed price.
type settlementLine struct {
	OrderItemID uint
	ProductID   uint
	Quantity    int
	Price       decimal.Decimal
}

type settlement struct {
	Kind       models.SaleKind
	OrderID    *uint
	CustomerID *uint
	Lines      []settlementLine
	Payments   []PaymentInput
}

func settlementTotal(lines []settlementLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(money.LineTotal(line.Price, line.Quantity))
	}
	return money.Round(total)
}

// paymentTotal validates the submitted payments and returns their rounded sum.
func paymentTotal(payments []PaymentInput) (decimal.Decimal, error) {
	if len(payments) == 0 {
		return decimal.Zero, validationf("at least one payment is required")
	}
	total := decimal.Zero
	for i, p := range payments {
		if !p.PaymentMethod.Valid() {
			return decimal.Zero, validationf("payment %d: invalid payment method %q", i+1, p.PaymentMethod)
		}
		if !p.Amount.IsPositive() {
			return decimal.Zero, validationf("payment %d: amount must be positive", i+1)
		}
		total = total.Add(money.Round(p.Amount))
	}
	return total, nil
}

// settle writes the sale, its items and payments, and queues the sale's side
// effects, all on the caller's transaction. Validation is the caller's job.
func settle(ctx context.Context, tx *repository.Repositories, caller Caller, s settlement) (*models.Sale, error) {
	sale := &models.Sale{
		Reference:     uuid.NewString(),
		StoreID:       caller.StoreID,
		UserID:        caller.UserID,
		CustomerID:    s.CustomerID,
		OrderID:       s.OrderID,
		Kind:          string(s.Kind),
		TotalAmount:   settlementTotal(s.Lines),
		PaymentMethod: string(s.Payments[0].PaymentMethod),
	}
	for _, line := range s.Lines {
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			PriceAtSale: line.Price,
		})
	}
	for _, p := range s.Payments {
		sale.Payments = append(sale.Payments, models.Payment{
			OrderID:       s.OrderID,
			Amount:        money.Round(p.Amount),
			PaymentMethod: string(p.PaymentMethod),
			Status:        models.PaymentApproved,
		})
	}

	if err := tx.Sales.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	now := time.Now()
	jobs := make([]models.SideEffectJob, 0, len(models.SaleSideEffects))
	for _, kind := range models.SaleSideEffects {
		jobs = append(jobs, models.SideEffectJob{
			StoreID:       caller.StoreID,
			SaleID:        sale.ID,
			Kind:          string(kind),
			Status:        string(models.JobPending),
			NextAttemptAt: now,
		})
	}
	if err := tx.Outbox.Enqueue(ctx, jobs); err != nil {
		return nil, fmt.Errorf("failed to enqueue side effects for sale %d: %w", sale.ID, err)
	}

	return sale, nil
}

func (s *saleService) Checkout(ctx context.Context, caller Caller, input CheckoutInput) (*models.Sale, error) {
	if len(input.Items) == 0 {
		return nil, validationf("at least one item is required")
	}
	paid, err := paymentTotal(input.Payments)
	if err != nil {
		return nil, err
	}

	requested := make(map[uint]int)
	productIDs := make([]uint, 0, len(input.Items))
	for i, item := range input.Items {
		if item.ProductID == 0 {
			return nil, validationf("item %d: product_id is required", i+1)
		}
		if item.Quantity <= 0 {
			return nil, validationf("item %d: quantity must be positive", i+1)
		}
		if _, seen := requested[item.ProductID]; !seen {
			productIDs = append(productIDs, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
	}

	var saleID uint
	var closedOrder bool
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		products, err := tx.Products.GetByIDs(ctx, caller.StoreID, productIDs)
		if err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}

		lines := make([]settlementLine, 0, len(productIDs))
		for _, id := range productIDs {
			product, ok := products[id]
			if !ok {
				return notFound("product", id)
			}
			lines = append(lines, settlementLine{ProductID: id, Quantity: requested[id], Price: product.Price})
		}

		total := settlementTotal(lines)
		if !money.Covers(paid, total, money.DirectSaleTolerance) {
			return conflictf("insufficient payment: paid %s, due %s", paid.StringFixed(2), total.StringFixed(2))
		}

		customerID := input.CustomerID
		var order *models.Order
		if input.OrderID != nil {
			order, err = tx.Orders.GetFullForUpdate(ctx, caller.StoreID, *input.OrderID)
			if err != nil {
				return lookupErr(err, "order", *input.OrderID)
			}
			// A paid order has already been charged and has given up its table.
			if order.Status != string(models.OrderOpen) {
				return conflictf("order %d is %s; only open orders can be checked out", order.ID, order.Status)
			}
			if customerID == nil {
				customerID = order.CustomerID
			}
		}
		if input.CustomerID != nil {
			if _, err := tx.Customers.GetByID(ctx, caller.StoreID, *input.CustomerID); err != nil {
				return lookupErr(err, "customer", *input.CustomerID)
			}
		}

		sale, err := settle(ctx, tx, caller, settlement{
			Kind:       models.SaleCheckout,
			OrderID:    input.OrderID,
			CustomerID: customerID,
			Lines:      lines,
			Payments:   input.Payments,
		})
		if err != nil {
			return err
		}
		saleID = sale.ID

		if order != nil {
			if err := tx.OrderItems.MarkAllPaid(ctx, order.ID); err != nil {
				return fmt.Errorf("failed to mark order %d paid: %w", order.ID, err)
			}
			if err := releaseTable(ctx, tx, caller.StoreID, order.TableID); err != nil {
				return err
			}
			now := time.Now()
			if err := tx.Orders.UpdateStatus(ctx, order.ID, models.OrderClosed, &now); err != nil {
				return fmt.Errorf("failed to close order %d: %w", order.ID, err)
			}
			closedOrder = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.effects.Notify()
	if closedOrder {
		invalidateKitchen(ctx, s.kitchen, s.log, caller.StoreID)
	}
	s.log.Info("sale_recorded", "Direct checkout recorded", "store_id", caller.StoreID, "sale_id", saleID, "order_id", input.OrderID)

	return s.Get(ctx, caller, saleID)
}

func (s *saleService) Get(ctx context.Context, caller Caller, id uint) (*models.Sale, error) {
	sale, err := s.repos.Sales.GetFull(ctx, caller.StoreID, id)
	if err != nil {
		return nil, lookupErr(err, "sale", id)
	}
	return sale, nil
}

func (s *saleService) List(ctx context.Context, caller Caller, limit, offset int) ([]models.Sale, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repos.Sales.List(ctx, caller.StoreID, limit, offset)
}

func (s *saleService) ListByCustomer(ctx context.Context, caller Caller, customerID uint) ([]models.Sale, error) {
	if _, err := s.repos.Customers.GetByID(ctx, caller.StoreID, customerID); err != nil {
		return nil, lookupErr(err, "customer", customerID)
	}
	return s.repos.Sales.ListByCustomer(ctx, caller.StoreID, customerID)
}

func (s *saleService) ListByOrder(ctx context.Context, caller Caller, orderID uint) ([]models.Sale, error) {
	if _, err := s.repos.Orders.GetFull(ctx, caller.StoreID, orderID); err != nil {
		return nil, lookupErr(err, "order", orderID)
	}
	return s.repos.Sales.ListByOrder(ctx, caller.StoreID, orderID)
}
