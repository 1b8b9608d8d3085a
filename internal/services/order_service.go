package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"restaurant_pos/pkg/logger"

	"gorm.io/gorm"
)

type AddItemInput struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

type CreateOrderInput struct {
	OrderType       models.OrderType `json:"order_type"`
	TableID         *uint            `json:"table_id"`
	CustomerID      *uint            `json:"customer_id"`
	DeliveryAddress string           `json:"delivery_address"`
	Items           []AddItemInput   `json:"items"`
}

type PayItemInput struct {
	OrderItemID uint `json:"order_item_id"`
	Quantity    int  `json:"quantity"`
}

type PartialPaymentInput struct {
	Items      []PayItemInput `json:"items"`
	Payments   []PaymentInput `json:"payments"`
	CustomerID *uint          `json:"customer_id"`
}

type PaymentResult struct {
	Order *models.Order `json:"order"`
	Sale  *models.Sale  `json:"sale"`
}

type OrderService interface {
	Create(ctx context.Context, caller Caller, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, caller Caller, id uint) (*models.Order, error)
	GetOpenByTable(ctx context.Context, caller Caller, tableID uint) (*models.Order, error)
	GetActivePOS(ctx context.Context, caller Caller) (*models.Order, error)
	ListHeld(ctx context.Context, caller Caller) ([]models.Order, error)
	ListKitchen(ctx context.Context, caller Caller) ([]models.Order, error)

	// UpsertLineItem merges into the line with the same product and notes,
	// or starts a new line at the product's current price.
	UpsertLineItem(ctx context.Context, caller Caller, orderID uint, input AddItemInput) (*models.Order, error)
	// SetLineItemQuantity overwrites one line's quantity. Zero deletes it.
	SetLineItemQuantity(ctx context.Context, caller Caller, orderID, itemID uint, quantity int) (*models.Order, error)
	RemoveItem(ctx context.Context, caller Caller, orderID, itemID uint) (*models.Order, error)
	UpdateItemStatus(ctx context.Context, caller Caller, itemID uint, status models.OrderItemStatus) (*models.OrderItem, error)

	ProcessPartialPayment(ctx context.Context, caller Caller, orderID uint, input PartialPaymentInput) (*PaymentResult, error)

	Hold(ctx context.Context, caller Caller, orderID uint) (*models.Order, error)
	Resume(ctx context.Context, caller Caller, orderID uint) (*models.Order, error)
	Cancel(ctx context.Context, caller Caller, orderID uint) (*models.Order, error)
	Close(ctx context.Context, caller Caller, orderID uint) (*models.Order, error)
	Transfer(ctx context.Context, caller Caller, orderID, targetTableID uint) (*models.Order, error)
	Merge(ctx context.Context, caller Caller, targetOrderID, sourceOrderID uint) (*models.Order, error)
}

type orderService struct {
	repos   *repository.Repositories
	kitchen KitchenCache
	effects EffectNotifier
	log     *logger.Logger
}

func NewOrderService(repos *repository.Repositories, kitchen KitchenCache, effects EffectNotifier, log *logger.Logger) OrderService {
	if kitchen == nil {
		kitchen = NoopKitchenCache{}
	}
	if effects == nil {
		effects = noopNotifier{}
	}
	return &orderService{repos: repos, kitchen: kitchen, effects: effects, log: log}
}

func (s *orderService) Create(ctx context.Context, caller Caller, input CreateOrderInput) (*models.Order, error) {
	if !input.OrderType.Valid() {
		return nil, validationf("invalid order type %q", input.OrderType)
	}
	if input.OrderType == models.DineIn && input.TableID == nil {
		return nil, validationf("table_id is required for %s orders", models.DineIn)
	}

	var orderID uint
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if input.CustomerID != nil {
			if _, err := tx.Customers.GetByID(ctx, caller.StoreID, *input.CustomerID); err != nil {
				return lookupErr(err, "customer", *input.CustomerID)
			}
		}
		if input.TableID != nil {
			// A reservation being seated is the same as a free table.
			if err := occupyTable(ctx, tx, caller.StoreID, *input.TableID, models.TableAvailable, models.TableReserved); err != nil {
				return err
			}
		}

		order := &models.Order{
			StoreID:         caller.StoreID,
			UserID:          caller.UserID,
			CustomerID:      input.CustomerID,
			TableID:         input.TableID,
			OrderType:       string(input.OrderType),
			Status:          string(models.OrderOpen),
			DeliveryAddress: input.DeliveryAddress,
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range input.Items {
			if err := upsertLine(ctx, tx, caller, order, item); err != nil {
				return err
			}
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order_created", "Order opened", "store_id", caller.StoreID, "order_id", orderID, "order_type", input.OrderType, "table_id", input.TableID)
	invalidateKitchen(ctx, s.kitchen, s.log, caller.StoreID)
	return s.Get(ctx, caller, orderID)
}

func (s *orderService) Get(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	order, err := s.repos.Orders.GetFull(ctx, caller.StoreID, id)
	if err != nil {
		return nil, lookupErr(err, "order", id)
	}
	return order, nil
}

func (s *orderService) GetOpenByTable(ctx context.Context, caller Caller, tableID uint) (*models.Order, error) {
	order, err := s.repos.Orders.GetOpenByTable(ctx, caller.StoreID, tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "open order for table", ID: tableID}
		}
		return nil, fmt.Errorf("failed to load open order for table %d: %w", tableID, err)
	}
	return order, nil
}

func (s *orderService) GetActivePOS(ctx context.Context, caller Caller) (*models.Order, error) {
	order, err := s.repos.Orders.GetActivePOS(ctx, caller.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "active POS order"}
		}
		return nil, fmt.Errorf("failed to load active POS order: %w", err)
	}
	return order, nil
}

func (s *orderService) ListHeld(ctx context.Context, caller Caller) ([]models.Order, error) {
	takeout := models.Takeout
	return s.repos.Orders.ListByStatus(ctx, caller.StoreID, models.OrderOnHold, &takeout, true)
}

// ListKitchen returns open orders oldest first, served from the kitchen
// board cache when it is warm.
func (s *orderService) ListKitchen(ctx context.Context, caller Caller) ([]models.Order, error) {
	orders, ok, err := s.kitchen.GetKitchenBoard(ctx, caller.StoreID)
	if err != nil {
		s.log.Warn("kitchen_cache_read", "Kitchen board cache read failed", "store_id", caller.StoreID, "error", err.Error())
	} else if ok {
		return orders, nil
	}

	orders, err = s.repos.Orders.ListByStatus(ctx, caller.StoreID, models.OrderOpen, nil, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list kitchen orders: %w", err)
	}
	if err := s.kitchen.SetKitchenBoard(ctx, caller.StoreID, orders); err != nil {
		s.log.Warn("kitchen_cache_write", "Kitchen board cache write failed", "store_id", caller.StoreID, "error", err.Error())
	}
	return orders, nil
}

func (s *orderService) UpsertLineItem(ctx context.Context, caller Caller, orderID uint, input AddItemInput) (*models.Order, error) {
	return s.mutateOpenOrder(ctx, caller, orderID, "add items to", func(tx *repository.Repositories, order *models.Order) error {
		return upsertLine(ctx, tx, caller, order, input)
	})
}

func (s *orderService) SetLineItemQuantity(ctx context.Context, caller Caller, orderID, itemID uint, quantity int) (*models.Order, error) {
	if quantity < 0 {
		return nil, validationf("quantity cannot be negative")
	}
	return s.mutateOpenOrder(ctx, caller, orderID, "change items of", func(tx *repository.Repositories, order *models.Order) error {
		item := order.FindItem(itemID)
		if item == nil {
			return notFound("order item", itemID)
		}
		if quantity < item.PaidQuantity {
			return conflictf("item %d already has %d paid, cannot set quantity to %d", itemID, item.PaidQuantity, quantity)
		}
		if quantity == 0 {
			return tx.OrderItems.Delete(ctx, itemID)
		}
		return tx.OrderItems.UpdateQuantity(ctx, itemID, quantity)
	})
}

func (s *orderService) RemoveItem(ctx context.Context, caller Caller, orderID, itemID uint) (*models.Order, error) {
	return s.mutateOpenOrder(ctx, caller, orderID, "remove items from", func(tx *repository.Repositories, order *models.Order) error {
		item := order.FindItem(itemID)
		if item == nil {
			return notFound("order item", itemID)
		}
		if item.PaidQuantity > 0 {
			return conflictf("item %d has paid quantity and cannot be removed", itemID)
		}
		return tx.OrderItems.Delete(ctx, itemID)
	})
}

func (s *orderService) UpdateItemStatus(ctx context.Context, caller Caller, itemID uint, status models.OrderItemStatus) (*models.OrderItem, error) {
	if !status.Valid() {
		return nil, validationf("invalid item status %q", status)
	}

	item, err := s.repos.OrderItems.GetByIDInStore(ctx, caller.StoreID, itemID)
	if err != nil {
		return nil, lookupErr(err, "order item", itemID)
	}
	if err := s.repos.OrderItems.UpdateStatus(ctx, itemID, status); err != nil {
		return nil, fmt.Errorf("failed to update item %d status: %w", itemID, err)
	}
	item.Status = string(status)

	invalidateKitchen(ctx, s.kitchen, s.log, caller.StoreID)
	return item, nil
}

func (s *orderService) ProcessPartialPayment(ctx context.Context, caller Caller, orderID uint, input PartialPaymentInput) (*PaymentResult, error) {
	if len(input.Items) == 0 {
		return nil, validationf("at least one item to pay is required")
	}
	paid, err := paymentTotal(input.Payments)
	if err != nil {
		return nil, err
	}

	var saleID uint
	var becamePaid bool
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		order, err := tx.Orders.GetFullForUpdate(ctx, caller.StoreID, orderID)
		if err != nil {
			return lookupErr(err, "order", orderID)
		}
		if order.Status != string(models.OrderOpen) {
			return conflictf("order %d is %s and cannot be paid", order.ID, order.Status)
		}

		requested := make(map[uint]int)
		itemIDs := make([]uint, 0, len(input.Items))
		for _, pi := range input.Items {
			if pi.Quantity <= 0 {
				return validationf("item %d: quantity must be positive", pi.OrderItemID)
			}
			if order.FindItem(pi.OrderItemID) == nil {
				return notFound("order item", pi.OrderItemID)
			}
			if _, seen := requested[pi.OrderItemID]; !seen {
				itemIDs = append(itemIDs, pi.OrderItemID)
			}
			requested[pi.OrderItemID] += pi.Quantity
		}

		lines := make([]settlementLine, 0, len(itemIDs))
		for _, id := range itemIDs {
			item := order.FindItem(id)
			qty := requested[id]
			if qty > item.PendingQuantity() {
				return conflictf("item %d: requested %d but only %d pending", id, qty, item.PendingQuantity())
			}
			lines = append(lines, settlementLine{
				OrderItemID: id,
				ProductID:   item.ProductID,
				Quantity:    qty,
				Price:       item.PriceAtOrder,
			})
		}

		due := settlementTotal(lines)
		if paid.LessThan(due) {
			return conflictf("insufficient payment: paid %s, due %s", paid.StringFixed(2), due.StringFixed(2))
		}

		customerID := order.CustomerID
		if input.CustomerID != nil {
			if _, err := tx.Customers.GetByID(ctx, caller.StoreID, *input.CustomerID); err != nil {
				return lookupErr(err, "customer", *input.CustomerID)
			}
			customerID = input.CustomerID
		}

		for _, line := range lines {
			ok, err := tx.OrderItems.AddPaid(ctx, line.OrderItemID, line.Quantity)
			if err != nil {
				return fmt.Errorf("failed to apply payment to item %d: %w", line.OrderItemID, err)
			}
			if !ok {
				return conflictf("item %d was paid by another request", line.OrderItemID)
			}
			order.FindItem(line.OrderItemID).PaidQuantity += line.Quantity
		}

		sale, err := settle(ctx, tx, caller, settlement{
			Kind:       models.SalePartialPayment,
			OrderID:    &order.ID,
			CustomerID: customerID,
			Lines:      lines,
			Payments:   input.Payments,
		})
		if err != nil {
			return err
		}
		saleID = sale.ID

		if order.FullyPaid() {
			if err := tx.Orders.UpdateStatus(ctx, order.ID, models.OrderPaid, nil); err != nil {
				return fmt.Errorf("failed to mark order %d paid: %w", order.ID, err)
			}
			if err := releaseTable(ctx, tx, caller.StoreID, order.TableID); err != nil {
				return err
			}
			becamePaid = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.effects.Notify()
	invalidateKitchen(ctx, s.kitchen, s.log, caller.StoreID)
	s.log.Info("order_payment", "Partial payment settled", "store_id", caller.StoreID, "order_id", orderID, "sale_id", saleID, "order_paid", becamePaid)

	order, err := s.Get(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}
	sale, err := s.repos.Sales.GetFull(ctx, caller.StoreID, saleID)
	if err != nil {
		return nil, lookupErr(err, "sale", saleID)
	}
	return &PaymentResult{Order: order, Sale: sale}, nil
}

func (s *orderService) Hold(ctx context.Context, caller Caller, orderID uint) (*models.Order, error) {
	return s.transition(ctx, caller, orderID, models.OrderOnHold, nil)
}

func (s *orderService) Resume(ctx context.Context, caller Caller, orderID uint) (*models.Order, error) {
	return s.transition(ctx, caller, orderID, models.OrderOpen, nil)
}

func (s *orderService) Cancel(ctx context.Context, caller Caller, orderID uint) (*models.Order, error) {
	return s.transition(ctx, caller, orderID, models.OrderCancelled, func(tx *repository.Repositories, order *models.Order) error {
		return cancelOrder(ctx, tx, caller, order)
	})
}

func (s *orderService) Close(ctx context.Context, caller Caller, orderID uint) (*models.Order, error) {
	return s.transition(ctx, caller, orderID, models.OrderClosed, func(tx *repository.Repositories, order *models.Order) error {
		if order.Status != string(models.OrderPaid) {
			return conflictf("order %d is %s; only paid orders can be closed", order.ID, order.Status)
		}
		now := time.Now()
		return tx.Orders.UpdateStatus(ctx, order.ID, models.OrderClosed, &now)
	})
}

func (s *orderService) Transfer(ctx context.Context, caller Caller, orderID, targetTableID uint) (*models.Order, error) {
	return s.mutateOpenOrder(ctx, caller, orderID, "transfer", func(tx *repository.Repositories, order *models.Order) error {
		if order.TableID != nil && *order.TableID == targetTableID {
			return conflictf("order %d is already at table %d", order.ID, targetTableID)
		}
		if err := occupyTable(ctx, tx, caller.StoreID, targetTableID, models.TableAvailable); err != nil {
			return err
		}
		if err := releaseTable(ctx, tx, caller.StoreID, order.TableID); err != nil {
			return err
		}
		if err := tx.Orders.SetTable(ctx, order.ID, targetTableID); err != nil {
			return fmt.Errorf("failed to move order %d: %w", order.ID, err)
		}
		s.log.Info("order_transferred", "Order moved to another table", "store_id", caller.StoreID, "order_id", order.ID, "from_table", order.TableID, "to_table", targetTableID)
		return nil
	})
}

func (s *orderService) Merge(ctx context.Context, caller Caller, targetOrderID, sourceOrderID uint) (*models.Order, error) {
	if targetOrderID == sourceOrderID {
		return nil, validationf("cannot merge order %d into itself", targetOrderID)
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		// Lock in id order so two opposite merges cannot deadlock.
		first, second := targetOrderID, sourceOrderID
		if second < first {
			first, second = second, first
		}
		locked := make(map[uint]*models.Order, 2)
		for _, id := range []uint{first, second} {
			order, err := tx.Orders.GetFullForUpdate(ctx, caller.StoreID, id)
			if err != nil {
				return lookupErr(err, "order", id)
			}
			if order.Status != string(models.OrderOpen) {
				return conflictf("order %d is %s and cannot be merged", order.ID, order.Status)
			}
			locked[id] = order
		}

		moved, err := tx.OrderItems.Reassign(ctx, sourceOrderID, targetOrderID)
		if err != nil {
			return fmt.Errorf("failed to move items from order %d: %w", sourceOrderID, err)
		}
		if err := cancelOrder(ctx, tx, caller, locked[sourceOrderID]); err != nil {
			return err
		}
		s.log.Info("orders_merged", "Order merged", "store_id", caller.StoreID, "target_order_id", targetOrderID, "source_order_id", sourceOrderID, "items_moved", moved)
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateKitchen(ctx, s.kitchen, s.log, caller.StoreID)
	return s.Get(ctx, caller, targetOrderID)
}

// mutateOpenOrder locks the order, requires it to be open and runs fn in the
// same transaction.
func (s *orderService) mutateOpenOrder(ctx context.Context, caller Caller, orderID uint, verb string, fn func(tx *repository.Repositories, order *models.Order) error) (*models.Order, error) {
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		order, err := tx.Orders.GetFullForUpdate(ctx, caller.StoreID, orderID)
		if err != nil {
			return lookupErr(err, "order", orderID)
		}
		if order.Status != string(models.OrderOpen) {
			return conflictf("cannot %s order %d: it is %s", verb, order.ID, order.Status)
		}
		return fn(tx, order)
	})
	if err != nil {
		return nil, err
	}

	invalidateKitchen(ctx, s.kitchen, s.log, caller.StoreID)
	return s.Get(ctx, caller, orderID)
}

// transition checks the lifecycle table and applies the status change. apply,
// when set, replaces the plain status update.
func (s *orderService) transition(ctx context.Context, caller Caller, orderID uint, to models.OrderStatus, apply func(tx *repository.Repositories, order *models.Order) error) (*models.Order, error) {
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		order, err := tx.Orders.GetFullForUpdate(ctx, caller.StoreID, orderID)
		if err != nil {
			return lookupErr(err, "order", orderID)
		}
		if !models.OrderStatus(order.Status).CanTransitionTo(to) {
			return conflictf("order %d cannot go from %s to %s", order.ID, order.Status, to)
		}
		if apply != nil {
			return apply(tx, order)
		}
		return tx.Orders.UpdateStatus(ctx, order.ID, to, nil)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order_status", "Order status changed", "store_id", caller.StoreID, "order_id", orderID, "status", to)
	invalidateKitchen(ctx, s.kitchen, s.log, caller.StoreID)
	return s.Get(ctx, caller, orderID)
}

func cancelOrder(ctx context.Context, tx *repository.Repositories, caller Caller, order *models.Order) error {
	if err := releaseTable(ctx, tx, caller.StoreID, order.TableID); err != nil {
		return err
	}
	now := time.Now()
	if err := tx.Orders.UpdateStatus(ctx, order.ID, models.OrderCancelled, &now); err != nil {
		return fmt.Errorf("failed to cancel order %d: %w", order.ID, err)
	}
	return nil
}

// upsertLine applies one AddItemInput to an order already locked by tx and
// keeps order.Items in step with what was written.
func upsertLine(ctx context.Context, tx *repository.Repositories, caller Caller, order *models.Order, input AddItemInput) error {
	if input.ProductID == 0 {
		return validationf("product_id is required")
	}
	product, err := tx.Products.GetByID(ctx, caller.StoreID, input.ProductID)
	if err != nil {
		return lookupErr(err, "product", input.ProductID)
	}

	for i := range order.Items {
		existing := &order.Items[i]
		if existing.ProductID != input.ProductID || existing.Notes != input.Notes {
			continue
		}

		quantity := existing.Quantity + input.Quantity
		if quantity < existing.PaidQuantity {
			return conflictf("item %d already has %d paid, cannot reduce to %d", existing.ID, existing.PaidQuantity, quantity)
		}
		if quantity <= 0 {
			if err := tx.OrderItems.Delete(ctx, existing.ID); err != nil {
				return fmt.Errorf("failed to delete item %d: %w", existing.ID, err)
			}
			order.Items = append(order.Items[:i], order.Items[i+1:]...)
			return nil
		}
		if err := tx.OrderItems.UpdateQuantity(ctx, existing.ID, quantity); err != nil {
			return fmt.Errorf("failed to update item %d: %w", existing.ID, err)
		}
		existing.Quantity = quantity
		return nil
	}

	if input.Quantity <= 0 {
		return nil
	}
	item := models.OrderItem{
		OrderID:      order.ID,
		ProductID:    product.ID,
		Quantity:     input.Quantity,
		PriceAtOrder: product.Price,
		Status:       string(models.ItemPending),
		Notes:        input.Notes,
	}
	if err := tx.OrderItems.Create(ctx, &item); err != nil {
		return fmt.Errorf("failed to add product %d to order %d: %w", product.ID, order.ID, err)
	}
	order.Items = append(order.Items, item)
	return nil
}

// occupyTable flips a table to occupied only if it is currently in one of
// from. Zero rows changed means either a missing table or a status conflict.
func occupyTable(ctx context.Context, tx *repository.Repositories, storeID, tableID uint, from ...models.TableStatus) error {
	ok, err := tx.Tables.TransitionStatus(ctx, storeID, tableID, models.TableOccupied, from...)
	if err != nil {
		return fmt.Errorf("failed to occupy table %d: %w", tableID, err)
	}
	if ok {
		return nil
	}

	table, err := tx.Tables.GetByID(ctx, storeID, tableID)
	if err != nil {
		return lookupErr(err, "table", tableID)
	}
	return conflictf("table %s is %s", table.Number, table.Status)
}

// releaseTable frees a table the order was occupying. A table that is no
// longer occupied is left alone.
func releaseTable(ctx context.Context, tx *repository.Repositories, storeID uint, tableID *uint) error {
	if tableID == nil {
		return nil
	}
	if _, err := tx.Tables.TransitionStatus(ctx, storeID, *tableID, models.TableAvailable, models.TableOccupied); err != nil {
		return fmt.Errorf("failed to release table %d: %w", *tableID, err)
	}
	return nil
}
