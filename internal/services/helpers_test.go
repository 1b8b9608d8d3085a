package services

import (
	"context"
	"sync"
	"testing"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/testutil"
	"restaurant_pos/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	repos     *repository.Repositories
	store     *testutil.Fixture
	other     *testutil.Fixture
	kitchen   *fakeKitchenCache
	orders    OrderService
	sales     SaleService
	stock     StockService
	cash      CashRegisterService
	crm       CRMService
	tables    TableService
	bookings  ReservationService
	reports   ReportService
	events    *fakePublisher
	processor *SideEffectProcessor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	log := logger.Discard()
	repos := repository.NewRepositories(db)

	env := &testEnv{
		db:      db,
		repos:   repos,
		store:   testutil.Seed(t, db, "main"),
		other:   testutil.Seed(t, db, "other"),
		kitchen: newFakeKitchenCache(),
		events:  &fakePublisher{},
	}
	env.stock = NewStockService(repos, log)
	env.cash = NewCashRegisterService(repos, log)
	env.crm = NewCRMService(repos)
	env.tables = NewTableService(repos)
	env.bookings = NewReservationService(repos, log)
	env.reports = NewReportService(repos.Sales)
	env.processor = NewSideEffectProcessor(repos, env.stock, env.cash, env.crm, env.events, ProcessorConfig{MaxAttempts: 3}, log)
	env.orders = NewOrderService(repos, env.kitchen, env.processor, log)
	env.sales = NewSaleService(repos, env.kitchen, env.processor, log)
	return env
}

func (e *testEnv) cashier() Caller {
	return Caller{StoreID: e.store.Store.ID, UserID: e.store.Cashier.ID, Role: models.Cashier}
}

func (e *testEnv) outsider() Caller {
	return Caller{StoreID: e.other.Store.ID, UserID: e.other.Cashier.ID, Role: models.Cashier}
}

func (e *testEnv) tableStatus(t *testing.T, id uint) models.TableStatus {
	t.Helper()
	var table models.Table
	if err := e.db.First(&table, id).Error; err != nil {
		t.Fatalf("load table %d: %v", id, err)
	}
	return models.TableStatus(table.Status)
}

func (e *testEnv) countSales(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&models.Sale{}).Count(&n).Error; err != nil {
		t.Fatalf("count sales: %v", err)
	}
	return n
}

// dineIn opens a DINE_IN order on the given table number with the items.
func (e *testEnv) dineIn(t *testing.T, table int, items ...AddItemInput) *models.Order {
	t.Helper()
	tableID := e.store.Table(table).ID
	order, err := e.orders.Create(context.Background(), e.cashier(), CreateOrderInput{
		OrderType: models.DineIn,
		TableID:   &tableID,
		Items:     items,
	})
	if err != nil {
		t.Fatalf("create dine-in order: %v", err)
	}
	return order
}

func cash(amount string) []PaymentInput {
	return []PaymentInput{{Amount: decimal.RequireFromString(amount), PaymentMethod: models.PaymentCash}}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertInvariants(t *testing.T, order *models.Order) {
	t.Helper()
	for _, item := range order.Items {
		if item.PaidQuantity < 0 || item.PaidQuantity > item.Quantity {
			t.Errorf("item %d: paid_quantity %d outside [0, %d]", item.ID, item.PaidQuantity, item.Quantity)
		}
	}
	if (order.Status == string(models.OrderPaid)) != order.FullyPaid() && order.Status != string(models.OrderClosed) {
		t.Errorf("order %d status %s disagrees with FullyPaid()=%v", order.ID, order.Status, order.FullyPaid())
	}
}

type fakeKitchenCache struct {
	mu          sync.Mutex
	boards      map[uint][]models.Order
	hits        int
	invalidated int
}

func newFakeKitchenCache() *fakeKitchenCache {
	return &fakeKitchenCache{boards: make(map[uint][]models.Order)}
}

func (c *fakeKitchenCache) GetKitchenBoard(_ context.Context, storeID uint) ([]models.Order, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	board, ok := c.boards[storeID]
	if ok {
		c.hits++
	}
	return board, ok, nil
}

func (c *fakeKitchenCache) SetKitchenBoard(_ context.Context, storeID uint, orders []models.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boards[storeID] = orders
	return nil
}

func (c *fakeKitchenCache) InvalidateKitchenBoard(_ context.Context, storeID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.boards, storeID)
	c.invalidated++
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []uint
	failWith  error
}

func (p *fakePublisher) PublishSaleSettled(_ context.Context, sale *models.Sale) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, sale.ID)
	return nil
}
