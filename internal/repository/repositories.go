package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository over one gorm handle. Inside
// Transaction the bundle is rebuilt over the transaction handle so all
// reads and writes share the same unit of work.
type Repositories struct {
	db *gorm.DB

	Users         UserRepository
	Tables        TableRepository
	Walls         WallRepository
	Reservations  ReservationRepository
	Categories    CategoryRepository
	Products      ProductRepository
	Customers     CustomerRepository
	Orders        OrderRepository
	OrderItems    OrderItemRepository
	Sales         SaleRepository
	CashRegisters CashRegisterRepository
	Outbox        OutboxRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Users:         NewUserRepository(db),
		Tables:        NewTableRepository(db),
		Walls:         NewWallRepository(db),
		Reservations:  NewReservationRepository(db),
		Categories:    NewCategoryRepository(db),
		Products:      NewProductRepository(db),
		Customers:     NewCustomerRepository(db),
		Orders:        NewOrderRepository(db),
		OrderItems:    NewOrderItemRepository(db),
		Sales:         NewSaleRepository(db),
		CashRegisters: NewCashRegisterRepository(db),
		Outbox:        NewOutboxRepository(db),
	}
}

func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

func (r *Repositories) DB() *gorm.DB {
	return r.db
}
