package services

import (
	"context"
	"testing"

	"restaurant_pos/internal/models"
)

func TestSplitPaymentOnTableFour(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	table4 := env.store.Table(4).ID

	order := env.dineIn(t, 4, AddItemInput{ProductID: env.store.Burger.ID, Quantity: 2})
	if len(order.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(order.Items))
	}
	item := order.Items[0]
	if !item.PriceAtOrder.Equal(dec("10.00")) {
		t.Fatalf("price_at_order = %s, want 10.00", item.PriceAtOrder)
	}
	if got := env.tableStatus(t, table4); got != models.TableOccupied {
		t.Fatalf("table 4 should be occupied after create, got %s", got)
	}

	res, err := env.orders.ProcessPartialPayment(ctx, env.cashier(), order.ID, PartialPaymentInput{
		Items:    []PayItemInput{{OrderItemID: item.ID, Quantity: 1}},
		Payments: cash("10.00"),
	})
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if res.Order.Status != string(models.OrderOpen) {
		t.Errorf("order should stay open, got %s", res.Order.Status)
	}
	if res.Order.Items[0].PaidQuantity != 1 {
		t.Errorf("paid_quantity = %d, want 1", res.Order.Items[0].PaidQuantity)
	}
	if !res.Sale.TotalAmount.Equal(dec("10.00")) {
		t.Errorf("sale total = %s, want 10.00", res.Sale.TotalAmount)
	}
	if res.Sale.Kind != string(models.SalePartialPayment) || res.Sale.OrderID == nil || *res.Sale.OrderID != order.ID {
		t.Errorf("unexpected sale tagging: kind=%s order=%v", res.Sale.Kind, res.Sale.OrderID)
	}
	if got := env.tableStatus(t, table4); got != models.TableOccupied {
		t.Errorf("table 4 should still be occupied, got %s", got)
	}
	if !res.Order.TotalAmount.Equal(dec("20.00")) || !res.Order.AmountDue.Equal(dec("10.00")) {
		t.Errorf("total=%s due=%s, want 20.00 and 10.00", res.Order.TotalAmount, res.Order.AmountDue)
	}
	assertInvariants(t, res.Order)

	res, err = env.orders.ProcessPartialPayment(ctx, env.cashier(), order.ID, PartialPaymentInput{
		Items:    []PayItemInput{{OrderItemID: item.ID, Quantity: 1}},
		Payments: cash("10.00"),
	})
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if res.Order.Status != string(models.OrderPaid) {
		t.Errorf("order should be paid, got %s", res.Order.Status)
	}
	if !res.Order.AmountDue.IsZero() {
		t.Errorf("nothing should be due, got %s", res.Order.AmountDue)
	}
	if got := env.tableStatus(t, table4); got != models.TableAvailable {
		t.Errorf("table 4 should be available, got %s", got)
	}
	if n := env.countSales(t); n != 2 {
		t.Errorf("expected 2 sales, got %d", n)
	}
	assertInvariants(t, res.Order)
}

func TestPayMoreThanPendingIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := env.dineIn(t, 1, AddItemInput{ProductID: env.store.Burger.ID, Quantity: 2})
	_, err := env.orders.ProcessPartialPayment(ctx, env.cashier(), order.ID, PartialPaymentInput{
		Items:    []PayItemInput{{OrderItemID: order.Items[0].ID, Quantity: 3}},
		Payments: cash("30.00"),
	})
	if !IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if n := env.countSales(t); n != 0 {
		t.Errorf("no sale should exist, got %d", n)
	}

	reloaded, _ := env.orders.Get(ctx, env.cashier(), order.ID)
	if reloaded.Items[0].PaidQuantity != 0 {
		t.Errorf("paid_quantity changed to %d", reloaded.Items[0].PaidQuantity)
	}
}

func TestDuplicateItemIdsAreSummedBeforeCheck(t *testing.T) {
	env := newTestEnv(t)
	order := env.dineIn(t, 1, AddItemInput{ProductID: env.store.Burger.ID, Quantity: 2})
	itemID := order.Items[0].ID

	_, err := env.orders.ProcessPartialPayment(context.Background(), env.cashier(), order.ID, PartialPaymentInput{
		Items:    []PayItemInput{{OrderItemID: itemID, Quantity: 1}, {OrderItemID: itemID, Quantity: 2}},
		Payments: cash("30.00"),
	})
	if !IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestPartialPaymentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.dineIn(t, 1, AddItemInput{ProductID: env.store.Burger.ID, Quantity: 2})
	itemID := order.Items[0].ID

	tests := []struct {
		name  string
		input PartialPaymentInput
		check func(error) bool
	}{
		{"no items", PartialPaymentInput{Payments: cash("10")}, IsValidation},
		{"no payments", PartialPaymentInput{Items: []PayItemInput{{OrderItemID: itemID, Quantity: 1}}}, IsValidation},
		{"zero quantity", PartialPaymentInput{Items: []PayItemInput{{OrderItemID: itemID, Quantity: 0}}, Payments: cash("10")}, IsValidation},
		{"negative amount", PartialPaymentInput{Items: []PayItemInput{{OrderItemID: itemID, Quantity: 1}}, Payments: cash("-1")}, IsValidation},
		{"bad method", PartialPaymentInput{Items: []PayItemInput{{OrderItemID: itemID, Quantity: 1}}, Payments: []PaymentInput{{Amount: dec("10"), PaymentMethod: "barter"}}}, IsValidation},
		{"unknown item", PartialPaymentInput{Items: []PayItemInput{{OrderItemID: 9999, Quantity: 1}}, Payments: cash("10")}, IsNotFound},
		{"insufficient by a cent", PartialPaymentInput{Items: []PayItemInput{{OrderItemID: itemID, Quantity: 1}}, Payments: cash("9.99")}, IsConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.orders.ProcessPartialPayment(ctx, env.cashier(), order.ID, tt.input)
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
	if n := env.countSales(t); n != 0 {
		t.Errorf("failed payments must not create sales, got %d", n)
	}
}

func TestSplitAcrossPaymentMethods(t *testing.T) {
	env := newTestEnv(t)
	order := env.dineIn(t, 2,
		AddItemInput{ProductID: env.store.Burger.ID, Quantity: 1},
		AddItemInput{ProductID: env.store.Fries.ID, Quantity: 1},
	)

	res, err := env.orders.ProcessPartialPayment(context.Background(), env.cashier(), order.ID, PartialPaymentInput{
		Items: []PayItemInput{
			{OrderItemID: order.Items[0].ID, Quantity: 1},
			{OrderItemID: order.Items[1].ID, Quantity: 1},
		},
		Payments: []PaymentInput{
			{Amount: dec("7.25"), PaymentMethod: models.PaymentPix},
			{Amount: dec("10.00"), PaymentMethod: models.PaymentCreditCard},
		},
	})
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if !res.Sale.TotalAmount.Equal(dec("17.25")) {
		t.Errorf("sale total = %s, want 17.25", res.Sale.TotalAmount)
	}
	if res.Sale.PaymentMethod != string(models.PaymentPix) {
		t.Errorf("primary method = %s, want first payment's method", res.Sale.PaymentMethod)
	}
	if len(res.Sale.Payments) != 2 || len(res.Sale.Items) != 2 {
		t.Errorf("expected 2 payments and 2 sale items, got %d and %d", len(res.Sale.Payments), len(res.Sale.Items))
	}
	if res.Order.Status != string(models.OrderPaid) {
		t.Errorf("order should be paid, got %s", res.Order.Status)
	}
}

func TestPaymentOnNonOpenOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.dineIn(t, 1, AddItemInput{ProductID: env.store.Burger.ID, Quantity: 1})

	if _, err := env.orders.Hold(ctx, env.cashier(), order.ID); err != nil {
		t.Fatalf("hold: %v", err)
	}
	_, err := env.orders.ProcessPartialPayment(ctx, env.cashier(), order.ID, PartialPaymentInput{
		Items:    []PayItemInput{{OrderItemID: order.Items[0].ID, Quantity: 1}},
		Payments: cash("10"),
	})
	if !IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestDineInWithoutTableIsValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.Create(context.Background(), env.cashier(), CreateOrderInput{
		OrderType: models.DineIn,
		Items:     []AddItemInput{{ProductID: env.store.Burger.ID, Quantity: 1}},
	})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	var n int64
	env.db.Model(&models.Order{}).Count(&n)
	if n != 0 {
		t.Errorf("no order should be written, got %d", n)
	}
	for i := 1; i <= 4; i++ {
		if got := env.tableStatus(t, env.store.Table(i).ID); got != models.TableAvailable {
			t.Errorf("table %d changed to %s", i, got)
		}
	}
}

func TestCreateOrderTableRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.dineIn(t, 1)
	occupied := env.store.Table(1).ID
	_, err := env.orders.Create(ctx, env.cashier(), CreateOrderInput{OrderType: models.DineIn, TableID: &occupied})
	if !IsConflict(err) {
		t.Errorf("occupied table: expected ConflictError, got %v", err)
	}

	foreign := env.other.Table(2).ID
	_, err = env.orders.Create(ctx, env.cashier(), CreateOrderInput{OrderType: models.DineIn, TableID: &foreign})
	if !IsNotFound(err) {
		t.Errorf("other store's table: expected NotFoundError, got %v", err)
	}
	if got := env.tableStatus(t, foreign); got != models.TableAvailable {
		t.Errorf("other store's table changed to %s", got)
	}

	reserved := env.store.Table(3).ID
	if _, err := env.tables.SetStatus(ctx, env.cashier(), reserved, models.TableReserved); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := env.orders.Create(ctx, env.cashier(), CreateOrderInput{OrderType: models.DineIn, TableID: &reserved}); err != nil {
		t.Errorf("seating a reservation should work, got %v", err)
	}
	if got := env.tableStatus(t, reserved); got != models.TableOccupied {
		t.Errorf("reserved table should be occupied now, got %s", got)
	}

	_, err = env.orders.Create(ctx, env.cashier(), CreateOrderInput{OrderType: "BRUNCH"})
	if !IsValidation(err) {
		t.Errorf("bad order type: expected ValidationError, got %v", err)
	}
}

func TestCreateRollsBackTableOnBadItem(t *testing.T) {
	env := newTestEnv(t)
	tableID := env.store.Table(2).ID

	_, err := env.orders.Create(context.Background(), env.cashier(), CreateOrderInput{
		OrderType: models.DineIn,
		TableID:   &tableID,
		Items:     []AddItemInput{{ProductID: env.other.Burger.ID, Quantity: 1}},
	})
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError for other store's product, got %v", err)
	}
	if got := env.tableStatus(t, tableID); got != models.TableAvailable {
		t.Errorf("table must stay available when create fails, got %s", got)
	}
}

func TestUpsertLineItemMergesByProductAndNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.dineIn(t, 1)
	burger := env.store.Burger.ID

	for i := 0; i < 2; i++ {
		if _, err := env.orders.UpsertLineItem(ctx, env.cashier(), order.ID, AddItemInput{ProductID: burger, Quantity: 2}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	got, err := env.orders.UpsertLineItem(ctx, env.cashier(), order.ID, AddItemInput{ProductID: burger, Quantity: 1, Notes: "no onions"})
	if err != nil {
		t.Fatalf("add with notes: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got.Items))
	}
	if got.Items[0].Quantity != 4 || got.Items[0].Notes != "" {
		t.Errorf("plain line = %d %q, want 4 \"\"", got.Items[0].Quantity, got.Items[0].Notes)
	}
	if got.Items[1].Quantity != 1 || got.Items[1].Notes != "no onions" {
		t.Errorf("noted line = %d %q", got.Items[1].Quantity, got.Items[1].Notes)
	}

	got, err = env.orders.UpsertLineItem(ctx, env.cashier(), order.ID, AddItemInput{ProductID: burger, Quantity: -4})
	if err != nil {
		t.Fatalf("reduce to zero: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Notes != "no onions" {
		t.Fatalf("line should be deleted at zero, items = %+v", got.Items)
	}

	got, err = env.orders.UpsertLineItem(ctx, env.cashier(), order.ID, AddItemInput{ProductID: env.store.Soda.ID, Quantity: 0})
	if err != nil {
		t.Fatalf("zero quantity add: %v", err)
	}
	if len(got.Items) != 1 {
		t.Errorf("quantity 0 must not create a row, got %d lines", len(got.Items))
	}
}

func TestUpsertSnapshotsPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.dineIn(t, 1, AddItemInput{ProductID: env.store.Soda.ID, Quantity: 1})

	env.db.Model(&models.Product{}).Where("id = ?", env.store.Soda.ID).Update("price", dec("6.00"))

	got, err := env.orders.UpsertLineItem(ctx, env.cashier(), order.ID, AddItemInput{ProductID: env.store.Soda.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !got.Items[0].PriceAtOrder.Equal(dec("4.50")) {
		t.Errorf("price_at_order changed to %s", got.Items[0].PriceAtOrder)
	}
}

func TestUpsertCannotDropBelowPaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.dineIn(t, 1, AddItemInput{ProductID: env.store.Burger.ID, Quantity: 3})

	_, err := env.orders.ProcessPartialPayment(ctx, env.cashier(), order.ID, PartialPaymentInput{
		Items:    []PayItemInput{{OrderItemID: order.Items[0].ID, Quantity: 2}},
		Payments: cash("20.00"),
	})
	if err != nil {
		t.Fatalf("payment: %v", err)
	}

	_, err = env.orders.UpsertLineItem(ctx, env.cashier(), order.ID, AddItemInput{ProductID: env.store.Burger.ID, Quantity: -2})
	if !IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	got, err := env.orders.UpsertLineItem(ctx, env.cashier(), order.ID, AddItemInput{ProductID: env.store.Burger.ID, Quantity: -1})
	if err != nil {
		t.Fatalf("reducing to paid quantity should work: %v", err)
	}
	if got.Status != string(models.OrderOpen) {
		t.Errorf("status = %s", got.Status)
	}
	assertInvariants(t, got)
}

func TestSetLineItemQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.dineIn(t, 1,
		AddItemInput{ProductID: env.store.Burger.ID, Quantity: 2},
		AddItemInput{ProductID: env.store.Soda.ID, Quantity: 2},
	)
	burgerLine, sodaLine := order.Items[0].ID, order.Items[1].ID

	if _, err := env.orders.SetLineItemQuantity(ctx, env.cashier(), order.ID, burgerLine, -1); !IsValidation(err) {
		t.Errorf("negative: expected ValidationError, got %v", err)
	}
	if _, err := env.orders.SetLineItemQuantity(ctx, env.cashier(), order.ID, 9999, 1); !IsNotFound(err) {
		t.Errorf("unknown item: expected NotFoundError, got %v", err)
	}

	got, err := env.orders.SetLineItemQuantity(ctx, env.cashier(), order.ID, burgerLine, 5)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if got.FindItem(burgerLine).Quantity != 5 {
		t.Errorf("quantity = %d, want 5", got.FindItem(burgerLine).Quantity)
	}

	_, err = env.orders.ProcessPartialPayment(ctx, env.cashier(), order.ID, PartialPaymentInput{
		Items:    []PayItemInput{{OrderItemID: sodaLine, Quantity: 1}},
		Payments: cash("4.50"),
	})
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if _, err := env.orders.SetLineItemQuantity(ctx, env.cashier(), order.ID, sodaLine, 0); !IsConflict(err) {
		t.Errorf("below paid: expected ConflictError, got %v", err)
	}

	got, err = env.orders.SetLineItemQuantity(ctx, env.cashier(), order.ID, burgerLine, 0)
	if err != nil {
		t.Fatalf("set zero: %v", err)
	}
	if got.FindItem(burgerLine) != nil {
		t.Error("zero quantity should delete the line")
	}
}

func TestRemoveItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.dineIn(t, 1,
		AddItemInput{ProductID: env.store.Burger.ID, Quantity: 1},
		AddItemInput{ProductID: env.store.Soda.ID, Quantity: 1},
	)

	_, err := env.orders.ProcessPartialPayment(ctx, env.cashier(), order.ID, PartialPaymentInput{
		Items:    []PayItemInput{{OrderItemID: order.Items[1].ID, Quantity: 1}},
		Payments: cash("4.50"),
	})
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if _, err := env.orders.RemoveItem(ctx, env.cashier(), order.ID, order.Items[1].ID); !IsConflict(err) {
		t.Errorf("paid item: expected ConflictError, got %v", err)
	}

	got, err := env.orders.RemoveItem(ctx, env.cashier(), order.ID, order.Items[0].ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(got.Items) != 1 {
		t.Errorf("expected 1 line left, got %d", len(got.Items))
	}
	// The remaining line is fully paid, but removal never settles an order.
	if got.Status != string(models.OrderOpen) {
		t.Errorf("status = %s, want open", got.Status)
	}
}

func TestCancelReleasesTable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.dineIn(t, 3, AddItemInput{ProductID: env.store.Burger.ID, Quantity: 1})

	got, err := env.orders.Cancel(ctx, env.cashier(), order.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != string(models.OrderCancelled) || got.ClosedAt == nil {
		t.Errorf("status=%s closed_at=%v", got.Status, got.ClosedAt)
	}
	if s := env.tableStatus(t, env.store.Table(3).ID); s != models.TableAvailable {
		t.Errorf("table should be available, got %s", s)
	}

	if _, err := env.orders.Cancel(ctx, env.cashier(), order.ID); !IsConflict(err) {
		t.Errorf("second cancel: expected ConflictError, got %v", err)
	}
	if _, err := env.orders.UpsertLineItem(ctx, env.cashier(), order.ID, AddItemInput{ProductID: env.store.Burger.ID, Quantity: 1}); !IsConflict(err) {
		t.Errorf("add to cancelled: expected ConflictError, got %v", err)
	}
}

func TestCloseOnlyAfterPaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.dineIn(t, 1, AddItemInput{ProductID: env.store.Soda.ID, Quantity: 1})

	if _, err := env.orders.Close(ctx, env.cashier(), order.ID); !IsConflict(err) {
		t.Fatalf("close open order: expected ConflictError, got %v", err)
	}

	_, err := env.orders.ProcessPartialPayment(ctx, env.cashier(), order.ID, PartialPaymentInput{
		Items:    []PayItemInput{{OrderItemID: order.Items[0].ID, Quantity: 1}},
		Payments: cash("5.00"),
	})
	if err != nil {
		t.Fatalf("payment: %v", err)
	}

	got, err := env.orders.Close(ctx, env.cashier(), order.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if got.Status != string(models.OrderClosed) || got.ClosedAt == nil {
		t.Errorf("status=%s closed_at=%v", got.Status, got.ClosedAt)
	}
	if _, err := env.orders.Cancel(ctx, env.cashier(), order.ID); !IsConflict(err) {
		t.Errorf("cancel closed: expected ConflictError, got %v", err)
	}
}

func TestHoldAndResume(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.orders.Create(ctx, env.cashier(), CreateOrderInput{
		OrderType: models.Takeout,
		Items:     []AddItemInput{{ProductID: env.store.Fries.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create takeout: %v", err)
	}

	active, err := env.orders.GetActivePOS(ctx, env.cashier())
	if err != nil || active.ID != order.ID {
		t.Fatalf("active POS order = %v, err %v", active, err)
	}

	if _, err := env.orders.Hold(ctx, env.cashier(), order.ID); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if _, err := env.orders.GetActivePOS(ctx, env.cashier()); !IsNotFound(err) {
		t.Errorf("held order is not the active POS order, got %v", err)
	}
	held, err := env.orders.ListHeld(ctx, env.cashier())
	if err != nil || len(held) != 1 || held[0].ID != order.ID {
		t.Fatalf("held = %v, err %v", held, err)
	}
	if len(held[0].Items) != 1 {
		t.Errorf("held orders should carry their items")
	}
	if _, err := env.orders.Hold(ctx, env.cashier(), order.ID); !IsConflict(err) {
		t.Errorf("double hold: expected ConflictError, got %v", err)
	}

	got, err := env.orders.Resume(ctx, env.cashier(), order.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if got.Status != string(models.OrderOpen) {
		t.Errorf("status = %s, want open", got.Status)
	}
	if _, err := env.orders.Resume(ctx, env.cashier(), order.ID); !IsConflict(err) {
		t.Errorf("resume open order: expected ConflictError, got %v", err)
	}
}

func TestTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.dineIn(t, 1, AddItemInput{ProductID: env.store.Burger.ID, Quantity: 1})
	env.dineIn(t, 2)
	t1, t2, t3 := env.store.Table(1).ID, env.store.Table(2).ID, env.store.Table(3).ID

	if _, err := env.orders.Transfer(ctx, env.cashier(), order.ID, t2); !IsConflict(err) {
		t.Fatalf("transfer onto occupied: expected ConflictError, got %v", err)
	}
	if s := env.tableStatus(t, t1); s != models.TableOccupied {
		t.Errorf("source table changed to %s", s)
	}
	if s := env.tableStatus(t, t2); s != models.TableOccupied {
		t.Errorf("target table changed to %s", s)
	}
	unchanged, _ := env.orders.Get(ctx, env.cashier(), order.ID)
	if unchanged.TableID == nil || *unchanged.TableID != t1 {
		t.Errorf("order moved despite conflict: %v", unchanged.TableID)
	}

	if _, err := env.orders.Transfer(ctx, env.cashier(), order.ID, env.other.Table(1).ID); !IsNotFound(err) {
		t.Errorf("other store's table: expected NotFoundError, got %v", err)
	}
	if _, err := env.orders.Transfer(ctx, env.cashier(), order.ID, t1); !IsConflict(err) {
		t.Errorf("same table: expected ConflictError, got %v", err)
	}

	got, err := env.orders.Transfer(ctx, env.cashier(), order.ID, t3)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got.TableID == nil || *got.TableID != t3 {
		t.Errorf("table_id = %v, want %d", got.TableID, t3)
	}
	if s := env.tableStatus(t, t1); s != models.TableAvailable {
		t.Errorf("old table should be available, got %s", s)
	}
	if s := env.tableStatus(t, t3); s != models.TableOccupied {
		t.Errorf("new table should be occupied, got %s", s)
	}

	open, err := env.orders.GetOpenByTable(ctx, env.cashier(), t3)
	if err != nil || open.ID != order.ID {
		t.Errorf("open order for table 3 = %v, err %v", open, err)
	}
	if _, err := env.orders.GetOpenByTable(ctx, env.cashier(), t1); !IsNotFound(err) {
		t.Errorf("table 1 should have no open order, got %v", err)
	}
}

func TestMerge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	target := env.dineIn(t, 1, AddItemInput{ProductID: env.store.Burger.ID, Quantity: 1})
	source := env.dineIn(t, 2,
		AddItemInput{ProductID: env.store.Burger.ID, Quantity: 2},
		AddItemInput{ProductID: env.store.Soda.ID, Quantity: 1},
	)

	if _, err := env.orders.Merge(ctx, env.cashier(), target.ID, target.ID); !IsValidation(err) {
		t.Errorf("self merge: expected ValidationError, got %v", err)
	}

	got, err := env.orders.Merge(ctx, env.cashier(), target.ID, source.ID)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(got.Items) != 3 {
		t.Fatalf("expected 3 lines after merge (no identity merge), got %d", len(got.Items))
	}

	src, _ := env.orders.Get(ctx, env.cashier(), source.ID)
	if src.Status != string(models.OrderCancelled) || len(src.Items) != 0 {
		t.Errorf("source should be cancelled and empty, got %s with %d items", src.Status, len(src.Items))
	}
	if s := env.tableStatus(t, env.store.Table(2).ID); s != models.TableAvailable {
		t.Errorf("source table should be released, got %s", s)
	}
	if s := env.tableStatus(t, env.store.Table(1).ID); s != models.TableOccupied {
		t.Errorf("target table should stay occupied, got %s", s)
	}

	if _, err := env.orders.Merge(ctx, env.cashier(), target.ID, source.ID); !IsConflict(err) {
		t.Errorf("merging a cancelled order: expected ConflictError, got %v", err)
	}
}

func TestCrossStoreAccessIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.dineIn(t, 1, AddItemInput{ProductID: env.store.Burger.ID, Quantity: 1})
	outsider := env.outsider()

	if _, err := env.orders.Get(ctx, outsider, order.ID); !IsNotFound(err) {
		t.Errorf("get: %v", err)
	}
	if _, err := env.orders.Cancel(ctx, outsider, order.ID); !IsNotFound(err) {
		t.Errorf("cancel: %v", err)
	}
	_, err := env.orders.ProcessPartialPayment(ctx, outsider, order.ID, PartialPaymentInput{
		Items:    []PayItemInput{{OrderItemID: order.Items[0].ID, Quantity: 1}},
		Payments: cash("10"),
	})
	if !IsNotFound(err) {
		t.Errorf("pay: %v", err)
	}
	if _, err := env.orders.UpdateItemStatus(ctx, outsider, order.Items[0].ID, models.ItemReady); !IsNotFound(err) {
		t.Errorf("item status: %v", err)
	}
	if _, err := env.orders.UpsertLineItem(ctx, env.cashier(), order.ID, AddItemInput{ProductID: env.other.Soda.ID, Quantity: 1}); !IsNotFound(err) {
		t.Errorf("foreign product: %v", err)
	}
}

func TestKitchenBoard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.dineIn(t, 1, AddItemInput{ProductID: env.store.Burger.ID, Quantity: 1})
	env.dineIn(t, 2, AddItemInput{ProductID: env.store.Fries.ID, Quantity: 1})

	board, err := env.orders.ListKitchen(ctx, env.cashier())
	if err != nil {
		t.Fatalf("list kitchen: %v", err)
	}
	if len(board) != 2 || board[0].ID != first.ID {
		t.Fatalf("kitchen board should list open orders oldest first, got %d orders", len(board))
	}
	if _, err := env.orders.ListKitchen(ctx, env.cashier()); err != nil {
		t.Fatalf("second list: %v", err)
	}
	if env.kitchen.hits != 1 {
		t.Errorf("second read should hit the cache, hits = %d", env.kitchen.hits)
	}

	item, err := env.orders.UpdateItemStatus(ctx, env.cashier(), first.Items[0].ID, models.ItemReady)
	if err != nil {
		t.Fatalf("update item status: %v", err)
	}
	if item.Status != string(models.ItemReady) {
		t.Errorf("status = %s", item.Status)
	}
	if _, ok, _ := env.kitchen.GetKitchenBoard(ctx, env.store.Store.ID); ok {
		t.Error("item status change should invalidate the board")
	}
	if _, err := env.orders.UpdateItemStatus(ctx, env.cashier(), first.Items[0].ID, "burnt"); !IsValidation(err) {
		t.Errorf("bad status: expected ValidationError, got %v", err)
	}

	if _, err := env.orders.Cancel(ctx, env.cashier(), first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	board, _ = env.orders.ListKitchen(ctx, env.cashier())
	if len(board) != 1 {
		t.Errorf("cancelled orders leave the board, got %d", len(board))
	}
}
