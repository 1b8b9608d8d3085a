package services

import (
	"context"
	"testing"

	"restaurant_pos/internal/models"
)

func TestCashRegisterReconciliation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.cash.Open(ctx, env.cashier(), dec("100.00")); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := env.cash.Open(ctx, env.cashier(), dec("10.00")); !IsConflict(err) {
		t.Fatalf("second open: expected ConflictError, got %v", err)
	}

	_, err := env.sales.Checkout(ctx, env.cashier(), CheckoutInput{
		Items: []CheckoutItemInput{{ProductID: env.store.Burger.ID, Quantity: 3}},
		Payments: []PaymentInput{
			{Amount: dec("20.00"), PaymentMethod: models.PaymentCash},
			{Amount: dec("10.00"), PaymentMethod: models.PaymentCreditCard},
		},
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if _, err := env.processor.ProcessPending(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	if _, err := env.cash.AddManualTransaction(ctx, env.cashier(), ManualTransactionInput{Type: models.CashDeposit, Amount: dec("5.50")}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := env.cash.AddManualTransaction(ctx, env.cashier(), ManualTransactionInput{Type: models.CashWithdrawal, Amount: dec("30.00"), Description: "supplier"}); err != nil {
		t.Fatalf("withdrawal: %v", err)
	}

	current, err := env.cash.Current(ctx, env.cashier())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(current.Transactions) != 4 {
		t.Errorf("expected 4 transactions, got %d", len(current.Transactions))
	}

	// 100 + 20 cash + 5.50 - 30 = 95.50; the card payment never reaches the drawer.
	closed, err := env.cash.Close(ctx, env.cashier(), dec("95.00"))
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != string(models.RegisterClosed) || closed.ClosedAt == nil {
		t.Errorf("status=%s closed_at=%v", closed.Status, closed.ClosedAt)
	}
	if !closed.ExpectedBalance.Equal(dec("95.50")) {
		t.Errorf("expected balance = %s, want 95.50", closed.ExpectedBalance)
	}
	if !closed.CountedBalance.Equal(dec("95.00")) {
		t.Errorf("counted balance = %s", closed.CountedBalance)
	}
	if !closed.Difference.Equal(dec("-0.50")) {
		t.Errorf("difference = %s, want -0.50", closed.Difference)
	}

	if _, err := env.cash.Current(ctx, env.cashier()); !IsNotFound(err) {
		t.Errorf("no register should be open, got %v", err)
	}
	if _, err := env.cash.Close(ctx, env.cashier(), dec("0")); !IsConflict(err) {
		t.Errorf("closing twice: expected ConflictError, got %v", err)
	}
}

func TestCashRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.cash.Open(ctx, env.cashier(), dec("-1")); !IsValidation(err) {
		t.Errorf("negative opening: %v", err)
	}
	if _, err := env.cash.AddManualTransaction(ctx, env.cashier(), ManualTransactionInput{Type: models.CashDeposit, Amount: dec("1")}); !IsConflict(err) {
		t.Errorf("deposit without register: expected ConflictError, got %v", err)
	}

	if _, err := env.cash.Open(ctx, env.cashier(), dec("0")); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := env.cash.AddManualTransaction(ctx, env.cashier(), ManualTransactionInput{Type: models.CashSale, Amount: dec("1")}); !IsValidation(err) {
		t.Errorf("manual sale entry: %v", err)
	}
	if _, err := env.cash.AddManualTransaction(ctx, env.cashier(), ManualTransactionInput{Type: models.CashDeposit, Amount: dec("0")}); !IsValidation(err) {
		t.Errorf("zero deposit: %v", err)
	}
	if _, err := env.cash.Close(ctx, env.cashier(), dec("-5")); !IsValidation(err) {
		t.Errorf("negative count: %v", err)
	}

	// Registers are per store.
	if _, err := env.cash.Open(ctx, env.outsider(), dec("0")); err != nil {
		t.Errorf("other store should open its own register: %v", err)
	}
}

func TestCashRegisterNetsOutChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.cash.Open(ctx, env.cashier(), dec("0")); err != nil {
		t.Fatalf("open: %v", err)
	}

	checkouts := [][]PaymentInput{
		cash("50.00"),
		{
			{Amount: dec("5.00"), PaymentMethod: models.PaymentCreditCard},
			{Amount: dec("20.00"), PaymentMethod: models.PaymentCash},
		},
	}
	for i, payments := range checkouts {
		if _, err := env.sales.Checkout(ctx, env.cashier(), CheckoutInput{
			Items:    []CheckoutItemInput{{ProductID: env.store.Burger.ID, Quantity: 1}},
			Payments: payments,
		}); err != nil {
			t.Fatalf("checkout %d: %v", i, err)
		}
	}
	if _, err := env.processor.ProcessPending(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	current, err := env.cash.Current(ctx, env.cashier())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	var change []string
	for _, txn := range current.Transactions {
		if txn.Type == string(models.CashChange) {
			change = append(change, txn.Amount.StringFixed(2))
		}
	}
	if len(change) != 2 || change[0] != "40.00" || change[1] != "15.00" {
		t.Errorf("change rows = %v, want [40.00 15.00]", change)
	}

	// 50 - 40 change, then 20 cash - 15 change; the card share stays off the drawer.
	closed, err := env.cash.Close(ctx, env.cashier(), dec("15.00"))
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !closed.ExpectedBalance.Equal(dec("15.00")) {
		t.Errorf("expected balance = %s, want 15.00", closed.ExpectedBalance)
	}
	if !closed.Difference.IsZero() {
		t.Errorf("difference = %s, want 0", closed.Difference)
	}
}
