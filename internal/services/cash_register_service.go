package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/money"
	"restaurant_pos/internal/repository"
	"restaurant_pos/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ManualTransactionInput struct {
	Type        models.CashTransactionType `json:"type"`
	Amount      decimal.Decimal            `json:"amount"`
	Description string                     `json:"description"`
}

type CashRegisterService interface {
	Open(ctx context.Context, caller Caller, openingBalance decimal.Decimal) (*models.CashRegister, error)
	// Close reconciles the drawer: expected is opening balance plus cash
	// sales and deposits, minus withdrawals.
	Close(ctx context.Context, caller Caller, countedBalance decimal.Decimal) (*models.CashRegister, error)
	Current(ctx context.Context, caller Caller) (*models.CashRegister, error)
	AddManualTransaction(ctx context.Context, caller Caller, input ManualTransactionInput) (*models.CashTransaction, error)
	// AddSaleTransaction appends one transaction per payment of the sale to
	// the store's open register. Returns ErrNoOpenRegister when there is none.
	AddSaleTransaction(ctx context.Context, tx *repository.Repositories, sale *models.Sale) error
}

type cashRegisterService struct {
	repos *repository.Repositories
	log   *logger.Logger
}

func NewCashRegisterService(repos *repository.Repositories, log *logger.Logger) CashRegisterService {
	return &cashRegisterService{repos: repos, log: log}
}

func (s *cashRegisterService) Open(ctx context.Context, caller Caller, openingBalance decimal.Decimal) (*models.CashRegister, error) {
	if openingBalance.IsNegative() {
		return nil, validationf("opening balance cannot be negative")
	}

	register := &models.CashRegister{
		StoreID:        caller.StoreID,
		UserID:         caller.UserID,
		Status:         string(models.RegisterOpen),
		OpeningBalance: money.Round(openingBalance),
		OpenedAt:       time.Now(),
	}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		existing, err := tx.CashRegisters.GetOpen(ctx, caller.StoreID)
		if err == nil {
			return conflictf("cash register %d is already open", existing.ID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check open register: %w", err)
		}
		return tx.CashRegisters.Create(ctx, register)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("register_opened", "Cash register opened", "store_id", caller.StoreID, "register_id", register.ID, "opening_balance", register.OpeningBalance.StringFixed(2))
	return register, nil
}

func (s *cashRegisterService) Close(ctx context.Context, caller Caller, countedBalance decimal.Decimal) (*models.CashRegister, error) {
	if countedBalance.IsNegative() {
		return nil, validationf("counted balance cannot be negative")
	}

	var registerID uint
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		register, err := tx.CashRegisters.GetOpen(ctx, caller.StoreID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return conflictf("%s", ErrNoOpenRegister.Error())
			}
			return fmt.Errorf("failed to load open register: %w", err)
		}

		totals, err := tx.CashRegisters.Totals(ctx, register.ID)
		if err != nil {
			return fmt.Errorf("failed to total register %d: %w", register.ID, err)
		}

		expected := money.Round(register.OpeningBalance.Add(cashMovement(totals)))
		counted := money.Round(countedBalance)
		difference := counted.Sub(expected)
		now := time.Now()

		register.Status = string(models.RegisterClosed)
		register.ExpectedBalance = &expected
		register.CountedBalance = &counted
		register.Difference = &difference
		register.ClosedAt = &now
		registerID = register.ID
		return tx.CashRegisters.Update(ctx, register)
	})
	if err != nil {
		return nil, err
	}

	register, err := s.repos.CashRegisters.GetByID(ctx, caller.StoreID, registerID)
	if err != nil {
		return nil, lookupErr(err, "cash register", registerID)
	}
	if !register.Difference.IsZero() {
		s.log.Warn("register_difference", "Cash register closed with a difference", "store_id", caller.StoreID, "register_id", registerID, "difference", register.Difference.StringFixed(2))
	}
	return register, nil
}

// cashMovement is the net effect on the physical drawer. Card and pix sales
// are recorded but never touch it.
func cashMovement(totals []repository.CashTotalRow) decimal.Decimal {
	net := decimal.Zero
	for _, row := range totals {
		switch models.CashTransactionType(row.Type) {
		case models.CashSale:
			if models.PaymentMethod(row.PaymentMethod) == models.PaymentCash {
				net = net.Add(row.Total)
			}
		case models.CashDeposit:
			net = net.Add(row.Total)
		case models.CashWithdrawal, models.CashChange:
			net = net.Sub(row.Total)
		}
	}
	return net
}

func (s *cashRegisterService) Current(ctx context.Context, caller Caller) (*models.CashRegister, error) {
	register, err := s.repos.CashRegisters.GetOpen(ctx, caller.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "open cash register"}
		}
		return nil, fmt.Errorf("failed to load open register: %w", err)
	}
	full, err := s.repos.CashRegisters.GetByID(ctx, caller.StoreID, register.ID)
	if err != nil {
		return nil, lookupErr(err, "cash register", register.ID)
	}
	return full, nil
}

func (s *cashRegisterService) AddManualTransaction(ctx context.Context, caller Caller, input ManualTransactionInput) (*models.CashTransaction, error) {
	if input.Type != models.CashDeposit && input.Type != models.CashWithdrawal {
		return nil, validationf("transaction type must be %s or %s", models.CashDeposit, models.CashWithdrawal)
	}
	if !input.Amount.IsPositive() {
		return nil, validationf("amount must be positive")
	}

	txn := &models.CashTransaction{
		UserID:        caller.UserID,
		Type:          string(input.Type),
		PaymentMethod: string(models.PaymentCash),
		Amount:        money.Round(input.Amount),
		Description:   input.Description,
	}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		register, err := tx.CashRegisters.GetOpen(ctx, caller.StoreID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return conflictf("%s", ErrNoOpenRegister.Error())
			}
			return fmt.Errorf("failed to load open register: %w", err)
		}
		txn.CashRegisterID = register.ID
		return tx.CashRegisters.AddTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *cashRegisterService) AddSaleTransaction(ctx context.Context, tx *repository.Repositories, sale *models.Sale) error {
	register, err := tx.CashRegisters.GetOpen(ctx, sale.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoOpenRegister
		}
		return fmt.Errorf("failed to load open register: %w", err)
	}

	for _, payment := range sale.Payments {
		saleID := sale.ID
		err := tx.CashRegisters.AddTransaction(ctx, &models.CashTransaction{
			CashRegisterID: register.ID,
			SaleID:         &saleID,
			UserID:         sale.UserID,
			Type:           string(models.CashSale),
			PaymentMethod:  payment.PaymentMethod,
			Amount:         payment.Amount,
			Description:    fmt.Sprintf("sale %s", sale.Reference),
		})
		if err != nil {
			return fmt.Errorf("failed to record payment %d of sale %d: %w", payment.ID, sale.ID, err)
		}
	}

	if change := saleChange(sale); change.IsPositive() {
		saleID := sale.ID
		err := tx.CashRegisters.AddTransaction(ctx, &models.CashTransaction{
			CashRegisterID: register.ID,
			SaleID:         &saleID,
			UserID:         sale.UserID,
			Type:           string(models.CashChange),
			PaymentMethod:  string(models.PaymentCash),
			Amount:         change,
			Description:    fmt.Sprintf("change for sale %s", sale.Reference),
		})
		if err != nil {
			return fmt.Errorf("failed to record change of sale %d: %w", sale.ID, err)
		}
	}
	return nil
}

// saleChange is the cash handed back for an overpaid sale. It never exceeds
// the cash tendered; overpayment on other methods stays with that method.
func saleChange(sale *models.Sale) decimal.Decimal {
	paid, tendered := decimal.Zero, decimal.Zero
	for _, payment := range sale.Payments {
		paid = paid.Add(payment.Amount)
		if models.PaymentMethod(payment.PaymentMethod) == models.PaymentCash {
			tendered = tendered.Add(payment.Amount)
		}
	}
	change := paid.Sub(sale.TotalAmount)
	if change.GreaterThan(tendered) {
		change = tendered
	}
	return money.Round(change)
}
