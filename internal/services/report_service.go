package services

import (
	"context"
	"fmt"
	"time"

	"restaurant_pos/internal/repository"

	"github.com/shopspring/decimal"
)

type SalesSummary struct {
	From            time.Time       `json:"from"`
	To              time.Time       `json:"to"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	NumTransactions int64           `json:"num_transactions"`
	AverageTicket   decimal.Decimal `json:"average_ticket"`
}

type ReportService interface {
	SalesSummary(ctx context.Context, caller Caller, from, to time.Time) (*SalesSummary, error)
	TopProducts(ctx context.Context, caller Caller, from, to time.Time, limit int, byRevenue bool) ([]repository.TopProductRow, error)
	PaymentMethods(ctx context.Context, caller Caller, from, to time.Time) ([]repository.PaymentMethodRow, error)
}

type reportService struct {
	sales repository.SaleRepository
}

func NewReportService(sales repository.SaleRepository) ReportService {
	return &reportService{sales: sales}
}

func checkRange(from, to time.Time) error {
	if !to.After(from) {
		return validationf("report range end must be after its start")
	}
	return nil
}

func (s *reportService) SalesSummary(ctx context.Context, caller Caller, from, to time.Time) (*SalesSummary, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	row, err := s.sales.Summary(ctx, caller.StoreID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise sales: %w", err)
	}

	summary := &SalesSummary{
		From:            from,
		To:              to,
		TotalSales:      row.TotalSales.Round(2),
		NumTransactions: row.NumTransactions,
		AverageTicket:   decimal.Zero,
	}
	if row.NumTransactions > 0 {
		summary.AverageTicket = row.TotalSales.Div(decimal.NewFromInt(row.NumTransactions)).Round(2)
	}
	return summary, nil
}

func (s *reportService) TopProducts(ctx context.Context, caller Caller, from, to time.Time, limit int, byRevenue bool) ([]repository.TopProductRow, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	rows, err := s.sales.TopProducts(ctx, caller.StoreID, from, to, limit, byRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	for i := range rows {
		rows[i].TotalRevenue = rows[i].TotalRevenue.Round(2)
	}
	return rows, nil
}

func (s *reportService) PaymentMethods(ctx context.Context, caller Caller, from, to time.Time) ([]repository.PaymentMethodRow, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	rows, err := s.sales.ByPaymentMethod(ctx, caller.StoreID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to group payments: %w", err)
	}
	for i := range rows {
		rows[i].TotalAmount = rows[i].TotalAmount.Round(2)
	}
	return rows, nil
}
