package messaging

import (
	"encoding/json"
	"testing"
	"time"

	"restaurant_pos/internal/models"

	"github.com/shopspring/decimal"
)

func testSale() *models.Sale {
	orderID := uint(7)
	return &models.Sale{
		ID:          3,
		Reference:   "5b0f1e2a-1d7c-4c3e-9a53-0b8d9b7f1a11",
		StoreID:     1,
		OrderID:     &orderID,
		Kind:        string(models.SalePartialPayment),
		TotalAmount: decimal.RequireFromString("20.00"),
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Items: []models.SaleItem{
			{ProductID: 2, Quantity: 2, PriceAtSale: decimal.RequireFromString("10.00")},
		},
		Payments: []models.Payment{
			{PaymentMethod: string(models.PaymentCash), Amount: decimal.RequireFromString("15.00")},
			{PaymentMethod: string(models.PaymentPix), Amount: decimal.RequireFromString("5.00")},
		},
	}
}

func TestRoutingKey(t *testing.T) {
	tests := []struct {
		kind models.SaleKind
		want string
	}{
		{models.SalePartialPayment, "sale.settled.partial_payment"},
		{models.SaleCheckout, "sale.settled.checkout"},
	}
	for _, tt := range tests {
		sale := &models.Sale{Kind: string(tt.kind)}
		if got := RoutingKey(sale); got != tt.want {
			t.Errorf("RoutingKey(%s) = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestNewSaleSettledMessage(t *testing.T) {
	msg := NewSaleSettledMessage(testSale())

	if msg.SaleID != 3 || msg.StoreID != 1 || msg.OrderID == nil || *msg.OrderID != 7 {
		t.Fatalf("unexpected identifiers: %+v", msg)
	}
	if len(msg.Items) != 1 || len(msg.Payments) != 2 {
		t.Fatalf("expected 1 item and 2 payments, got %d and %d", len(msg.Items), len(msg.Payments))
	}

	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["total_amount"] != "20" {
		t.Errorf("total_amount = %v, want \"20\"", decoded["total_amount"])
	}
	if _, ok := decoded["customer_id"]; ok {
		t.Error("customer_id should be omitted when nil")
	}
}
