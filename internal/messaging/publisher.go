package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"restaurant_pos/internal/models"
	"restaurant_pos/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

type SaleSettledItem struct {
	ProductID   uint            `json:"product_id"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
}

type SaleSettledPayment struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// SaleSettledMessage is the body of every sale.settled event.
type SaleSettledMessage struct {
	Reference   string               `json:"reference"`
	SaleID      uint                 `json:"sale_id"`
	StoreID     uint                 `json:"store_id"`
	OrderID     *uint                `json:"order_id,omitempty"`
	CustomerID  *uint                `json:"customer_id,omitempty"`
	Kind        string               `json:"kind"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	Items       []SaleSettledItem    `json:"items"`
	Payments    []SaleSettledPayment `json:"payments"`
	SettledAt   time.Time            `json:"settled_at"`
}

func NewSaleSettledMessage(sale *models.Sale) SaleSettledMessage {
	msg := SaleSettledMessage{
		Reference:   sale.Reference,
		SaleID:      sale.ID,
		StoreID:     sale.StoreID,
		OrderID:     sale.OrderID,
		CustomerID:  sale.CustomerID,
		Kind:        sale.Kind,
		TotalAmount: sale.TotalAmount,
		Items:       make([]SaleSettledItem, 0, len(sale.Items)),
		Payments:    make([]SaleSettledPayment, 0, len(sale.Payments)),
		SettledAt:   sale.CreatedAt,
	}
	for _, item := range sale.Items {
		msg.Items = append(msg.Items, SaleSettledItem{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			PriceAtSale: item.PriceAtSale,
		})
	}
	for _, p := range sale.Payments {
		msg.Payments = append(msg.Payments, SaleSettledPayment{Method: p.PaymentMethod, Amount: p.Amount})
	}
	return msg
}

// RoutingKey is sale.settled.<kind>, e.g. sale.settled.partial_payment.
func RoutingKey(sale *models.Sale) string {
	return "sale.settled." + strings.ToLower(sale.Kind)
}

// Publisher sends sale events to the sales topic exchange.
type Publisher struct {
	conn   *Connection
	logger *logger.Logger
}

func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{conn: conn, logger: log}
}

func (p *Publisher) PublishSaleSettled(ctx context.Context, sale *models.Sale) error {
	body, err := json.Marshal(NewSaleSettledMessage(sale))
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	channel, err := p.conn.Channel()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	routingKey := RoutingKey(sale)
	err = channel.PublishWithContext(
		ctx,
		SalesExchange, // exchange
		routingKey,    // routing key
		false,         // mandatory
		false,         // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			MessageId:    sale.Reference,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.logger.Error("message_publish_failed", "Failed to publish sale event", err,
			"exchange", SalesExchange, "routing_key", routingKey, "sale_id", sale.ID)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.Debug("message_published", "Published sale event",
		"exchange", SalesExchange, "routing_key", routingKey, "message_size", len(body))
	return nil
}

func (p *Publisher) Close() error {
	return p.conn.Close()
}
