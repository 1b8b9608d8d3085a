package messaging

import (
	"fmt"
	"sync"
	"time"

	"restaurant_pos/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const SalesExchange = "pos_sales_topic"

// Connection wraps a RabbitMQ connection and channel and redials on demand.
type Connection struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *logger.Logger
	url     string
}

func Dial(url string, log *logger.Logger) (*Connection, error) {
	c := &Connection{logger: log, url: url}
	if err := c.connect(); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}
	return c, nil
}

func (c *Connection) connect() error {
	maxRetries := 5
	var err error

	for i := 0; i < maxRetries; i++ {
		c.conn, err = amqp091.Dial(c.url)
		if err == nil {
			c.channel, err = c.conn.Channel()
			if err == nil {
				if err = c.setupTopology(); err == nil {
					return nil
				}
				c.logger.Error("rabbitmq_setup_failed", "Failed to set up topology", err)
			}
			c.close()
		}

		if i < maxRetries-1 {
			waitTime := time.Duration(i+1) * 2 * time.Second
			c.logger.Warn("rabbitmq_connection_failed", "Failed to connect to RabbitMQ, retrying",
				"retry_in", waitTime.String(), "error", err.Error())
			time.Sleep(waitTime)
		}
	}

	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

func (c *Connection) setupTopology() error {
	err := c.channel.ExchangeDeclare(
		SalesExchange, // name
		"topic",       // type
		true,          // durable
		false,         // auto-deleted
		false,         // internal
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", SalesExchange, err)
	}
	return nil
}

func (c *Connection) isClosed() bool {
	return c.conn == nil || c.conn.IsClosed()
}

// Channel returns a live channel, redialing if the connection dropped.
func (c *Connection) Channel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isClosed() {
		c.close()
		if err := c.connect(); err != nil {
			return nil, fmt.Errorf("failed to reconnect: %w", err)
		}
	}
	return c.channel, nil
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
