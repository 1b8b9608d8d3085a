package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"restaurant_pos/internal/models"

	"github.com/go-redis/redis/v8"
)

const pendingMarker = "__pending__"

type Client struct {
	rdb            *redis.Client
	kitchenTTL     time.Duration
	idempotencyTTL time.Duration
}

func Initialize(redisURL string, kitchenTTL, idempotencyTTL time.Duration) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return New(rdb, kitchenTTL, idempotencyTTL), nil
}

func New(rdb *redis.Client, kitchenTTL, idempotencyTTL time.Duration) *Client {
	return &Client{rdb: rdb, kitchenTTL: kitchenTTL, idempotencyTTL: idempotencyTTL}
}

func kitchenKey(storeID uint) string {
	return fmt.Sprintf("kitchen_board:%d", storeID)
}

func idempotencyKey(key string) string {
	return "idempotency:" + key
}

// Kitchen board cache
func (c *Client) GetKitchenBoard(ctx context.Context, storeID uint) ([]models.Order, bool, error) {
	val, err := c.rdb.Get(ctx, kitchenKey(storeID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get kitchen board: %w", err)
	}

	var orders []models.Order
	if err := json.Unmarshal(val, &orders); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal kitchen board: %w", err)
	}
	return orders, true, nil
}

func (c *Client) SetKitchenBoard(ctx context.Context, storeID uint, orders []models.Order) error {
	if orders == nil {
		orders = []models.Order{}
	}
	jsonData, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("failed to marshal kitchen board: %w", err)
	}
	return c.rdb.Set(ctx, kitchenKey(storeID), jsonData, c.kitchenTTL).Err()
}

func (c *Client) InvalidateKitchenBoard(ctx context.Context, storeID uint) error {
	return c.rdb.Del(ctx, kitchenKey(storeID)).Err()
}

// Payment idempotency

// Reserve claims key for a request in flight. False means another request
// already holds or completed it.
func (c *Client) Reserve(ctx context.Context, key string) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, idempotencyKey(key), pendingMarker, c.idempotencyTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Result returns the stored response for key. exists with a nil body means
// the first request is still running.
func (c *Client) Result(ctx context.Context, key string) (body []byte, exists bool, err error) {
	val, err := c.rdb.Get(ctx, idempotencyKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get idempotency key: %w", err)
	}
	if string(val) == pendingMarker {
		return nil, true, nil
	}
	return val, true, nil
}

func (c *Client) Complete(ctx context.Context, key string, body []byte) error {
	return c.rdb.Set(ctx, idempotencyKey(key), body, c.idempotencyTTL).Err()
}

// Release frees a reservation whose request failed, so the client may retry.
func (c *Client) Release(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, idempotencyKey(key)).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
