package redis

import (
	"context"
	"testing"
	"time"

	"restaurant_pos/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, 5*time.Second, time.Hour), mr
}

func TestKitchenBoardRoundTrip(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	if _, ok, err := c.GetKitchenBoard(ctx, 1); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	tableID := uint(4)
	orders := []models.Order{{
		ID:        10,
		StoreID:   1,
		TableID:   &tableID,
		OrderType: string(models.DineIn),
		Status:    string(models.OrderOpen),
		Items: []models.OrderItem{{
			ID:           1,
			OrderID:      10,
			ProductID:    3,
			Quantity:     2,
			PriceAtOrder: decimal.RequireFromString("10.50"),
			Status:       string(models.ItemPreparing),
		}},
	}}
	if err := c.SetKitchenBoard(ctx, 1, orders); err != nil {
		t.Fatalf("SetKitchenBoard: %v", err)
	}

	got, ok, err := c.GetKitchenBoard(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].ID != 10 || len(got[0].Items) != 1 {
		t.Fatalf("unexpected board: %+v", got)
	}
	if !got[0].Items[0].PriceAtOrder.Equal(decimal.RequireFromString("10.50")) {
		t.Errorf("price lost in cache: %s", got[0].Items[0].PriceAtOrder)
	}

	if _, ok, _ := c.GetKitchenBoard(ctx, 2); ok {
		t.Error("board must be per store")
	}

	mr.FastForward(6 * time.Second)
	if _, ok, _ := c.GetKitchenBoard(ctx, 1); ok {
		t.Error("board should expire after the TTL")
	}
}

func TestInvalidateKitchenBoard(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if err := c.SetKitchenBoard(ctx, 1, nil); err != nil {
		t.Fatalf("SetKitchenBoard: %v", err)
	}
	got, ok, err := c.GetKitchenBoard(ctx, 1)
	if err != nil || !ok || len(got) != 0 {
		t.Fatalf("empty board should be cached, got %v ok=%v err=%v", got, ok, err)
	}

	if err := c.InvalidateKitchenBoard(ctx, 1); err != nil {
		t.Fatalf("InvalidateKitchenBoard: %v", err)
	}
	if _, ok, _ := c.GetKitchenBoard(ctx, 1); ok {
		t.Error("board still cached after invalidation")
	}
}

func TestIdempotencyLifecycle(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	ok, err := c.Reserve(ctx, "1:7:abc")
	if err != nil || !ok {
		t.Fatalf("first reserve should win, ok=%v err=%v", ok, err)
	}
	ok, err = c.Reserve(ctx, "1:7:abc")
	if err != nil || ok {
		t.Fatalf("second reserve should lose, ok=%v err=%v", ok, err)
	}

	body, exists, err := c.Result(ctx, "1:7:abc")
	if err != nil || !exists || body != nil {
		t.Fatalf("expected in-flight marker, body=%q exists=%v err=%v", body, exists, err)
	}

	if err := c.Complete(ctx, "1:7:abc", []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	body, exists, err = c.Result(ctx, "1:7:abc")
	if err != nil || !exists || string(body) != `{"ok":true}` {
		t.Fatalf("expected stored body, body=%q exists=%v err=%v", body, exists, err)
	}
}

func TestReleaseAllowsRetry(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if ok, _ := c.Reserve(ctx, "k"); !ok {
		t.Fatal("reserve failed")
	}
	if err := c.Release(ctx, "k"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, exists, _ := c.Result(ctx, "k"); exists {
		t.Fatal("key should be gone after release")
	}
	if ok, _ := c.Reserve(ctx, "k"); !ok {
		t.Fatal("reserve after release should succeed")
	}
}
