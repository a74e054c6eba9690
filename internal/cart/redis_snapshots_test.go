package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/staybook/staybook-backend/pkg/logger"
	"github.com/staybook/staybook-backend/pkg/redis"
	"github.com/staybook/staybook-backend/pkg/redis/redistest"
)

func TestRedisSnapshotsBackTheManager(t *testing.T) {
	mem := redistest.NewMemory()
	client := redis.NewWithCmdable(mem)
	snapshots := NewRedisSnapshots(client)

	w := newTestWriter(t, snapshots, 0)
	m, err := NewManager(snapshots, w, func(userID string) string {
		return client.CartKey("cart", userID)
	}, logger.Nop())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	store, err := m.ForUser(context.Background(), "guest-1")
	if err != nil {
		t.Fatalf("for user: %v", err)
	}
	_ = store.Add(Line{ID: "r1", Name: "Deluxe", Price: decimal.NewFromInt(100)})
	if err := store.Flush(flushCtx(t)); err != nil {
		t.Fatalf("flush: %v", err)
	}

	raw, ok := mem.Value("sb:cart:guest-1")
	if !ok {
		t.Fatal("expected snapshot under sb:cart:guest-1")
	}
	lines, err := DecodeSnapshot(raw)
	if err != nil || len(lines) != 1 || lines[0].ID != "r1" {
		t.Fatalf("unexpected snapshot %q: %v", raw, err)
	}

	// A fresh manager over the same redis hydrates the cart.
	reloaded, err := NewManager(snapshots, w, func(userID string) string {
		return client.CartKey("cart", userID)
	}, logger.Nop())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	again, _ := reloaded.ForUser(context.Background(), "guest-1")
	if again.TotalItems() != 1 {
		t.Fatalf("expected hydrated cart, got %+v", again.Lines())
	}
}

func TestRedisSnapshotsReadFailureYieldsEmptyCart(t *testing.T) {
	mem := redistest.NewMemory()
	mem.GetErr = errors.New("connection refused")
	snapshots := NewRedisSnapshots(redis.NewWithCmdable(mem))

	m, err := NewManager(snapshots, newTestWriter(t, snapshots, 0), func(id string) string { return id }, logger.Nop())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	store, err := m.ForUser(context.Background(), "guest-2")
	if err != nil || store.Len() != 0 {
		t.Fatalf("expected empty cart, got %v %v", store, err)
	}
}
