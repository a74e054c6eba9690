package checkout

import (
	"context"
	"time"

	"github.com/staybook/staybook-backend/pkg/redis"
)

// submissionGuard blocks a second checkout for the same user while one is running.
type submissionGuard interface {
	Acquire(ctx context.Context, userID string) (bool, error)
	Release(ctx context.Context, userID string) error
}

// RedisGuard holds the per-user submission flag in redis with a TTL so a
// crashed process cannot lock a guest out for longer than ttl.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard builds a guard over the shared redis client.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisGuard{client: client, ttl: ttl}
}

// Acquire sets the user's flag if it is absent and reports whether it did.
func (g *RedisGuard) Acquire(ctx context.Context, userID string) (bool, error) {
	return g.client.SetNX(ctx, g.client.CheckoutGuardKey(userID), "1", g.ttl)
}

// Release clears the user's flag.
func (g *RedisGuard) Release(ctx context.Context, userID string) error {
	return g.client.Del(ctx, g.client.CheckoutGuardKey(userID))
}
