package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/staybook/staybook-backend/pkg/redis"
)

// SnapshotStore is the key-value contract the cart persists through.
type SnapshotStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// EncodeSnapshot serializes the lines as a JSON array.
func EncodeSnapshot(lines []Line) (string, error) {
	if lines == nil {
		lines = []Line{}
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("encode cart snapshot: %w", err)
	}
	return string(payload), nil
}

// DecodeSnapshot parses a JSON array of lines. Lines without an id are dropped.
func DecodeSnapshot(raw string) ([]Line, error) {
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	out := make([]Line, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if line.ID == "" {
			continue
		}
		if _, dup := seen[line.ID]; dup {
			continue
		}
		seen[line.ID] = struct{}{}
		if line.Quantity < 1 {
			line.Quantity = 1
		}
		out = append(out, line)
	}
	return out, nil
}

// RedisSnapshots stores cart snapshots in redis without expiry.
type RedisSnapshots struct {
	client *redis.Client
}

// NewRedisSnapshots adapts the shared redis client to SnapshotStore.
func NewRedisSnapshots(client *redis.Client) *RedisSnapshots {
	return &RedisSnapshots{client: client}
}

// Get reads the snapshot under key. A missing key is reported through ok.
func (r *RedisSnapshots) Get(ctx context.Context, key string) (string, bool, error) {
	return r.client.Lookup(ctx, key)
}

// Set writes the snapshot with no TTL.
func (r *RedisSnapshots) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0)
}
