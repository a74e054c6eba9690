package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook-backend/pkg/config"
	"github.com/staybook/staybook-backend/pkg/redis/redistest"
)

func TestLookupFoldsMissingKey(t *testing.T) {
	ctx := context.Background()
	client := NewWithCmdable(redistest.NewMemory())

	value, ok, err := client.Lookup(ctx, "sb:cart:guest")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)

	require.NoError(t, client.Set(ctx, "sb:cart:guest", `[]`, 0))
	value, ok, err = client.Lookup(ctx, "sb:cart:guest")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)
}

func TestLookupPropagatesErrors(t *testing.T) {
	mock := redistest.NewMemory()
	mock.GetErr = errors.New("connection refused")
	client := NewWithCmdable(mock)

	_, ok, err := client.Lookup(context.Background(), "sb:cart:guest")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestSetNXGuardLifecycle(t *testing.T) {
	ctx := context.Background()
	client := NewWithCmdable(redistest.NewMemory())
	key := client.CheckoutGuardKey("guest-1")

	acquired, err := client.SetNX(ctx, key, "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = client.SetNX(ctx, key, "1", time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired, "second acquire should fail while held")

	require.NoError(t, client.Del(ctx, key))
	acquired, err = client.SetNX(ctx, key, "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	ctx := context.Background()
	assert.ErrorIs(t, client.Ping(ctx), ErrNotInitialized)
	assert.ErrorIs(t, client.Set(ctx, "k", "v", 0), ErrNotInitialized)
	_, _, err := client.Lookup(ctx, "k")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.NoError(t, client.Close())
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "sb:cart:guest", client.CartKey("cart", "guest"))
	assert.Equal(t, "sb:cart:guest", client.CartKey("", "guest"))
	assert.Equal(t, "sb:saved:guest", client.CartKey("saved", " guest "))
	assert.Equal(t, "sb:checkout_guard:guest", client.CheckoutGuardKey("guest"))
	assert.Equal(t, "sb:checkout_guard", client.CheckoutGuardKey(""))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 3})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 3, opts.DB)
}
