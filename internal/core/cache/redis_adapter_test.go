package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) (*RedisAdapter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return adapter, mr
}

// TestNewRedisAdapter_BadURL verifies URL validation at construction.
func TestNewRedisAdapter_BadURL(t *testing.T) {
	_, err := NewRedisAdapter("not-a-url")
	assert.Error(t, err)
}

// TestRedisAdapter_SetGet verifies the round trip of a value.
func TestRedisAdapter_SetGet(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	err := adapter.Set(ctx, "greeting", []byte("hola"), time.Minute)
	require.NoError(t, err)

	val, err := adapter.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte("hola"), val)
}

// TestRedisAdapter_GetMissing verifies a missing key reports not found.
func TestRedisAdapter_GetMissing(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	_, err := adapter.Get(context.Background(), "absent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key not found")
}

// TestRedisAdapter_Delete verifies deletion removes the key.
func TestRedisAdapter_Delete(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, adapter.Delete(ctx, "k"))

	_, err := adapter.Get(ctx, "k")
	assert.Error(t, err)
}

// TestRedisAdapter_TTL verifies expiration is applied.
func TestRedisAdapter_TTL(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "short", []byte("v"), 5*time.Second))

	mr.FastForward(6 * time.Second)

	_, err := adapter.Get(ctx, "short")
	assert.Error(t, err)
}

// TestRedisAdapter_Ping verifies connectivity checks.
func TestRedisAdapter_Ping(t *testing.T) {
	adapter, mr := newTestAdapter(t)

	require.NoError(t, adapter.Ping(context.Background()))

	mr.Close()
	assert.Error(t, adapter.Ping(context.Background()))
}
