package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client, err := NewRedisClient(&Config{Addr: s.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, s
}

func TestNewRedisClientUnreachable(t *testing.T) {
	_, err := NewRedisClient(&Config{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestJSONRoundTripAndExpiry(t *testing.T) {
	client, s := setupTestRedis(t)
	ctx := context.Background()

	type payload struct {
		IDs []string `json:"ids"`
	}
	require.NoError(t, client.SetJSON(ctx, "k", payload{IDs: []string{"a", "b"}}, time.Minute))

	var got payload
	require.NoError(t, client.GetJSON(ctx, "k", &got))
	assert.Equal(t, []string{"a", "b"}, got.IDs)

	s.FastForward(2 * time.Minute)
	assert.ErrorIs(t, client.GetJSON(ctx, "k", &got), ErrMiss)
}

func TestGetJSONCorrupt(t *testing.T) {
	client, s := setupTestRedis(t)
	require.NoError(t, s.Set("bad", "{not json"))

	var dst map[string]any
	err := client.GetJSON(context.Background(), "bad", &dst)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestDelete(t *testing.T) {
	client, s := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Set("b", "2"))

	require.NoError(t, client.Delete(ctx, "a", "b"))
	require.NoError(t, client.Delete(ctx))
	assert.False(t, s.Exists("a"))
	assert.False(t, s.Exists("b"))
}

func TestLock(t *testing.T) {
	client, s := setupTestRedis(t)
	ctx := context.Background()

	ok, err := client.AcquireLock(ctx, "lock:x", "owner-1", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.AcquireLock(ctx, "lock:x", "owner-2", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// Only the owner releases.
	require.NoError(t, client.ReleaseLock(ctx, "lock:x", "owner-2"))
	assert.True(t, s.Exists("lock:x"))
	require.NoError(t, client.ReleaseLock(ctx, "lock:x", "owner-1"))
	assert.False(t, s.Exists("lock:x"))
}
