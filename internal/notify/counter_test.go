package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func exerciseCounter(t *testing.T, c ViewCounter) {
	ctx := context.Background()

	n, err := c.Views(ctx, "s1", 7)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = c.Increment(ctx, "s1", 7)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, _ = c.Increment(ctx, "s1", 7)
	assert.Equal(t, 2, n)

	n, _ = c.Views(ctx, "s1", 7)
	assert.Equal(t, 2, n)

	// scoped to (session, notification)
	n, _ = c.Views(ctx, "s2", 7)
	assert.Equal(t, 0, n)
	n, _ = c.Views(ctx, "s1", 8)
	assert.Equal(t, 0, n)
}

func TestMemoryCounter(t *testing.T) {
	exerciseCounter(t, NewMemoryCounter())
}

func TestRedisCounter(t *testing.T) {
	mr, client := setupRedis(t)
	c := NewRedisCounter(client, time.Hour)

	exerciseCounter(t, c)

	assert.True(t, mr.Exists("notify:views:s1:7"))
	assert.Equal(t, time.Hour, mr.TTL("notify:views:s1:7"))

	mr.FastForward(2 * time.Hour)
	n, err := c.Views(context.Background(), "s1", 7)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "counts expire after the ttl")
}

func TestRedisCounter_Unavailable(t *testing.T) {
	mr, client := setupRedis(t)
	c := NewRedisCounter(client, time.Hour)
	mr.Close()

	_, err := c.Views(context.Background(), "s1", 1)
	assert.Error(t, err)
	_, err = c.Increment(context.Background(), "s1", 1)
	assert.Error(t, err)
}
