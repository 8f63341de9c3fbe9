package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ViewCounter tracks how often a visitor session has seen a notification.
type ViewCounter interface {
	Views(ctx context.Context, sessionID string, notificationID uint) (int, error)
	Increment(ctx context.Context, sessionID string, notificationID uint) (int, error)
}

type viewKey struct {
	session string
	id      uint
}

// MemoryCounter keeps counts in process memory. Used when redis is disabled
// and in tests; counts are lost on restart.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[viewKey]int
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: make(map[viewKey]int)}
}

func (m *MemoryCounter) Views(_ context.Context, sessionID string, id uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[viewKey{sessionID, id}], nil
}

func (m *MemoryCounter) Increment(_ context.Context, sessionID string, id uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := viewKey{sessionID, id}
	m.counts[k]++
	return m.counts[k], nil
}

// RedisCounter stores counts as redis integers that expire after ttl of
// inactivity.
type RedisCounter struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisCounter(client redis.Cmdable, ttl time.Duration) *RedisCounter {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisCounter{client: client, ttl: ttl, prefix: "notify:views"}
}

func (r *RedisCounter) key(sessionID string, id uint) string {
	return fmt.Sprintf("%s:%s:%d", r.prefix, sessionID, id)
}

func (r *RedisCounter) Views(ctx context.Context, sessionID string, id uint) (int, error) {
	n, err := r.client.Get(ctx, r.key(sessionID, id)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get views: %w", err)
	}
	return n, nil
}

func (r *RedisCounter) Increment(ctx context.Context, sessionID string, id uint) (int, error) {
	key := r.key(sessionID, id)
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis incr views: %w", err)
	}
	return int(incr.Val()), nil
}
