package abuse

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter is the shared-store CounterStore: INCR with an expiry attached
// on first increment, so counters self-reset when the window closes.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter creates a Redis-backed counter store.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr atomically increments the key and sets the window TTL if none is set.
func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Get returns the live count for key, zero when absent or expired.
func (r *RedisCounter) Get(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
