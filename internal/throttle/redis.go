// Package throttle counts requests per key in fixed windows.
package throttle

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis allows at most Limit calls per key in each Window. The window starts
// at the first call for the key.
type Redis struct {
	client redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
}

func NewRedis(client redis.Cmdable, prefix string, limit int, window time.Duration) *Redis {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &Redis{client: client, prefix: prefix, limit: int64(limit), window: window}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	full := r.prefix + key
	count, err := r.client.Incr(ctx, full).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, full, r.window).Err(); err != nil {
			return true, err
		}
	}
	return count <= r.limit, nil
}

// Noop allows everything. Used when no Redis address is configured.
type Noop struct{}

func (Noop) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}
