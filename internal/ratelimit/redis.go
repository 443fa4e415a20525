package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter backed by Redis, for deployments
// running more than one instance behind a load balancer.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a Redis-backed limiter. The prefix namespaces
// counters so the submission and login limiters can share one connection.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// allowScript increments the counter and sets the window expiry in one
// atomic step, so a crash mid-call can never leave a counter without a TTL.
var allowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Allow implements Limiter using a fixed window counter in Redis
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	rkey := l.prefix + ":" + key

	count, err := allowScript.Run(ctx, l.client, []string{rkey}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, 0, err
	}

	if count > int64(l.limit) {
		ttl, err := l.client.TTL(ctx, rkey).Result()
		if err != nil {
			return false, 0, err
		}
		if ttl < 0 {
			ttl = l.window
		}
		return false, ttl, nil
	}
	return true, 0, nil
}

// Reset implements Limiter
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+":"+key).Err()
}
