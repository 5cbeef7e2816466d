package throttle

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var errRedisUnavailable = errors.New("throttle backend unavailable")

// Redis is a Throttle backed by a shared Redis instance so that lockouts are
// visible across server processes. INCR gives the atomic read-modify-write;
// the key TTL doubles as the lockout window, so an idle key ages out instead
// of persisting forever.
type Redis struct {
	client *redis.Client
	cfg    Config
	prefix string
}

func NewRedis(client *redis.Client, prefix string, cfg Config) *Redis {
	if prefix == "" {
		prefix = "mechauth:la:"
	}
	return &Redis{
		client: client,
		cfg:    cfg,
		prefix: prefix,
	}
}

func (r *Redis) key(origin string) string {
	return r.prefix + origin
}

func (r *Redis) CheckAllowed(ctx context.Context, key string) error {
	count, err := r.client.Get(ctx, r.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	if count >= int64(r.cfg.MaxAttempts) {
		return ErrLocked
	}
	return nil
}

func (r *Redis) RecordFailure(ctx context.Context, key string) error {
	k := r.key(key)

	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	// First failure starts the window; reaching the threshold restarts it so
	// the lockout is measured from the moment the key locked.
	if count == 1 || count == int64(r.cfg.MaxAttempts) {
		if err := r.client.Expire(ctx, k, r.cfg.LockoutDuration).Err(); err != nil {
			return fmt.Errorf("%w: %v", errRedisUnavailable, err)
		}
	}
	return nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return nil
}
