package stores

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var errRedisUnavailable = errors.New("refresh store backend unavailable")

type redisRecord struct {
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Redis is a Store backed by a shared Redis instance, for deployments that
// run more than one server process. Only the SHA-256 of the token is used as
// the key; the token itself never reaches Redis.
type Redis struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedis(client *redis.Client, prefix string, now func() time.Time) *Redis {
	if prefix == "" {
		prefix = "mechauth:rt:"
	}
	if now == nil {
		now = time.Now
	}
	return &Redis{
		client: client,
		prefix: prefix,
		now:    now,
	}
}

func (r *Redis) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return r.prefix + hex.EncodeToString(sum[:])
}

// Put stores the record with a server-side TTL matching the record expiry, so
// Redis evicts dead entries on its own.
func (r *Redis) Put(ctx context.Context, token string, rec Record) error {
	ttl := rec.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(redisRecord{Subject: rec.Subject, ExpiresAt: rec.ExpiresAt})
	if err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	if err := r.client.Set(ctx, r.key(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, token string) (Record, bool, error) {
	data, err := r.client.Get(ctx, r.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return Record{Subject: rec.Subject, ExpiresAt: rec.ExpiresAt}, true, nil
}

func (r *Redis) Remove(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Del(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return n > 0, nil
}

// SweepExpired is a no-op: key TTLs handed to Redis at Put time make
// server-side expiry authoritative.
func (r *Redis) SweepExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
