// internal/cache/dedup.go
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dedup decides whether an inbound provider event was already seen.
// Meta redelivers webhook events aggressively, so the correlator checks
// every message id here before doing any work.
type Dedup interface {
	FirstSeen(ctx context.Context, messageID string) (bool, error)
}

type RedisDedup struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDedup(rdb *redis.Client, ttl time.Duration) *RedisDedup {
	return &RedisDedup{rdb: rdb, ttl: ttl}
}

// FirstSeen claims the message id atomically. It returns true exactly once
// per id within the TTL window.
func (d *RedisDedup) FirstSeen(ctx context.Context, messageID string) (bool, error) {
	return d.rdb.SetNX(ctx, "wh:event:"+messageID, 1, d.ttl).Result()
}

// NoopDedup treats every event as new. Used when Redis is not configured;
// the first-reply-only policy still filters duplicate replies downstream.
type NoopDedup struct{}

func (NoopDedup) FirstSeen(ctx context.Context, messageID string) (bool, error) {
	return true, nil
}

var _ Dedup = (*RedisDedup)(nil)
var _ Dedup = NoopDedup{}
