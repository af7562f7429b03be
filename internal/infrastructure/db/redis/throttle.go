package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle is a Redis-backed variant of the in-memory throttle, for
// deployments where login attempts must be counted across replicas.
// Key format: lockout:<identity>. Expiry refreshes on every failure, so the
// window slides from the most recent attempt; Redis TTL handles purging.
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

func (t *LoginThrottle) IsLocked(ctx context.Context, identity string) (bool, error) {
	count, err := t.client.Get(ctx, t.key(identity)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lockout check: %w", err)
	}
	return count >= t.maxAttempts, nil
}

func (t *LoginThrottle) RecordFailure(ctx context.Context, identity string) error {
	key := t.key(identity)

	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("lockout record: %w", err)
	}
	return nil
}

func (t *LoginThrottle) Reset(ctx context.Context, identity string) error {
	if err := t.client.Del(ctx, t.key(identity)).Err(); err != nil {
		return fmt.Errorf("lockout reset: %w", err)
	}
	return nil
}

func (t *LoginThrottle) key(identity string) string {
	return "lockout:" + identity
}
