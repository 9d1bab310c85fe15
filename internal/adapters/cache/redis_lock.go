package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/smartmed/consultas/internal/domain/providers"
	redisclient "github.com/smartmed/consultas/internal/infrastructure/clients/redis"
	"github.com/smartmed/consultas/pkg/retry"
)

// releaseScript deletes the lock key only when the caller still owns it,
// so an expired lock re-acquired by another booking attempt is never
// released by the original holder.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

const (
	acquireAttempts = 5
	acquireBackoff  = 50 * time.Millisecond
)

// RedisSlotLocker implements the SlotLocker interface with a Redis
// SET NX lock keyed per physician.
type RedisSlotLocker struct {
	client  *redisclient.Client
	release *redis.Script
}

// NewRedisSlotLocker creates a new Redis-backed slot locker
func NewRedisSlotLocker(client *redisclient.Client) providers.SlotLocker {
	return &RedisSlotLocker{
		client:  client,
		release: redis.NewScript(releaseScript),
	}
}

// Acquire takes the lock identified by key, retrying briefly when another
// booking holds it. The returned token must be passed back to Release.
func (l *RedisSlotLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.New().String()

	err := retry.Do(ctx, retry.Config{
		MaxAttempts:   acquireAttempts,
		InitialDelay:  acquireBackoff,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}, func() error {
		ok, err := l.client.Client().SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if !ok {
			return fmt.Errorf("lock %s is held by another booking", key)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

// Release frees the lock if token still owns it
func (l *RedisSlotLocker) Release(ctx context.Context, key string, token string) error {
	res, err := l.release.Run(ctx, l.client.Client(), []string{key}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	if res == 0 {
		return fmt.Errorf("lock %s no longer owned", key)
	}
	return nil
}
