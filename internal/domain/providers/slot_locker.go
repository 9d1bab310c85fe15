package providers

import (
	"context"
	"time"
)

// SlotLocker serializes booking writes per physician. The conflict check
// and the subsequent insert are not atomic at the storage layer, so every
// path that checks availability and then writes an appointment must hold
// the physician's lock across both steps.
type SlotLocker interface {
	// Acquire takes the exclusive lock for key, returning an owner token.
	// It fails once the acquisition retry budget is spent.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, err error)

	// Release frees the lock if token still owns it.
	Release(ctx context.Context, key, token string) error
}
