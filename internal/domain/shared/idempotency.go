package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers the outcome of completed operations keyed by a
// caller-supplied idempotency key, so a retried call (double-submitted click,
// client-side retry after a timeout) replays the committed result instead of
// producing a second side effect.
type IdempotencyStore interface {
	// Lookup returns the stored payload for key, or found=false if the key
	// has not been seen (or has expired).
	Lookup(ctx context.Context, key string) (payload []byte, found bool, err error)

	// Remember stores the payload for key with a TTL, only if the key is
	// absent. Returns false if the key was already present, in which case
	// the existing payload wins. Used to reserve a key before the
	// operation runs, so concurrent requests with the same key cannot
	// both produce a side effect.
	Remember(ctx context.Context, key string, payload []byte, ttl time.Duration) (bool, error)

	// Complete unconditionally stores the payload for key with a TTL,
	// replacing a reservation taken via Remember with the committed
	// result.
	Complete(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Release deletes key so another caller may reserve it. Called when
	// the reserving operation failed without committing.
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a completed result stays replayable.
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
