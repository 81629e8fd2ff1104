package shared

import (
	"context"
	"time"
)

// IdempotencyStore records client-supplied idempotency keys so a retried
// mutating request is not applied twice.
type IdempotencyStore interface {
	// MarkProcessed marks a key as seen with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release forgets a key so a later request may use it again
	Release(ctx context.Context, key string) error

	// IsProcessed checks if a key has already been seen
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}
