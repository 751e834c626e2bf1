package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed event IDs so side effects triggered
// by an event run at most once per TTL window.
type IdempotencyStore interface {
	// MarkProcessed returns true if the event was newly marked, false if it
	// had already been processed
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	// Unmark forgets an event so a failed side effect can be retried
	Unmark(ctx context.Context, eventID string) error
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
