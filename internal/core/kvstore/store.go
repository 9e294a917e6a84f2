// Package kvstore abstracts the small key-value surface the monitoring core
// needs: atomic counters with expiry and set-if-absent marks. Production uses
// Redis; the in-memory store backs tests and single-node deployments.
package kvstore

import (
	"context"
	"time"
)

type Store interface {
	// IncrWithTTL atomically increments key and returns the new count. The
	// TTL is applied on the first increment only, in the same atomic step,
	// so a counter can never exist without an expiry.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// SetNX sets a mark with a TTL if the key is absent. Returns true when
	// this call acquired the mark.
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
