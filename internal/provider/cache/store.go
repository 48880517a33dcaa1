package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Record is a cached payload with an absolute expiry.
// A record is valid iff ExpiresAt is after now.
type Record struct {
	Value     json.RawMessage
	ExpiresAt time.Time
}

// Valid reports whether r has not yet expired at now.
func (r Record) Valid(now time.Time) bool { return r.ExpiresAt.After(now) }

// Store is a time-boxed key/value cache tier.
//
// Get reports ok=false for a missing or expired key; it never errors for a miss.
// Implementations may return transient errors, which callers treat as a miss.
// Both methods are safe for concurrent use on disjoint keys.
//
//go:generate mockgen -package=cache_test -destination=mock_store_test.go -source=store.go Store
type Store interface {
	Get(ctx context.Context, key string) (rec Record, ok bool, err error)
	Set(ctx context.Context, key string, rec Record) error
}

// NoopStore never holds anything. It stands in for the durable tier when no
// database is configured.
type NoopStore struct{}

func (NoopStore) Get(context.Context, string) (Record, bool, error) { return Record{}, false, nil }
func (NoopStore) Set(context.Context, string, Record) error         { return nil }
