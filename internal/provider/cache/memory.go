package cache

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// MemoryStore is the volatile, process-local tier.
type MemoryStore struct {
	now      func() time.Time
	maxItems int

	mu    sync.RWMutex
	items map[string]Record
}

type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the clock used for expiry checks.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) { m.now = now }
}

// WithMaxItems caps the number of entries. 0 means unbounded.
func WithMaxItems(n int) MemoryOption {
	return func(m *MemoryStore) { m.maxItems = n }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{now: time.Now, items: make(map[string]Record)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a copy of the record for key. Expired records are evicted.
func (m *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	now := m.now()

	m.mu.RLock()
	rec, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return Record{}, false, nil
	}
	if !rec.Valid(now) {
		m.mu.Lock()
		// Another writer may have refreshed the key since the read.
		if cur, ok := m.items[key]; ok && !cur.Valid(now) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return Record{}, false, nil
	}
	return Record{Value: bytes.Clone(rec.Value), ExpiresAt: rec.ExpiresAt}, true, nil
}

// Set stores a private copy of rec under key.
func (m *MemoryStore) Set(_ context.Context, key string, rec Record) error {
	rec.Value = bytes.Clone(rec.Value)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = rec
	if m.maxItems > 0 && len(m.items) > m.maxItems {
		m.evictLocked(key)
	}
	return nil
}

// Len returns the number of entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// evictLocked drops expired entries first, then arbitrary ones other than keep,
// until the store is back under its cap.
func (m *MemoryStore) evictLocked(keep string) {
	now := m.now()
	for k, v := range m.items {
		if len(m.items) <= m.maxItems {
			return
		}
		if !v.Valid(now) {
			delete(m.items, k)
		}
	}
	for k := range m.items {
		if len(m.items) <= m.maxItems {
			return
		}
		if k != keep {
			delete(m.items, k)
		}
	}
}
