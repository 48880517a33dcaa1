package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS market_data_cache (
	provider   TEXT    NOT NULL,
	cache_key  TEXT    NOT NULL,
	payload    TEXT    NOT NULL,
	expires_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (provider, cache_key)
);
CREATE INDEX IF NOT EXISTS idx_market_data_cache_expires ON market_data_cache(expires_at);
`

// SQLiteStore is the durable tier. Rows are partitioned by provider name so a
// provider switch never serves another provider's payloads.
type SQLiteStore struct {
	db       *sql.DB
	provider string
	now      func() time.Time
}

type SQLiteOption func(*SQLiteStore)

// WithSQLiteClock overrides the clock used for expiry checks.
func WithSQLiteClock(now func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) { s.now = now }
}

// NewSQLiteStore creates the cache table if needed and returns a store scoped
// to providerName. The caller owns db.
func NewSQLiteStore(ctx context.Context, db *sql.DB, providerName string, opts ...SQLiteOption) (*SQLiteStore, error) {
	if providerName == "" {
		return nil, errors.New("sqlite cache: provider name is required")
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("sqlite cache: migrate: %w", err)
	}
	s := &SQLiteStore{db: db, provider: providerName, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (Record, bool, error) {
	var (
		payload   string
		expiresMs int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM market_data_cache WHERE provider = ? AND cache_key = ?`,
		s.provider, key,
	).Scan(&payload, &expiresMs)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("sqlite cache: get %s: %w", key, err)
	}

	now := s.now()
	rec := Record{Value: []byte(payload), ExpiresAt: time.UnixMilli(expiresMs)}
	if !rec.Valid(now) {
		// Lazy eviction; a failed delete only leaves a stale row behind.
		_, _ = s.db.ExecContext(ctx,
			`DELETE FROM market_data_cache WHERE provider = ? AND cache_key = ? AND expires_at <= ?`,
			s.provider, key, now.UnixMilli(),
		)
		return Record{}, false, nil
	}
	return rec, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO market_data_cache (provider, cache_key, payload, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(provider, cache_key) DO UPDATE SET
			payload = excluded.payload,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		s.provider, key, string(rec.Value), rec.ExpiresAt.UnixMilli(), s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlite cache: set %s: %w", key, err)
	}
	return nil
}

// PurgeExpired deletes every expired row of this provider and returns how many went.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM market_data_cache WHERE provider = ? AND expires_at <= ?`,
		s.provider, s.now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite cache: purge: %w", err)
	}
	return res.RowsAffected()
}
