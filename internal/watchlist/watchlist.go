// Package watchlist stores the symbols shown on the dashboard.
package watchlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no item has the requested ID.
var ErrNotFound = errors.New("watchlist item not found")

const schema = `
CREATE TABLE IF NOT EXISTS watchlist_items (
	id         TEXT PRIMARY KEY,
	symbol     TEXT NOT NULL,
	name       TEXT,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_watchlist_created ON watchlist_items(created_at);
`

type Item struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input creates an item. Symbol is trimmed and upper-cased; a blank Name is
// stored as NULL.
type Input struct {
	Symbol string `json:"symbol" validate:"required,max=10"`
	Name   string `json:"name" validate:"max=100"`
}

// Patch updates an item. A nil Symbol keeps the current one; Name always
// replaces the stored name, so a nil or blank Name clears it.
type Patch struct {
	Symbol *string `json:"symbol" validate:"omitnil,min=1,max=10"`
	Name   *string `json:"name" validate:"omitnil,max=100"`
}

// ValidationError wraps input that failed validation.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid watchlist input: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

type Store struct {
	db       *sql.DB
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New migrates the watchlist table and returns a store. The caller owns db.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("watchlist: migrate: %w", err)
	}
	s := &Store{
		db:       db,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// List returns all items, newest first.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, name, created_at, updated_at FROM watchlist_items ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("watchlist: list: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("watchlist: list: %w", err)
	}
	return items, nil
}

// Symbols returns the distinct symbols on the watchlist, newest first.
func (s *Store) Symbols(ctx context.Context) ([]string, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.Symbol]; ok {
			continue
		}
		seen[it.Symbol] = struct{}{}
		out = append(out, it.Symbol)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, name, created_at, updated_at FROM watchlist_items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

func (s *Store) Create(ctx context.Context, in Input) (Item, error) {
	in.Symbol = normalizeSymbol(in.Symbol)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return Item{}, &ValidationError{Err: err}
	}

	now := s.now().UTC()
	it := Item{
		ID:        s.newID(),
		Symbol:    in.Symbol,
		Name:      nullable(in.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO watchlist_items (id, symbol, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		it.ID, it.Symbol, it.Name, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return Item{}, fmt.Errorf("watchlist: create: %w", err)
	}
	it.CreatedAt = time.UnixMilli(now.UnixMilli()).UTC()
	it.UpdatedAt = it.CreatedAt
	return it, nil
}

func (s *Store) Update(ctx context.Context, id string, p Patch) (Item, error) {
	if p.Symbol != nil {
		sym := normalizeSymbol(*p.Symbol)
		p.Symbol = &sym
	}
	var name string
	if p.Name != nil {
		name = strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if err := s.validate.Struct(p); err != nil {
		return Item{}, &ValidationError{Err: err}
	}

	cur, err := s.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if p.Symbol != nil {
		cur.Symbol = *p.Symbol
	}
	cur.Name = nullable(name)
	cur.UpdatedAt = time.UnixMilli(s.now().UnixMilli()).UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE watchlist_items SET symbol = ?, name = ?, updated_at = ? WHERE id = ?`,
		cur.Symbol, cur.Name, cur.UpdatedAt.UnixMilli(), id)
	if err != nil {
		return Item{}, fmt.Errorf("watchlist: update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Item{}, ErrNotFound
	}
	return cur, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlist_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("watchlist: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (Item, error) {
	var (
		it      Item
		name    sql.NullString
		created int64
		updated int64
	)
	if err := sc.Scan(&it.ID, &it.Symbol, &name, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, err
		}
		return Item{}, fmt.Errorf("watchlist: scan: %w", err)
	}
	if name.Valid {
		it.Name = &name.String
	}
	it.CreatedAt = time.UnixMilli(created).UTC()
	it.UpdatedAt = time.UnixMilli(updated).UTC()
	return it, nil
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
