// Package news aggregates raw articles from a pluggable Adapter into a ranked,
// de-duplicated and bounded list.
package news

import (
	"context"

	"marketdash/internal/market"
)

// Adapter fetches raw, possibly duplicated articles for a symbol.
// Implementations live under news/adapters.
//
//go:generate mockgen -package=news_test -destination=mock_adapter_test.go -source=adapter.go Adapter
type Adapter interface {
	Name() string
	FetchNews(ctx context.Context, symbol string, limit int) ([]market.NewsArticle, error)
}
