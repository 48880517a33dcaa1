package provider

import (
	"context"

	"marketdash/internal/market"
)

// MarketDataProvider is implemented by every quote/history/indicator/news backend
// and by the decorators that wrap them.
//
// Symbols are case-insensitive. Implementations upper-case them before any lookup.
// All failures are *marketerr.Error values.
//
//go:generate mockgen -package=cache_test -destination=cache/mock_provider_test.go -source=provider.go MarketDataProvider
type MarketDataProvider interface {
	// Name identifies the backend; the durable cache is partitioned by it.
	Name() string
	GetQuote(ctx context.Context, symbol string) (market.Quote, error)
	// GetHistory returns at most days candles, ascending by time.
	GetHistory(ctx context.Context, symbol string, days int) ([]market.Candle, error)
	GetIndicators(ctx context.Context, symbol string) (market.IndicatorSnapshot, error)
	GetNews(ctx context.Context, symbol string, limit int) ([]market.NewsArticle, error)
}
