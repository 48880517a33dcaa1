// Package mock is a deterministic MarketDataProvider.
//
// Every numeric field is a pure function of the symbol: the sum of its character
// codes fed through sin/cos. Repeated calls return the same numbers, and
// different symbols look visibly different.
package mock

import (
	"context"
	"fmt"
	"math"
	"time"

	"marketdash/internal/market"
)

const day = 24 * time.Hour

var knownSymbols = map[string]string{
	"AAPL":  "Apple Inc.",
	"MSFT":  "Microsoft Corp.",
	"NVDA":  "NVIDIA Corp.",
	"TSLA":  "Tesla Inc.",
	"AMZN":  "Amazon.com Inc.",
	"GOOGL": "Alphabet Inc.",
}

// Provider is the deterministic mock backend.
type Provider struct {
	now func() time.Time
}

type Option func(*Provider)

// WithClock fixes the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func New(opts ...Option) *Provider {
	p := &Provider{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return "mock" }

func (p *Provider) GetQuote(_ context.Context, symbol string) (market.Quote, error) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		return market.Quote{}, err
	}
	seed := symbolSeed(sym)
	base := float64(80 + seed%350)
	wave := math.Sin(float64(seed)) * 8
	price := market.Round2(base + wave)
	change := market.Round2(math.Cos(float64(seed)) * 4)

	return market.Quote{
		Symbol:        sym,
		Name:          displayName(sym),
		Price:         price,
		Change:        change,
		ChangePercent: market.ChangePercent(price, change),
		UpdatedAt:     p.now().UTC(),
	}, nil
}

func (p *Provider) GetHistory(_ context.Context, symbol string, days int) ([]market.Candle, error) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = market.DefaultHistoryDays
	}
	seed := symbolSeed(sym)
	start := p.now().UTC().Add(-time.Duration(days) * day)
	base := float64(90 + seed%240)

	out := make([]market.Candle, days)
	for i := range out {
		trend := float64(i) * 0.25
		swing := math.Sin(float64(seed+i)/3) * 5
		out[i] = market.Candle{
			Timestamp: start.Add(time.Duration(i) * day),
			Close:     market.Round2(base + trend + swing),
		}
	}
	return out, nil
}

func (p *Provider) GetIndicators(_ context.Context, symbol string) (market.IndicatorSnapshot, error) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		return market.IndicatorSnapshot{}, err
	}
	seed := symbolSeed(sym)
	return market.IndicatorSnapshot{
		Symbol:    sym,
		RSI14:     market.Round2(float64(35 + seed%35)),
		SMA20:     market.Round2(float64(100 + seed%120)),
		SMA50:     market.Round2(float64(95 + seed%130)),
		UpdatedAt: p.now().UTC(),
	}, nil
}

func (p *Provider) GetNews(_ context.Context, symbol string, limit int) ([]market.NewsArticle, error) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = market.DefaultNewsLimit
	}
	now := p.now().UTC()
	out := make([]market.NewsArticle, limit)
	for i := range out {
		out[i] = market.NewsArticle{
			ID:          fmt.Sprintf("%s-mock-news-%d", sym, i+1),
			Symbol:      sym,
			Headline:    fmt.Sprintf("%s mock market headline #%d", sym, i+1),
			Summary:     fmt.Sprintf("Mock summary of a market event for %s.", sym),
			Source:      "MockWire",
			URL:         fmt.Sprintf("https://example.com/mock-news/%s/%d", sym, i+1),
			PublishedAt: now.Add(-time.Duration(i) * 6 * time.Hour),
			Sentiment:   SentimentFor(i),
		}
	}
	return out, nil
}

// SentimentFor cycles positive, neutral, negative by index.
func SentimentFor(i int) market.Sentiment {
	switch i % 3 {
	case 0:
		return market.SentimentPositive
	case 1:
		return market.SentimentNeutral
	default:
		return market.SentimentNegative
	}
}

func symbolSeed(symbol string) int {
	seed := 0
	for _, r := range symbol {
		seed += int(r)
	}
	return seed
}

func displayName(symbol string) string {
	if name, ok := knownSymbols[symbol]; ok {
		return name
	}
	return symbol + " Holdings"
}
