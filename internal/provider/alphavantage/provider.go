// Package alphavantage is the Alpha Vantage backed MarketDataProvider.
package alphavantage

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketdash/internal/indicator"
	"marketdash/internal/market"
)

const sourceName = "Alpha Vantage"

// Provider adapts Client to provider.MarketDataProvider.
type Provider struct {
	client *Client
	now    func() time.Time
}

type Option func(*Provider)

// WithClock fixes the clock used for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func New(client *Client, opts ...Option) *Provider {
	p := &Provider{client: client, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return "alphavantage" }

func (p *Provider) GetQuote(ctx context.Context, symbol string) (market.Quote, error) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		return market.Quote{}, err
	}
	raw, err := p.client.GlobalQuote(ctx, sym)
	if err != nil {
		return market.Quote{}, err
	}

	name := sym
	if raw.Symbol != "" {
		name = raw.Symbol
	}
	return market.Quote{
		Symbol:        name,
		Name:          name,
		Price:         market.Round2(parseNumber(raw.Price)),
		Change:        market.Round2(parseNumber(raw.Change)),
		ChangePercent: market.Round2(parseNumber(raw.ChangePercent)),
		UpdatedAt:     p.now().UTC(),
	}, nil
}

// GetHistory returns the latest days daily closes in ascending order. The
// compact series holds about 100 sessions, which caps the result.
func (p *Provider) GetHistory(ctx context.Context, symbol string, days int) ([]market.Candle, error) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = market.DefaultHistoryDays
	}
	series, err := p.client.DailySeries(ctx, sym)
	if err != nil {
		return nil, err
	}
	if len(series) > days {
		series = series[:days]
	}

	out := make([]market.Candle, 0, len(series))
	for i := len(series) - 1; i >= 0; i-- {
		ts, err := time.Parse(time.DateOnly, series[i].Date)
		if err != nil {
			continue
		}
		out = append(out, market.Candle{Timestamp: ts.UTC(), Close: market.Round2(series[i].Close)})
	}
	return out, nil
}

// GetIndicators derives RSI(14), SMA(20) and SMA(50) from the compact daily series.
func (p *Provider) GetIndicators(ctx context.Context, symbol string) (market.IndicatorSnapshot, error) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		return market.IndicatorSnapshot{}, err
	}
	series, err := p.client.DailySeries(ctx, sym)
	if err != nil {
		return market.IndicatorSnapshot{}, err
	}

	closes := make([]float64, len(series))
	for i, row := range series {
		closes[len(series)-1-i] = row.Close
	}
	rsi, err := indicator.RSI(closes, 14)
	if err != nil {
		return market.IndicatorSnapshot{}, err
	}
	return market.IndicatorSnapshot{
		Symbol:    sym,
		RSI14:     market.Round2(rsi),
		SMA20:     market.Round2(indicator.SMAOrMean(closes, 20)),
		SMA50:     market.Round2(indicator.SMAOrMean(closes, 50)),
		UpdatedAt: p.now().UTC(),
	}, nil
}

func (p *Provider) GetNews(ctx context.Context, symbol string, limit int) ([]market.NewsArticle, error) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = market.DefaultNewsLimit
	}
	feed, err := p.client.NewsSentiment(ctx, sym, limit)
	if err != nil {
		return nil, err
	}

	out := make([]market.NewsArticle, 0, len(feed))
	for _, item := range feed {
		if item.URL == "" {
			continue
		}
		published, err := time.Parse("20060102T150405", item.TimePublished)
		if err != nil {
			published = p.now()
		}
		source := item.Source
		if source == "" {
			source = sourceName
		}
		out = append(out, market.NewsArticle{
			ID:          uuid.NewSHA1(uuid.NameSpaceURL, []byte(item.URL)).String(),
			Symbol:      sym,
			Headline:    item.Title,
			Summary:     item.Summary,
			Source:      source,
			URL:         item.URL,
			PublishedAt: published.UTC(),
			Sentiment:   sentimentFromLabel(item.OverallSentimentLabel),
		})
	}
	return out, nil
}

func sentimentFromLabel(label string) market.Sentiment {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "bullish", "somewhat-bullish", "somewhat_bullish":
		return market.SentimentPositive
	case "bearish", "somewhat-bearish", "somewhat_bearish":
		return market.SentimentNegative
	default:
		return market.SentimentNeutral
	}
}
