// Package ratelimit throttles calls to an upstream MarketDataProvider.
//
// Place it inside the cache decorator so cache hits never consume budget.
package ratelimit

import (
	"context"

	"marketdash/internal/market"
	"marketdash/internal/marketerr"
	"marketdash/internal/provider"
)

// Gate blocks until the caller may proceed or ctx is done.
type Gate interface {
	Wait(ctx context.Context) error
}

// Provider gates every upstream call through a Gate.
type Provider struct {
	P    provider.MarketDataProvider
	Gate Gate
}

func New(p provider.MarketDataProvider, gate Gate) *Provider {
	return &Provider{P: p, Gate: gate}
}

func (p *Provider) Name() string { return p.P.Name() }

func (p *Provider) wait(ctx context.Context) error {
	if p.Gate == nil {
		return nil
	}
	if err := p.Gate.Wait(ctx); err != nil {
		return marketerr.Network("rate limiter: gave up waiting", err)
	}
	return nil
}

func (p *Provider) GetQuote(ctx context.Context, symbol string) (market.Quote, error) {
	if err := p.wait(ctx); err != nil {
		return market.Quote{}, err
	}
	return p.P.GetQuote(ctx, symbol)
}

func (p *Provider) GetHistory(ctx context.Context, symbol string, days int) ([]market.Candle, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.P.GetHistory(ctx, symbol, days)
}

func (p *Provider) GetIndicators(ctx context.Context, symbol string) (market.IndicatorSnapshot, error) {
	if err := p.wait(ctx); err != nil {
		return market.IndicatorSnapshot{}, err
	}
	return p.P.GetIndicators(ctx, symbol)
}

func (p *Provider) GetNews(ctx context.Context, symbol string, limit int) ([]market.NewsArticle, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.P.GetNews(ctx, symbol, limit)
}
