package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"marketdash/internal/market"
	"marketdash/internal/provider"
)

// TTL holds the time-to-live per operation kind.
type TTL struct {
	Quote      time.Duration
	History    time.Duration
	Indicators time.Duration
	News       time.Duration
}

// DefaultTTL is 30s for quotes, 5m for history and indicators, 10m for news.
func DefaultTTL() TTL {
	return TTL{
		Quote:      30 * time.Second,
		History:    5 * time.Minute,
		Indicators: 5 * time.Minute,
		News:       10 * time.Minute,
	}
}

// Provider wraps a MarketDataProvider with a fast (volatile) and a slow
// (durable) tier.
//
// Lookups go fast tier, then slow tier (promoting the record to the fast tier
// with its original expiry), then the inner provider, whose result is written
// to both tiers. Store failures behave as misses; inner provider errors are
// returned unchanged and never cached.
//
// Concurrent misses on the same key each reach the inner provider. There is
// no single-flight coordination.
type Provider struct {
	inner  provider.MarketDataProvider
	fast   Store
	slow   Store
	ttl    TTL
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Provider)

func WithLogger(l *zap.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the clock used to compute expiries.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func New(inner provider.MarketDataProvider, fast, slow Store, ttl TTL, opts ...Option) *Provider {
	p := &Provider{
		inner:  inner,
		fast:   fast,
		slow:   slow,
		ttl:    ttl,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return p.inner.Name() }

func (p *Provider) GetQuote(ctx context.Context, symbol string) (market.Quote, error) {
	key := "quote:" + market.KeySymbol(symbol)
	return getOrLoad(ctx, p, key, p.ttl.Quote, func(ctx context.Context) (market.Quote, error) {
		return p.inner.GetQuote(ctx, symbol)
	})
}

func (p *Provider) GetHistory(ctx context.Context, symbol string, days int) ([]market.Candle, error) {
	if days <= 0 {
		days = market.DefaultHistoryDays
	}
	key := fmt.Sprintf("history:%s:%d", market.KeySymbol(symbol), days)
	return getOrLoad(ctx, p, key, p.ttl.History, func(ctx context.Context) ([]market.Candle, error) {
		return p.inner.GetHistory(ctx, symbol, days)
	})
}

func (p *Provider) GetIndicators(ctx context.Context, symbol string) (market.IndicatorSnapshot, error) {
	key := "indicators:" + market.KeySymbol(symbol)
	return getOrLoad(ctx, p, key, p.ttl.Indicators, func(ctx context.Context) (market.IndicatorSnapshot, error) {
		return p.inner.GetIndicators(ctx, symbol)
	})
}

func (p *Provider) GetNews(ctx context.Context, symbol string, limit int) ([]market.NewsArticle, error) {
	if limit <= 0 {
		limit = market.DefaultNewsLimit
	}
	key := fmt.Sprintf("news:%s:%d", market.KeySymbol(symbol), limit)
	return getOrLoad(ctx, p, key, p.ttl.News, func(ctx context.Context) ([]market.NewsArticle, error) {
		return p.inner.GetNews(ctx, symbol, limit)
	})
}

func getOrLoad[T any](ctx context.Context, p *Provider, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if rec, ok := p.lookup(ctx, p.fast, "fast", key); ok {
		var v T
		if err := json.Unmarshal(rec.Value, &v); err == nil {
			return v, nil
		}
		p.logger.Warn("cache: undecodable record", zap.String("tier", "fast"), zap.String("key", key))
	}

	if rec, ok := p.lookup(ctx, p.slow, "slow", key); ok {
		var v T
		if err := json.Unmarshal(rec.Value, &v); err == nil {
			if err := p.fast.Set(ctx, key, rec); err != nil {
				p.logger.Warn("cache: promote failed", zap.String("key", key), zap.Error(err))
			}
			return v, nil
		}
		p.logger.Warn("cache: undecodable record", zap.String("tier", "slow"), zap.String("key", key))
	}

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Warn("cache: encode failed", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	p.writeBoth(ctx, key, Record{Value: payload, ExpiresAt: p.now().Add(ttl)})
	return v, nil
}

func (p *Provider) lookup(ctx context.Context, s Store, tier, key string) (Record, bool) {
	rec, ok, err := s.Get(ctx, key)
	if err != nil {
		p.logger.Warn("cache: read failed", zap.String("tier", tier), zap.String("key", key), zap.Error(err))
		return Record{}, false
	}
	return rec, ok
}

// writeBoth writes rec to both tiers in parallel and waits for both. Failures
// are logged only; the caller already has its value.
func (p *Provider) writeBoth(ctx context.Context, key string, rec Record) {
	ctx = context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	for _, t := range []struct {
		name  string
		store Store
	}{{"fast", p.fast}, {"slow", p.slow}} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := t.store.Set(ctx, key, rec); err != nil {
				p.logger.Warn("cache: write failed", zap.String("tier", t.name), zap.String("key", key), zap.Error(err))
			}
		}()
	}
	wg.Wait()
}
