// Package marketdata wires configuration into the cached provider and the news
// service, and exposes the query API used by the HTTP server, CLI and warmer.
//
// Both the provider stack and the news service are built on first use and
// kept for the lifetime of the Service; configuration changes after that
// point have no effect.
package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"marketdash/internal/config"
	"marketdash/internal/market"
	"marketdash/internal/marketerr"
	"marketdash/internal/news"
	mocknews "marketdash/internal/news/adapters/mock"
	"marketdash/internal/news/adapters/rss"
	"marketdash/internal/news/adapters/websearch"
	"marketdash/internal/provider"
	"marketdash/internal/provider/alphavantage"
	"marketdash/internal/provider/cache"
	"marketdash/internal/provider/mock"
	"marketdash/internal/provider/ratelimit"
)

// quotesConcurrency bounds the fan-out of Quotes.
const quotesConcurrency = 8

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Service struct {
	cfg        config.Config
	db         *sql.DB
	logger     *zap.Logger
	httpClient HTTPClient

	providerOnce sync.Once
	provider     provider.MarketDataProvider
	durable      *cache.SQLiteStore

	newsOnce sync.Once
	news     *news.Service
	newsErr  error
}

type Option func(*Service)

// WithDB enables the durable cache tier. The caller owns db.
func WithDB(db *sql.DB) Option {
	return func(s *Service) { s.db = db }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHTTPClient sets the client used by upstream providers and adapters.
func WithHTTPClient(c HTTPClient) Option {
	return func(s *Service) {
		if c != nil {
			s.httpClient = c
		}
	}
}

func New(cfg config.Config, opts ...Option) *Service {
	s := &Service{cfg: cfg, logger: zap.NewNop(), httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the cached provider stack, building it on first call.
func (s *Service) Provider(ctx context.Context) provider.MarketDataProvider {
	s.providerOnce.Do(func() {
		s.provider = s.buildProvider(context.WithoutCancel(ctx))
	})
	return s.provider
}

// ProviderKind normalises a configured provider name. Unknown names map to mock.
func ProviderKind(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "alphavantage", "alpha_vantage", "alpha-vantage":
		return "alphavantage"
	default:
		return "mock"
	}
}

func (s *Service) buildProvider(ctx context.Context) provider.MarketDataProvider {
	var raw provider.MarketDataProvider
	switch ProviderKind(s.cfg.MarketData.Provider) {
	case "alphavantage":
		av := s.cfg.MarketData.AlphaVantage
		client := alphavantage.NewClient(av.APIKey,
			alphavantage.WithBaseURL(av.BaseURL),
			alphavantage.WithHTTPClient(s.httpClient),
		)
		raw = alphavantage.New(client)
		switch {
		case av.MaxRequestsPerMinute > 0:
			raw = ratelimit.New(raw, ratelimit.PerMinute(av.MaxRequestsPerMinute, av.Burst))
		case av.MinRequestIntervalSec > 0:
			raw = ratelimit.New(raw, &ratelimit.MinInterval{Interval: time.Duration(av.MinRequestIntervalSec) * time.Second})
		}
	default:
		raw = mock.New()
	}

	c := s.cfg.MarketData.Cache
	ttl := cache.TTL{
		Quote:      c.QuoteTTL(),
		History:    c.HistoryTTL(),
		Indicators: c.IndicatorsTTL(),
		News:       c.NewsTTL(),
	}
	fast := cache.NewMemoryStore(cache.WithMaxItems(c.MemoryMaxItems))

	var slow cache.Store = cache.NoopStore{}
	if s.db != nil {
		store, err := cache.NewSQLiteStore(ctx, s.db, raw.Name())
		if err != nil {
			s.logger.Warn("durable cache disabled", zap.Error(err))
		} else {
			s.durable = store
			slow = store
		}
	}

	s.logger.Info("market data provider ready",
		zap.String("provider", raw.Name()),
		zap.Bool("durable_cache", s.durable != nil),
	)
	return cache.New(raw, fast, slow, ttl, cache.WithLogger(s.logger))
}

// News returns the news service, building it on first call. An unknown
// adapter name yields a provider_config error, now and on every later call.
func (s *Service) News() (*news.Service, error) {
	s.newsOnce.Do(func() {
		adapter, err := s.buildAdapter()
		if err != nil {
			s.newsErr = err
			return
		}
		n := s.cfg.News
		s.news = news.NewService(adapter, news.Config{
			MinFetch:            n.MinFetch,
			SimilarityThreshold: n.SimilarityThreshold,
			DefaultLimit:        n.DefaultLimit,
			MaxLimit:            n.MaxLimit,
			SourcePriority:      n.SourcePriority,
		}, news.WithLogger(s.logger))
	})
	return s.news, s.newsErr
}

func (s *Service) buildAdapter() (news.Adapter, error) {
	n := s.cfg.News
	switch name := strings.ToLower(strings.TrimSpace(n.Adapter)); name {
	case "mock":
		return mocknews.New(), nil
	case "rss":
		feeds := make([]rss.Feed, 0, len(n.RSS.Feeds))
		for _, f := range n.RSS.Feeds {
			feeds = append(feeds, rss.Feed{Name: f.Name, URL: f.URL})
		}
		return rss.New(rss.Config{
			Feeds:    feeds,
			CacheTTL: time.Duration(n.RSS.FeedCacheTTLSec) * time.Second,
		}, s.httpClient, rss.WithLogger(s.logger)), nil
	case "websearch", "web_search", "web-search":
		return websearch.New(websearch.Config{
			Endpoint: n.WebSearch.Endpoint,
			APIKey:   n.WebSearch.APIKey,
			Language: n.WebSearch.Language,
		}, s.httpClient), nil
	default:
		return nil, marketerr.ProviderConfig(fmt.Sprintf("unknown news adapter %q", name))
	}
}

func (s *Service) GetQuote(ctx context.Context, symbol string) (market.Quote, error) {
	return s.Provider(ctx).GetQuote(ctx, symbol)
}

func (s *Service) GetHistory(ctx context.Context, symbol string, days int) ([]market.Candle, error) {
	return s.Provider(ctx).GetHistory(ctx, symbol, days)
}

func (s *Service) GetIndicators(ctx context.Context, symbol string) (market.IndicatorSnapshot, error) {
	return s.Provider(ctx).GetIndicators(ctx, symbol)
}

// GetNews returns the provider's own news for symbol, through the cache.
func (s *Service) GetNews(ctx context.Context, symbol string, limit int) ([]market.NewsArticle, error) {
	return s.Provider(ctx).GetNews(ctx, symbol, limit)
}

// GetTickerNews returns the aggregated, de-duplicated news for symbol.
func (s *Service) GetTickerNews(ctx context.Context, symbol string, limit int) ([]market.NewsArticle, error) {
	svc, err := s.News()
	if err != nil {
		return nil, err
	}
	return svc.GetTickerNews(ctx, symbol, limit)
}

// QuoteResult is the outcome for one symbol of Quotes. Exactly one of Quote
// and Err is set.
type QuoteResult struct {
	Symbol string
	Quote  *market.Quote
	Err    error
}

// Quotes fetches every symbol concurrently and never fails as a whole: each
// result carries its own quote or error, in input order.
func (s *Service) Quotes(ctx context.Context, symbols []string) []QuoteResult {
	p := s.Provider(ctx)
	results := make([]QuoteResult, len(symbols))

	var g errgroup.Group
	g.SetLimit(quotesConcurrency)
	for i, sym := range symbols {
		g.Go(func() error {
			q, err := p.GetQuote(ctx, sym)
			if err != nil {
				results[i] = QuoteResult{Symbol: market.KeySymbol(sym), Err: err}
				return nil
			}
			results[i] = QuoteResult{Symbol: market.KeySymbol(sym), Quote: &q}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// PurgeExpired drops expired rows from the durable tier, if there is one.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	s.Provider(ctx)
	if s.durable == nil {
		return 0, nil
	}
	return s.durable.PurgeExpired(ctx)
}
