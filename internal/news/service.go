package news

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"marketdash/internal/market"
)

// DefaultSourcePriority ranks outlets from most to least preferred.
// Unlisted sources all rank after the last entry.
var DefaultSourcePriority = []string{
	"Reuters",
	"Bloomberg",
	"The Wall Street Journal",
	"WSJ",
	"CNBC",
	"The New York Times",
	"AP News",
	"MarketWatch",
	"Barron's",
	"Forbes",
	"한국경제",
	"서울 파이낸스",
	"서울파이낸스",
	"서울경제",
	"디일렉",
}

// Config tunes the aggregation pipeline.
type Config struct {
	// MinFetch is the floor on how many raw articles are requested.
	MinFetch int
	// SimilarityThreshold marks two headlines as the same story.
	SimilarityThreshold float64
	// DefaultLimit applies when the caller passes 0.
	DefaultLimit int
	// MaxLimit caps the result size.
	MaxLimit int
	// SourcePriority is matched case-insensitively against NewsArticle.Source.
	SourcePriority []string
}

func DefaultConfig() Config {
	return Config{
		MinFetch:            15,
		SimilarityThreshold: 0.85,
		DefaultLimit:        10,
		MaxLimit:            20,
		SourcePriority:      DefaultSourcePriority,
	}
}

// Service turns adapter output into the ticker news list.
type Service struct {
	adapter Adapter
	cfg     Config
	rank    map[string]int
	logger  *zap.Logger
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService fills zero fields of cfg from DefaultConfig.
func NewService(adapter Adapter, cfg Config, opts ...Option) *Service {
	def := DefaultConfig()
	if cfg.MinFetch <= 0 {
		cfg.MinFetch = def.MinFetch
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = def.SimilarityThreshold
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxLimit
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.SourcePriority == nil {
		cfg.SourcePriority = def.SourcePriority
	}

	s := &Service{adapter: adapter, cfg: cfg, logger: zap.NewNop()}
	s.rank = make(map[string]int, len(cfg.SourcePriority))
	for i, src := range cfg.SourcePriority {
		key := strings.ToLower(src)
		if _, dup := s.rank[key]; !dup {
			s.rank[key] = i
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AdapterName reports which adapter backs the service.
func (s *Service) AdapterName() string { return s.adapter.Name() }

// ClampLimit maps 0 to the default limit and clamps everything else to [1, MaxLimit].
func (s *Service) ClampLimit(limit int) int {
	switch {
	case limit == 0:
		limit = s.cfg.DefaultLimit
	case limit < 1:
		limit = 1
	}
	return min(limit, s.cfg.MaxLimit)
}

// GetTickerNews fetches at least MinFetch raw articles and returns the top
// limit after de-duplication and prioritisation. Adapter errors are returned
// unchanged.
func (s *Service) GetTickerNews(ctx context.Context, symbol string, limit int) ([]market.NewsArticle, error) {
	n := s.ClampLimit(limit)
	raw, err := s.adapter.FetchNews(ctx, symbol, max(n, s.cfg.MinFetch))
	if err != nil {
		return nil, err
	}
	out := s.Aggregate(raw, n)
	s.logger.Debug("news aggregated",
		zap.String("adapter", s.adapter.Name()),
		zap.String("symbol", symbol),
		zap.Int("raw", len(raw)),
		zap.Int("returned", len(out)),
	)
	return out, nil
}

// Aggregate runs de-duplication, prioritisation and truncation over items.
// Applying it to its own output returns that output unchanged.
func (s *Service) Aggregate(items []market.NewsArticle, limit int) []market.NewsArticle {
	out := s.Prioritize(Dedupe(items, s.cfg.SimilarityThreshold))
	if n := s.ClampLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out
}

// Dedupe keeps the most recent version of each story. Articles are visited
// newest first; one is dropped when its canonical URL was already kept or its
// headline is at least threshold similar to a kept headline. Kept articles
// carry their canonical URL. items is not modified.
func Dedupe(items []market.NewsArticle, threshold float64) []market.NewsArticle {
	sorted := make([]market.NewsArticle, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})

	seen := make(map[string]struct{}, len(sorted))
	kept := make([]market.NewsArticle, 0, len(sorted))
	keptTokens := make([]map[string]struct{}, 0, len(sorted))

outer:
	for _, item := range sorted {
		canonical := CanonicalURL(item.URL)
		if _, dup := seen[canonical]; dup {
			continue
		}
		tokens := tokenSet(item.Headline)
		for _, other := range keptTokens {
			if overlap(tokens, other) >= threshold {
				continue outer
			}
		}
		seen[canonical] = struct{}{}
		item.URL = canonical
		kept = append(kept, item)
		keptTokens = append(keptTokens, tokens)
	}
	return kept
}

// Prioritize orders items by source rank, then newest first. items is not modified.
func (s *Service) Prioritize(items []market.NewsArticle) []market.NewsArticle {
	out := make([]market.NewsArticle, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := s.sourceRank(out[i].Source), s.sourceRank(out[j].Source)
		if ri != rj {
			return ri < rj
		}
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

func (s *Service) sourceRank(source string) int {
	if r, ok := s.rank[strings.ToLower(source)]; ok {
		return r
	}
	return len(s.cfg.SourcePriority)
}
