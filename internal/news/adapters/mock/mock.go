// Package mock is a deterministic news adapter that deliberately emits
// duplicate and near-duplicate articles.
package mock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketdash/internal/market"
	mockprovider "marketdash/internal/provider/mock"
)

// MinArticles is the floor on how many articles FetchNews returns.
const MinArticles = 12

var sources = []string{
	"Reuters",
	"Bloomberg",
	"CNBC",
	"MarketWatch",
	"AP News",
	"TechCrunch",
	"Seeking Alpha",
}

// Each consecutive pair of articles shares a story URL and headline.
var headlines = []string{
	"%s earnings outlook beats expectation",
	"%s shares slide as supply chain worries mount",
	"Analysts lift %s price target after investor day",
	"%s unveils buyback program worth billions",
	"Regulators open inquiry into %s pricing practices",
	"%s names new chief financial officer",
	"Options traders bet on volatile week for %s",
	"%s expands partnership with major cloud vendor",
	"Short interest in %s climbs to yearly high",
	"%s dividend hike surprises income investors",
}

type Adapter struct {
	now func() time.Time
}

type Option func(*Adapter)

// WithClock fixes the clock used for publish times.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

func New(opts ...Option) *Adapter {
	a := &Adapter{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Name() string { return "mock" }

// FetchNews returns max(limit, MinArticles) articles published 45 minutes
// apart. Articles 2k and 2k+1 describe the same story, and every fifth
// headline carries an "(Update)" suffix.
func (a *Adapter) FetchNews(_ context.Context, symbol string, limit int) ([]market.NewsArticle, error) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	now := a.now().UTC()
	lower := strings.ToLower(sym)

	out := make([]market.NewsArticle, max(limit, MinArticles))
	for i := range out {
		story := i / 2
		headline := fmt.Sprintf(headlines[story%len(headlines)], sym)
		if i%5 == 0 {
			headline += " (Update)"
		}
		out[i] = market.NewsArticle{
			ID:          fmt.Sprintf("%s-mock-%d", sym, i+1),
			Symbol:      sym,
			Headline:    headline,
			Summary:     fmt.Sprintf("Summary of market event #%d for %s.", i+1, sym),
			Source:      sources[i%len(sources)],
			URL:         fmt.Sprintf("https://example.com/%s/story-%d", lower, story+1),
			PublishedAt: now.Add(-time.Duration(i) * 45 * time.Minute),
			Sentiment:   mockprovider.SentimentFor(i),
		}
	}
	return out, nil
}
