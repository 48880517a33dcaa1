// Package rss is a news adapter backed by RSS/Atom feeds.
package rss

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"marketdash/internal/market"
	"marketdash/internal/marketerr"
	"marketdash/internal/news"
)

// SymbolPlaceholder in a feed URL is replaced by the requested symbol.
const SymbolPlaceholder = "{symbol}"

// DefaultFeed is the Yahoo Finance per-symbol headline feed.
var DefaultFeed = Feed{
	Name: "Yahoo Finance",
	URL:  "https://feeds.finance.yahoo.com/rss/2.0/headline?s={symbol}&region=US&lang=en-US",
}

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Feed is one configured source. Name becomes NewsArticle.Source; when empty
// the feed's own title is used.
type Feed struct {
	Name string
	URL  string
}

type Config struct {
	Feeds []Feed
	// CacheTTL is how long a fetched feed payload is reused. <= 0 uses 5 minutes.
	CacheTTL time.Duration
	// FetchTimeout bounds one feed download. <= 0 uses 15 seconds.
	FetchTimeout time.Duration
}

// Adapter pulls every configured feed, keeps the items about the requested
// symbol and returns the newest first.
//
// Feeds whose URL carries SymbolPlaceholder are per-symbol, and all their
// items count. Other feeds are general and filtered by a whole-word match of
// the symbol in title or description.
type Adapter struct {
	cfg    Config
	client HTTPClient
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]feedCache

	// coalesce concurrent refreshes per feed URL
	sf singleflight.Group
}

type feedCache struct {
	title string
	items []entry
	until time.Time
}

type entry struct {
	title       string
	description string
	link        string
	published   time.Time
}

type Option func(*Adapter)

func WithLogger(l *zap.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock overrides the clock used for feed expiry and undated items.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

func New(cfg Config, client HTTPClient, opts ...Option) *Adapter {
	if len(cfg.Feeds) == 0 {
		cfg.Feeds = []Feed{DefaultFeed}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if client == nil {
		client = http.DefaultClient
	}
	a := &Adapter{
		cfg:    cfg,
		client: client,
		logger: zap.NewNop(),
		now:    time.Now,
		cache:  make(map[string]feedCache, len(cfg.Feeds)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Name() string { return "rss" }

// FetchNews fails only when every feed fails, with the last feed's error.
func (a *Adapter) FetchNews(ctx context.Context, symbol string, limit int) ([]market.NewsArticle, error) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	mention := regexp.MustCompile(`(?i)(^|[^A-Za-z0-9.])` + regexp.QuoteMeta(sym) + `($|[^A-Za-z0-9])`)

	var (
		out     []market.NewsArticle
		lastErr error
		okFeeds int
	)
	for _, feed := range a.cfg.Feeds {
		perSymbol := strings.Contains(feed.URL, SymbolPlaceholder)
		feedURL := strings.ReplaceAll(feed.URL, SymbolPlaceholder, url.QueryEscape(sym))

		fc, err := a.load(ctx, feedURL)
		if err != nil {
			a.logger.Warn("rss: feed failed", zap.String("feed", feed.Name), zap.Error(err))
			lastErr = err
			continue
		}
		okFeeds++

		source := feed.Name
		if source == "" {
			source = fc.title
		}
		for _, it := range fc.items {
			if !perSymbol && !mention.MatchString(it.title+" "+it.description) {
				continue
			}
			out = append(out, market.NewsArticle{
				ID:          uuid.NewSHA1(uuid.NameSpaceURL, []byte(news.CanonicalURL(it.link))).String(),
				Symbol:      sym,
				Headline:    it.title,
				Summary:     it.description,
				Source:      source,
				URL:         it.link,
				PublishedAt: it.published,
			})
		}
	}
	if okFeeds == 0 && lastErr != nil {
		return nil, lastErr
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *Adapter) load(ctx context.Context, feedURL string) (feedCache, error) {
	a.mu.RLock()
	fc, ok := a.cache[feedURL]
	a.mu.RUnlock()
	if ok && a.now().Before(fc.until) {
		return fc, nil
	}

	// The shared download runs detached from any one caller so a cancelled
	// caller does not fail the others waiting on the same feed.
	ch := a.sf.DoChan(feedURL, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.FetchTimeout)
		defer cancel()
		fresh, err := a.fetch(fctx, feedURL)
		if err != nil {
			return nil, err
		}
		fresh.until = a.now().Add(a.cfg.CacheTTL)
		a.mu.Lock()
		a.cache[feedURL] = fresh
		a.mu.Unlock()
		return fresh, nil
	})

	select {
	case <-ctx.Done():
		return feedCache{}, marketerr.Network("rss: request cancelled", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return feedCache{}, res.Err
		}
		return res.Val.(feedCache), nil
	}
}

func (a *Adapter) fetch(ctx context.Context, feedURL string) (feedCache, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return feedCache{}, marketerr.ProviderConfig(fmt.Sprintf("rss: bad feed url %q", feedURL))
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	res, err := a.client.Do(req)
	if err != nil {
		return feedCache{}, marketerr.Network("rss: request failed", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return feedCache{}, marketerr.Network(fmt.Sprintf("rss: GET %s -> %d", feedURL, res.StatusCode), nil)
	}

	feed, err := gofeed.NewParser().Parse(res.Body)
	if err != nil {
		return feedCache{}, marketerr.Network("rss: unparsable feed", err)
	}

	now := a.now().UTC()
	fc := feedCache{title: feed.Title, items: make([]entry, 0, len(feed.Items))}
	for _, it := range feed.Items {
		if it == nil || strings.TrimSpace(it.Link) == "" {
			continue
		}
		published := now
		switch {
		case it.PublishedParsed != nil:
			published = it.PublishedParsed.UTC()
		case it.UpdatedParsed != nil:
			published = it.UpdatedParsed.UTC()
		}
		fc.items = append(fc.items, entry{
			title:       strings.TrimSpace(it.Title),
			description: plainText(it.Description),
			link:        strings.TrimSpace(it.Link),
			published:   published,
		})
	}
	return fc, nil
}

var tags = regexp.MustCompile(`<[^>]*>`)

func plainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(tags.ReplaceAllString(s, " "))), " ")
}
