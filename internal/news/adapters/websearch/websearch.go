// Package websearch is a news adapter over a NewsAPI-compatible
// /v2/everything search endpoint.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketdash/internal/market"
	"marketdash/internal/marketerr"
	"marketdash/internal/news"
)

const (
	DefaultEndpoint = "https://newsapi.org/v2/everything"
	maxPageSize     = 100
)

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	Endpoint string
	APIKey   string
	// Language restricts results; empty means "en".
	Language string
}

type Adapter struct {
	cfg    Config
	client HTTPClient
	now    func() time.Time
}

type Option func(*Adapter)

// WithClock overrides the clock used for undated articles.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

func New(cfg Config, client HTTPClient, opts ...Option) *Adapter {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if client == nil {
		client = http.DefaultClient
	}
	a := &Adapter{cfg: cfg, client: client, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Name() string { return "websearch" }

type searchResponse struct {
	Status   string          `json:"status"`
	Code     string          `json:"code"`
	Message  string          `json:"message"`
	Articles []searchArticle `json:"articles"`
}

type searchArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

func (a *Adapter) FetchNews(ctx context.Context, symbol string, limit int) ([]market.NewsArticle, error) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if a.cfg.APIKey == "" {
		return nil, marketerr.ProviderConfig("NEWS_API_KEY is not set")
	}
	if limit <= 0 {
		limit = market.DefaultNewsLimit
	}

	q := url.Values{}
	q.Set("q", sym)
	q.Set("language", a.cfg.Language)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(min(limit, maxPageSize)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.Endpoint+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, marketerr.ProviderConfig(fmt.Sprintf("websearch: bad endpoint %q", a.cfg.Endpoint))
	}
	req.Header.Set("X-Api-Key", a.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return nil, marketerr.Network("websearch: request failed", err)
	}
	defer res.Body.Close()

	var body searchResponse
	decodeErr := json.NewDecoder(res.Body).Decode(&body)
	if err := classify(res.StatusCode, body); err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, marketerr.Network("websearch: decoding response", decodeErr)
	}

	now := a.now().UTC()
	out := make([]market.NewsArticle, 0, len(body.Articles))
	for _, art := range body.Articles {
		link := strings.TrimSpace(art.URL)
		if link == "" || art.Title == "" || art.Title == "[Removed]" {
			continue
		}
		published, err := time.Parse(time.RFC3339, art.PublishedAt)
		if err != nil {
			published = now
		}
		out = append(out, market.NewsArticle{
			ID:          uuid.NewSHA1(uuid.NameSpaceURL, []byte(news.CanonicalURL(link))).String(),
			Symbol:      sym,
			Headline:    strings.TrimSpace(art.Title),
			Summary:     strings.TrimSpace(art.Description),
			Source:      art.Source.Name,
			URL:         link,
			PublishedAt: published.UTC(),
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// classify maps an HTTP status and NewsAPI error body onto the error taxonomy.
func classify(status int, body searchResponse) error {
	msg := body.Message
	switch {
	case status == http.StatusTooManyRequests || body.Code == "rateLimited":
		return marketerr.QuotaExceeded(msg)
	case status == http.StatusUnauthorized || strings.HasPrefix(body.Code, "apiKey"):
		if msg == "" {
			msg = "websearch: API key rejected"
		}
		return marketerr.ProviderConfig(msg)
	case status < 200 || status > 299:
		if msg == "" {
			msg = fmt.Sprintf("websearch: HTTP %d", status)
		}
		return marketerr.Network(msg, nil)
	case body.Status == "error":
		return marketerr.Network("websearch: "+msg, nil)
	}
	return nil
}
