package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"marketdash/internal/marketerr"
)

// GlobalQuote is the "Global Quote" object of a GLOBAL_QUOTE response.
type GlobalQuote struct {
	Symbol        string `json:"01. symbol"`
	Price         string `json:"05. price"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}

// DailyClose is one row of TIME_SERIES_DAILY.
type DailyClose struct {
	Date  string // YYYY-MM-DD
	Close float64
}

// FeedItem is one article of a NEWS_SENTIMENT response.
type FeedItem struct {
	Title                 string `json:"title"`
	URL                   string `json:"url"`
	TimePublished         string `json:"time_published"`
	Summary               string `json:"summary"`
	Source                string `json:"source"`
	OverallSentimentLabel string `json:"overall_sentiment_label"`
}

// query performs one GET and classifies every failure into the marketerr taxonomy.
func (c *Client) query(ctx context.Context, params url.Values) (map[string]json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, marketerr.ProviderConfig("ALPHA_VANTAGE_API_KEY is not set")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(params), http.NoBody)
	if err != nil {
		return nil, marketerr.Network("alpha vantage: creating request", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, marketerr.Network("alpha vantage: request failed", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, marketerr.QuotaExceeded("alpha vantage: HTTP 429")
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, marketerr.Network(fmt.Sprintf("alpha vantage: HTTP %d", res.StatusCode), nil)
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, marketerr.Network("alpha vantage: decoding response", err)
	}

	// Free-tier throttling is reported in-band with HTTP 200.
	for _, key := range []string{"Note", "Information"} {
		if msg, ok := stringField(body, key); ok {
			return nil, marketerr.QuotaExceeded(msg)
		}
	}
	if msg, ok := stringField(body, "Error Message"); ok {
		return nil, marketerr.SymbolNotFound(params.Get("symbol"), msg)
	}
	return body, nil
}

// GlobalQuote fetches the latest quote for symbol.
func (c *Client) GlobalQuote(ctx context.Context, symbol string) (GlobalQuote, error) {
	body, err := c.query(ctx, url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}})
	if err != nil {
		return GlobalQuote{}, err
	}

	var q GlobalQuote
	raw, ok := body["Global Quote"]
	if !ok || isEmptyObject(raw) {
		return GlobalQuote{}, marketerr.SymbolNotFound(symbol, "")
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return GlobalQuote{}, marketerr.Network("alpha vantage: decoding Global Quote", err)
	}
	return q, nil
}

// DailySeries fetches the compact daily series for symbol, newest first.
func (c *Client) DailySeries(ctx context.Context, symbol string) ([]DailyClose, error) {
	body, err := c.query(ctx, url.Values{
		"function":   {"TIME_SERIES_DAILY"},
		"outputsize": {"compact"},
		"symbol":     {symbol},
	})
	if err != nil {
		return nil, err
	}

	var series map[string]map[string]string
	raw, ok := body["Time Series (Daily)"]
	if ok {
		if err := json.Unmarshal(raw, &series); err != nil {
			return nil, marketerr.Network("alpha vantage: decoding daily series", err)
		}
	}
	if len(series) == 0 {
		return nil, marketerr.SymbolNotFound(symbol, "")
	}

	out := make([]DailyClose, 0, len(series))
	for date, values := range series {
		out = append(out, DailyClose{Date: date, Close: parseNumber(values["4. close"])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// NewsSentiment fetches up to limit of the latest articles tagged with symbol.
func (c *Client) NewsSentiment(ctx context.Context, symbol string, limit int) ([]FeedItem, error) {
	body, err := c.query(ctx, url.Values{
		"function": {"NEWS_SENTIMENT"},
		"tickers":  {symbol},
		"sort":     {"LATEST"},
		"limit":    {strconv.Itoa(limit)},
	})
	if err != nil {
		return nil, err
	}

	var feed []FeedItem
	if raw, ok := body["feed"]; ok {
		if err := json.Unmarshal(raw, &feed); err != nil {
			return nil, marketerr.Network("alpha vantage: decoding news feed", err)
		}
	}
	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed, nil
}

func stringField(body map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := body[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isEmptyObject(raw json.RawMessage) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return true
	}
	return len(m) == 0
}

// parseNumber parses an Alpha Vantage numeric string, tolerating a trailing
// percent sign. Anything unparsable or non-finite is 0.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
