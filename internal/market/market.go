// Package market holds the data shapes shared by providers, caches and the news pipeline.
package market

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"marketdash/internal/marketerr"
)

// Defaults applied when a caller passes a non-positive count.
const (
	DefaultHistoryDays = 30
	DefaultNewsLimit   = 5
)

// Quote is the latest price snapshot for a symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Candle is one daily close. History results are ascending by Timestamp.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
}

// IndicatorSnapshot holds derived technical indicators for a symbol.
type IndicatorSnapshot struct {
	Symbol    string    `json:"symbol"`
	RSI14     float64   `json:"rsi14"`
	SMA20     float64   `json:"sma20"`
	SMA50     float64   `json:"sma50"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// NewsArticle is a single news item about a symbol.
// ID is informational; deduplication keys on the canonical URL and headline.
type NewsArticle struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Sentiment   Sentiment `json:"sentiment,omitempty"`
}

var symbolPattern = regexp.MustCompile(`^[A-Z.]{1,10}$`)

// NormalizeSymbol trims and upper-cases raw, failing with symbol_not_found
// unless the result is 1-10 letters or dots.
func NormalizeSymbol(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if !symbolPattern.MatchString(s) {
		return "", marketerr.SymbolNotFound(raw, "")
	}
	return s, nil
}

// KeySymbol is the form of a symbol used in cache keys. It does not validate.
func KeySymbol(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Round2 rounds v to two decimal places, half away from zero, so negative
// ties go down: Round2(-0.125) == -0.13.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ChangePercent returns change relative to the previous price (price - change),
// in percent and rounded to two decimals. A zero previous price yields 0.
func ChangePercent(price, change float64) float64 {
	prev := price - change
	if prev == 0 {
		return 0
	}
	return Round2(change / prev * 100)
}
