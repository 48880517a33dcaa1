package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string `json:"port" yaml:"port" validate:"required"`
	RequestTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec" validate:"gte=1"`
}

type Log struct {
	Level       string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `json:"development" yaml:"development"`
}

type Database struct {
	// SQLitePath is the durable cache and watchlist database. Empty disables both.
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path"`
}

type AlphaVantage struct {
	APIKey                string `json:"api_key" yaml:"api_key"`
	BaseURL               string `json:"base_url" yaml:"base_url" validate:"omitempty,url"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute" yaml:"max_requests_per_minute" validate:"gte=0"`
	Burst                 int    `json:"burst" yaml:"burst" validate:"gte=0"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec" yaml:"min_request_interval_sec" validate:"gte=0"`
}

type Cache struct {
	QuoteTTLSec      int `json:"quote_ttl_sec" yaml:"quote_ttl_sec" validate:"gte=1"`
	HistoryTTLSec    int `json:"history_ttl_sec" yaml:"history_ttl_sec" validate:"gte=1"`
	IndicatorsTTLSec int `json:"indicators_ttl_sec" yaml:"indicators_ttl_sec" validate:"gte=1"`
	NewsTTLSec       int `json:"news_ttl_sec" yaml:"news_ttl_sec" validate:"gte=1"`
	MemoryMaxItems   int `json:"memory_max_items" yaml:"memory_max_items" validate:"gte=0"`
}

type MarketData struct {
	// Provider is matched case-insensitively; unknown names fall back to mock.
	Provider     string       `json:"provider" yaml:"provider"`
	AlphaVantage AlphaVantage `json:"alpha_vantage" yaml:"alpha_vantage"`
	Cache        Cache        `json:"cache" yaml:"cache"`
}

type RSSFeed struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url" validate:"required"`
}

type RSS struct {
	Feeds           []RSSFeed `json:"feeds" yaml:"feeds" validate:"dive"`
	FeedCacheTTLSec int       `json:"feed_cache_ttl_sec" yaml:"feed_cache_ttl_sec" validate:"gte=0"`
}

type WebSearch struct {
	Endpoint string `json:"endpoint" yaml:"endpoint" validate:"omitempty,url"`
	APIKey   string `json:"api_key" yaml:"api_key"`
	Language string `json:"language" yaml:"language"`
}

type News struct {
	// Adapter is one of mock, rss, websearch. Anything else fails at first use.
	Adapter             string    `json:"adapter" yaml:"adapter"`
	MinFetch            int       `json:"min_fetch" yaml:"min_fetch" validate:"gte=1"`
	SimilarityThreshold float64   `json:"similarity_threshold" yaml:"similarity_threshold" validate:"gt=0,lte=1"`
	DefaultLimit        int       `json:"default_limit" yaml:"default_limit" validate:"gte=1,ltefield=MaxLimit"`
	MaxLimit            int       `json:"max_limit" yaml:"max_limit" validate:"gte=1"`
	SourcePriority      []string  `json:"source_priority" yaml:"source_priority"`
	RSS                 RSS       `json:"rss" yaml:"rss"`
	WebSearch           WebSearch `json:"websearch" yaml:"websearch"`
}

type Warmer struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Cron    string `json:"cron" yaml:"cron" validate:"required_if=Enabled true"`
}

type Config struct {
	Server     Server     `json:"server" yaml:"server"`
	Log        Log        `json:"log" yaml:"log"`
	Database   Database   `json:"database" yaml:"database"`
	MarketData MarketData `json:"market_data" yaml:"market_data"`
	News       News       `json:"news" yaml:"news"`
	Warmer     Warmer     `json:"warmer" yaml:"warmer"`
}

func Default() Config {
	return Config{
		Server:   Server{Port: "8080", RequestTimeoutSec: 10},
		Log:      Log{Level: "info"},
		Database: Database{SQLitePath: "data/marketdash.db"},
		MarketData: MarketData{
			Provider: "mock",
			AlphaVantage: AlphaVantage{
				BaseURL:              "https://www.alphavantage.co/query",
				MaxRequestsPerMinute: 5,
				Burst:                1,
			},
			Cache: Cache{
				QuoteTTLSec:      30,
				HistoryTTLSec:    300,
				IndicatorsTTLSec: 300,
				NewsTTLSec:       600,
				MemoryMaxItems:   10000,
			},
		},
		News: News{
			Adapter:             "mock",
			MinFetch:            15,
			SimilarityThreshold: 0.85,
			DefaultLimit:        10,
			MaxLimit:            20,
			RSS:                 RSS{FeedCacheTTLSec: 300},
			WebSearch:           WebSearch{Endpoint: "https://newsapi.org/v2/everything", Language: "en"},
		},
		Warmer: Warmer{Enabled: false, Cron: "@every 1m"},
	}
}

// Load reads config from path, falling back to $CONFIG_FILE and then to
// config.yaml or config.json in the working directory. A missing file yields
// defaults. YAML is used for .yaml/.yml, JSON otherwise. Environment variables
// override select fields for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		for _, candidate := range []string{"config.yaml", "config.yml", "config.json"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

// Validate checks field constraints. It does not judge provider or adapter names.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Cache) QuoteTTL() time.Duration      { return seconds(c.QuoteTTLSec) }
func (c Cache) HistoryTTL() time.Duration    { return seconds(c.HistoryTTLSec) }
func (c Cache) IndicatorsTTL() time.Duration { return seconds(c.IndicatorsTTLSec) }
func (c Cache) NewsTTL() time.Duration       { return seconds(c.NewsTTLSec) }

func (s Server) RequestTimeout() time.Duration { return seconds(s.RequestTimeoutSec) }

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if x, ok := positiveEnv("REQUEST_TIMEOUT_SEC"); ok {
		cfg.Server.RequestTimeoutSec = x
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	if v := os.Getenv("MARKET_DATA_PROVIDER"); v != "" {
		cfg.MarketData.Provider = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.MarketData.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_BASE_URL"); v != "" {
		cfg.MarketData.AlphaVantage.BaseURL = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_MAX_RPM"); v != "" {
		if x, err := strconv.Atoi(v); err == nil && x >= 0 {
			cfg.MarketData.AlphaVantage.MaxRequestsPerMinute = x
		}
	}

	ttls := []struct {
		env string
		dst *int
	}{
		{"MARKET_CACHE_QUOTE_TTL_SEC", &cfg.MarketData.Cache.QuoteTTLSec},
		{"MARKET_CACHE_HISTORY_TTL_SEC", &cfg.MarketData.Cache.HistoryTTLSec},
		{"MARKET_CACHE_INDICATORS_TTL_SEC", &cfg.MarketData.Cache.IndicatorsTTLSec},
		{"MARKET_CACHE_NEWS_TTL_SEC", &cfg.MarketData.Cache.NewsTTLSec},
	}
	for _, t := range ttls {
		if x, ok := positiveEnv(t.env); ok {
			*t.dst = x
		}
	}

	if v := os.Getenv("NEWS_ADAPTER"); v != "" {
		cfg.News.Adapter = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		cfg.News.WebSearch.APIKey = v
	}
	if v := os.Getenv("NEWS_API_ENDPOINT"); v != "" {
		cfg.News.WebSearch.Endpoint = v
	}
	if v := os.Getenv("NEWS_RSS_FEEDS"); v != "" {
		cfg.News.RSS.Feeds = parseFeeds(v)
	}

	if v := os.Getenv("WARMER_ENABLED"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y":
			cfg.Warmer.Enabled = true
		case "0", "false", "no", "n":
			cfg.Warmer.Enabled = false
		}
	}
	if v := os.Getenv("WARMER_CRON"); v != "" {
		cfg.Warmer.Cron = v
	}
}

// positiveEnv reads a strictly positive integer; anything else reports !ok.
func positiveEnv(name string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, false
	}
	x, err := strconv.Atoi(v)
	if err != nil || x <= 0 {
		return 0, false
	}
	return x, true
}

// parseFeeds reads "name=url,name=url". A bare URL gets no name.
func parseFeeds(s string) []RSSFeed {
	var out []RSSFeed
	for _, part := range splitCSV(s) {
		name, u, ok := strings.Cut(part, "=")
		if !ok || strings.Contains(name, "://") {
			out = append(out, RSSFeed{URL: part})
			continue
		}
		out = append(out, RSSFeed{Name: strings.TrimSpace(name), URL: strings.TrimSpace(u)})
	}
	return out
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
