package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"marketdash/internal/dashboard"
	"marketdash/internal/market"
	"marketdash/internal/marketdata"
	"marketdash/internal/marketerr"
	"marketdash/internal/watchlist"
)

const maxQuoteSymbols = 100

type marketService interface {
	GetQuote(ctx context.Context, symbol string) (market.Quote, error)
	GetHistory(ctx context.Context, symbol string, days int) ([]market.Candle, error)
	GetIndicators(ctx context.Context, symbol string) (market.IndicatorSnapshot, error)
	GetTickerNews(ctx context.Context, symbol string, limit int) ([]market.NewsArticle, error)
	Quotes(ctx context.Context, symbols []string) []marketdata.QuoteResult
}

type watchlistStore interface {
	List(ctx context.Context) ([]watchlist.Item, error)
	Create(ctx context.Context, in watchlist.Input) (watchlist.Item, error)
	Update(ctx context.Context, id string, p watchlist.Patch) (watchlist.Item, error)
	Delete(ctx context.Context, id string) error
}

// api holds the handler dependencies. watchlist is nil when no database is configured.
type api struct {
	market    marketService
	watchlist watchlistStore
	logger    *zap.Logger
	now       func() time.Time
}

type errorBody struct {
	Error marketerr.Payload `json:"error"`
}

type quoteResult struct {
	Symbol string             `json:"symbol"`
	Quote  *market.Quote      `json:"quote,omitempty"`
	Error  *marketerr.Payload `json:"error,omitempty"`
}

func newRouter(a *api) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	m := r.PathPrefix("/api/market").Subrouter()
	m.HandleFunc("/quote/{symbol}", a.handleQuote).Methods(http.MethodGet)
	m.HandleFunc("/history/{symbol}", a.handleHistory).Methods(http.MethodGet)
	m.HandleFunc("/indicators/{symbol}", a.handleIndicators).Methods(http.MethodGet)
	m.HandleFunc("/news/{symbol}", a.handleNews).Methods(http.MethodGet)
	m.HandleFunc("/quotes", a.handleQuotes).Methods(http.MethodGet)

	r.HandleFunc("/api/dashboard", a.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/watchlist", a.handleListWatchlist).Methods(http.MethodGet)
	r.HandleFunc("/api/watchlist", a.handleCreateWatchlist).Methods(http.MethodPost)
	r.HandleFunc("/api/watchlist/{id}", a.handleUpdateWatchlist).Methods(http.MethodPut)
	r.HandleFunc("/api/watchlist/{id}", a.handleDeleteWatchlist).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeClientError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeClientError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

func (a *api) handleQuote(w http.ResponseWriter, r *http.Request) {
	q, err := a.market.GetQuote(r.Context(), mux.Vars(r)["symbol"])
	if err != nil {
		a.writeMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quote": q})
}

func (a *api) handleHistory(w http.ResponseWriter, r *http.Request) {
	days := intParam(r, "days")
	candles, err := a.market.GetHistory(r.Context(), mux.Vars(r)["symbol"], days)
	if err != nil {
		a.writeMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"candles": candles})
}

func (a *api) handleIndicators(w http.ResponseWriter, r *http.Request) {
	ind, err := a.market.GetIndicators(r.Context(), mux.Vars(r)["symbol"])
	if err != nil {
		a.writeMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"indicators": ind})
}

// handleNews degrades to an empty list alongside the error so the UI can
// still render the panel.
func (a *api) handleNews(w http.ResponseWriter, r *http.Request) {
	items, err := a.market.GetTickerNews(r.Context(), mux.Vars(r)["symbol"], intParam(r, "limit"))
	if err != nil {
		a.logError(r, err)
		writeJSON(w, marketerr.HTTPStatus(err), map[string]any{
			"items": []market.NewsArticle{},
			"error": marketerr.Serialize(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *api) handleQuotes(w http.ResponseWriter, r *http.Request) {
	symbols := splitCSV(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		writeClientError(w, http.StatusBadRequest, "invalid_request", "missing symbols query param")
		return
	}
	if len(symbols) > maxQuoteSymbols {
		writeClientError(w, http.StatusBadRequest, "invalid_request", "too many symbols (max 100)")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": toQuoteResults(a.market.Quotes(r.Context(), symbols))})
}

func (a *api) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !a.requireWatchlist(w) {
		return
	}
	items, err := a.watchlist.List(r.Context())
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	seen := make(map[string]struct{}, len(items))
	symbols := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.Symbol]; !ok {
			seen[it.Symbol] = struct{}{}
			symbols = append(symbols, it.Symbol)
		}
	}
	results := a.market.Quotes(r.Context(), symbols)
	writeJSON(w, http.StatusOK, dashboard.Build(items, results, a.now()))
}

func (a *api) handleListWatchlist(w http.ResponseWriter, r *http.Request) {
	if !a.requireWatchlist(w) {
		return
	}
	items, err := a.watchlist.List(r.Context())
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *api) handleCreateWatchlist(w http.ResponseWriter, r *http.Request) {
	if !a.requireWatchlist(w) {
		return
	}
	var in watchlist.Input
	if !decodeBody(w, r, &in) {
		return
	}
	item, err := a.watchlist.Create(r.Context(), in)
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"item": item})
}

func (a *api) handleUpdateWatchlist(w http.ResponseWriter, r *http.Request) {
	if !a.requireWatchlist(w) {
		return
	}
	var p watchlist.Patch
	if !decodeBody(w, r, &p) {
		return
	}
	item, err := a.watchlist.Update(r.Context(), mux.Vars(r)["id"], p)
	if err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": item})
}

func (a *api) handleDeleteWatchlist(w http.ResponseWriter, r *http.Request) {
	if !a.requireWatchlist(w) {
		return
	}
	if err := a.watchlist.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		a.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) requireWatchlist(w http.ResponseWriter) bool {
	if a.watchlist != nil {
		return true
	}
	err := marketerr.ProviderConfig("watchlist requires database.sqlite_path")
	writeJSON(w, marketerr.HTTPStatus(err), errorBody{Error: marketerr.Serialize(err)})
	return false
}

func (a *api) writeMarketError(w http.ResponseWriter, r *http.Request, err error) {
	a.logError(r, err)
	writeJSON(w, marketerr.HTTPStatus(err), errorBody{Error: marketerr.Serialize(err)})
}

func (a *api) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *watchlist.ValidationError
	switch {
	case errors.As(err, &verr):
		writeClientError(w, http.StatusBadRequest, "invalid_request", verr.Error())
	case errors.Is(err, watchlist.ErrNotFound):
		writeClientError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		a.logger.Error("watchlist store", zap.String("path", r.URL.Path), zap.Error(err))
		writeClientError(w, http.StatusInternalServerError, string(marketerr.KindUnknown), "watchlist operation failed")
	}
}

func (a *api) logError(r *http.Request, err error) {
	me := marketerr.From(err)
	a.logger.Warn("market data request failed",
		zap.String("path", r.URL.Path),
		zap.String("kind", string(me.Kind)),
		zap.Error(err),
	)
}

func toQuoteResults(in []marketdata.QuoteResult) []quoteResult {
	out := make([]quoteResult, len(in))
	for i, r := range in {
		out[i] = quoteResult{Symbol: r.Symbol, Quote: r.Quote}
		if r.Err != nil {
			p := marketerr.Serialize(r.Err)
			out[i].Error = &p
		}
	}
	return out
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeClientError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func writeClientError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorBody{Error: marketerr.Payload{Type: marketerr.Kind(kind), Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// intParam returns the named query parameter as an int, or 0 when it is
// absent or malformed so downstream defaults apply.
func intParam(r *http.Request, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(name)))
	if err != nil {
		return 0
	}
	return n
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
