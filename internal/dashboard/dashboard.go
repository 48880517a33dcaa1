// Package dashboard joins watchlist entries with their quote results.
package dashboard

import (
	"sort"
	"time"

	"marketdash/internal/market"
	"marketdash/internal/marketdata"
	"marketdash/internal/marketerr"
	"marketdash/internal/watchlist"
)

// Row is one symbol on the dashboard. Exactly one of Quote and Error is set.
type Row struct {
	ItemID  string             `json:"itemId"`
	Symbol  string             `json:"symbol"`
	Name    *string            `json:"name"`
	AddedAt time.Time          `json:"addedAt"`
	Quote   *market.Quote      `json:"quote,omitempty"`
	Error   *marketerr.Payload `json:"error,omitempty"`
}

type Summary struct {
	Symbols   int    `json:"symbols"`
	Priced    int    `json:"priced"`
	Failed    int    `json:"failed"`
	Gainers   int    `json:"gainers"`
	Losers    int    `json:"losers"`
	TopGainer string `json:"topGainer,omitempty"`
	TopLoser  string `json:"topLoser,omitempty"`
}

type Dashboard struct {
	Rows        []Row     `json:"rows"`
	Summary     Summary   `json:"summary"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Build collapses items to one row per symbol, keeping the most recently
// added entry (on equal timestamps the later input wins), attaches each
// symbol's quote result and sorts rows by symbol. A symbol with no result is
// reported as an unknown error.
func Build(items []watchlist.Item, results []marketdata.QuoteResult, now time.Time) Dashboard {
	latest := make(map[string]watchlist.Item, len(items))
	for _, it := range items {
		key := market.KeySymbol(it.Symbol)
		if cur, ok := latest[key]; ok && it.CreatedAt.Before(cur.CreatedAt) {
			continue
		}
		latest[key] = it
	}

	bySymbol := make(map[string]marketdata.QuoteResult, len(results))
	for _, r := range results {
		bySymbol[market.KeySymbol(r.Symbol)] = r
	}

	rows := make([]Row, 0, len(latest))
	for sym, it := range latest {
		row := Row{ItemID: it.ID, Symbol: sym, Name: it.Name, AddedAt: it.CreatedAt}
		r, ok := bySymbol[sym]
		switch {
		case !ok:
			p := marketerr.Serialize(marketerr.New(marketerr.KindUnknown, "no quote requested", false, nil))
			row.Error = &p
		case r.Err != nil:
			p := marketerr.Serialize(r.Err)
			row.Error = &p
		default:
			row.Quote = r.Quote
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Symbol < rows[j].Symbol })

	return Dashboard{Rows: rows, Summary: summarize(rows), GeneratedAt: now.UTC()}
}

func summarize(rows []Row) Summary {
	s := Summary{Symbols: len(rows)}
	var best, worst *market.Quote
	for _, r := range rows {
		if r.Quote == nil {
			s.Failed++
			continue
		}
		s.Priced++
		switch {
		case r.Quote.ChangePercent > 0:
			s.Gainers++
			if best == nil || r.Quote.ChangePercent > best.ChangePercent {
				best = r.Quote
			}
		case r.Quote.ChangePercent < 0:
			s.Losers++
			if worst == nil || r.Quote.ChangePercent < worst.ChangePercent {
				worst = r.Quote
			}
		}
	}
	if best != nil {
		s.TopGainer = best.Symbol
	}
	if worst != nil {
		s.TopLoser = worst.Symbol
	}
	return s
}
