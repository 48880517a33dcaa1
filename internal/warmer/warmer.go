// Package warmer periodically refreshes quotes for watchlist symbols so
// dashboard requests are served from cache.
package warmer

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"marketdash/internal/marketdata"
)

//go:generate mockgen -package=warmer_test -destination=mock_deps_test.go -source=warmer.go Quoter,SymbolSource

// Quoter fetches quotes in bulk and maintains the durable cache.
type Quoter interface {
	Quotes(ctx context.Context, symbols []string) []marketdata.QuoteResult
	PurgeExpired(ctx context.Context) (int64, error)
}

// SymbolSource lists the symbols to keep warm.
type SymbolSource interface {
	Symbols(ctx context.Context) ([]string, error)
}

// Result summarises one run.
type Result struct {
	Warmed int
	Failed int
	Purged int64
}

type Warmer struct {
	quoter  Quoter
	symbols SymbolSource
	spec    string
	logger  *zap.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

type Option func(*Warmer)

func WithLogger(l *zap.Logger) Option {
	return func(w *Warmer) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a warmer that runs on spec, any expression robfig/cron accepts
// with the standard parser (e.g. "@every 1m" or "*/5 * * * *").
func New(q Quoter, src SymbolSource, spec string, opts ...Option) *Warmer {
	w := &Warmer{quoter: q, symbols: src, spec: spec, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start schedules the job. Runs never overlap; a run still in progress when
// the next tick fires causes that tick to be skipped.
func (w *Warmer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return fmt.Errorf("warmer already started")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	logger := cronLogger{w.logger.Sugar()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(w.spec, func() { w.RunOnce(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("register warmer %q: %w", w.spec, err)
	}
	c.Start()
	w.cron, w.cancel = c, cancel
	w.logger.Info("cache warmer started", zap.String("schedule", w.spec))
	return nil
}

// Stop cancels any in-flight run and waits for it to return.
func (w *Warmer) Stop() {
	w.mu.Lock()
	c, cancel := w.cron, w.cancel
	w.cron, w.cancel = nil, nil
	w.mu.Unlock()
	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	w.logger.Info("cache warmer stopped")
}

// RunOnce warms every watchlist symbol and purges expired durable rows.
// Failures are logged and counted, never returned.
func (w *Warmer) RunOnce(ctx context.Context) Result {
	var res Result

	symbols, err := w.symbols.Symbols(ctx)
	if err != nil {
		w.logger.Warn("warmer: load watchlist", zap.Error(err))
		return res
	}

	for _, r := range w.quoter.Quotes(ctx, symbols) {
		if r.Err != nil {
			res.Failed++
			w.logger.Warn("warmer: quote failed", zap.String("symbol", r.Symbol), zap.Error(r.Err))
			continue
		}
		res.Warmed++
	}

	purged, err := w.quoter.PurgeExpired(ctx)
	if err != nil {
		w.logger.Warn("warmer: purge expired", zap.Error(err))
	}
	res.Purged = purged

	w.logger.Debug("warmer run complete",
		zap.Int("warmed", res.Warmed),
		zap.Int("failed", res.Failed),
		zap.Int64("purged", res.Purged),
	)
	return res
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
