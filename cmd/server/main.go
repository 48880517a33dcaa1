// Command server exposes quotes, history, indicators, news and the watchlist
// over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"marketdash/internal/config"
	"marketdash/internal/database"
	"marketdash/internal/httpx"
	"marketdash/internal/logging"
	"marketdash/internal/marketdata"
	"marketdash/internal/warmer"
	"marketdash/internal/watchlist"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := httpx.New(cfg.Server.RequestTimeout())
	opts := []marketdata.Option{marketdata.WithLogger(logger), marketdata.WithHTTPClient(httpClient)}

	a := &api{logger: logger, now: time.Now}
	var store *watchlist.Store
	if cfg.Database.SQLitePath != "" {
		db, err := database.Open(cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, marketdata.WithDB(db))

		store, err = watchlist.New(ctx, db)
		if err != nil {
			return err
		}
		a.watchlist = store
	} else {
		logger.Warn("no sqlite_path configured; durable cache and watchlist disabled")
	}

	svc := marketdata.New(cfg, opts...)
	a.market = svc

	if cfg.Warmer.Enabled {
		if store == nil {
			logger.Warn("warmer enabled without a database; skipping")
		} else {
			w := warmer.New(svc, store, cfg.Warmer.Cron, warmer.WithLogger(logger))
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()
		}
	}

	handler := chain(newRouter(a),
		withJSONHeaders,
		withGzip,
		recoverPanic(logger),
		logRequests(logger),
		limitBody,
		withTimeout(cfg.Server.RequestTimeout()),
	)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout() + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("provider", marketdata.ProviderKind(cfg.MarketData.Provider)),
			zap.String("news_adapter", cfg.News.Adapter),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
