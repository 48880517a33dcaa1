// Command fetch queries the market data stack from the command line and
// prints JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marketdash/internal/config"
	"marketdash/internal/database"
	"marketdash/internal/httpx"
	"marketdash/internal/logging"
	"marketdash/internal/marketdata"
	"marketdash/internal/marketerr"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath  string
	provider    string
	newsAdapter string
	dbPath      string
	verbose     bool

	svc     *marketdata.Service
	cleanup func()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "fetch",
		Short:         "Query quotes, history, indicators and news",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.cleanup != nil {
				opts.cleanup()
			}
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "config file (yaml or json); defaults to CONFIG_FILE")
	f.StringVar(&opts.provider, "provider", "", "market data provider override (mock, alphavantage)")
	f.StringVar(&opts.newsAdapter, "news-adapter", "", "news adapter override (mock, rss, websearch)")
	f.StringVar(&opts.dbPath, "db", "", "sqlite path for the durable cache; empty keeps the config value")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")

	cmd.AddCommand(
		newQuoteCmd(opts),
		newHistoryCmd(opts),
		newIndicatorsCmd(opts),
		newNewsCmd(opts),
	)
	return cmd
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.provider != "" {
		cfg.MarketData.Provider = o.provider
	}
	if o.newsAdapter != "" {
		cfg.News.Adapter = o.newsAdapter
	}
	if o.dbPath != "" {
		cfg.Database.SQLitePath = o.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := zap.NewNop()
	if o.verbose {
		if logger, err = logging.New("debug", true); err != nil {
			return err
		}
	}

	svcOpts := []marketdata.Option{
		marketdata.WithLogger(logger),
		marketdata.WithHTTPClient(httpx.New(cfg.Server.RequestTimeout())),
	}
	var closers []func()
	if cfg.Database.SQLitePath != "" {
		db, err := database.Open(cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		closers = append(closers, func() { _ = db.Close() })
		svcOpts = append(svcOpts, marketdata.WithDB(db))
	}
	closers = append(closers, func() { _ = logger.Sync() })

	o.svc = marketdata.New(cfg, svcOpts...)
	o.cleanup = func() {
		for _, c := range closers {
			c()
		}
	}
	return nil
}

func newQuoteCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL [SYMBOL...]",
		Short: "Latest quote; several symbols are fetched concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				q, err := o.svc.GetQuote(cmd.Context(), args[0])
				if err != nil {
					return report(cmd, err)
				}
				return printJSON(cmd.OutOrStdout(), q)
			}
			type row struct {
				Symbol string             `json:"symbol"`
				Quote  any                `json:"quote,omitempty"`
				Error  *marketerr.Payload `json:"error,omitempty"`
			}
			var rows []row
			for _, r := range o.svc.Quotes(cmd.Context(), args) {
				out := row{Symbol: r.Symbol}
				if r.Err != nil {
					p := marketerr.Serialize(r.Err)
					out.Error = &p
				} else {
					out.Quote = r.Quote
				}
				rows = append(rows, out)
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
}

func newHistoryCmd(o *rootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Daily closes, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candles, err := o.svc.GetHistory(cmd.Context(), args[0], days)
			if err != nil {
				return report(cmd, err)
			}
			return printJSON(cmd.OutOrStdout(), candles)
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "number of trading days")
	return cmd
}

func newIndicatorsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "indicators SYMBOL",
		Short: "RSI(14), SMA(20) and SMA(50)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ind, err := o.svc.GetIndicators(cmd.Context(), args[0])
			if err != nil {
				return report(cmd, err)
			}
			return printJSON(cmd.OutOrStdout(), ind)
		},
	}
}

func newNewsCmd(o *rootOptions) *cobra.Command {
	var (
		limit       int
		fromProvider bool
	)
	cmd := &cobra.Command{
		Use:   "news SYMBOL",
		Short: "Aggregated, de-duplicated ticker news",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			get := o.svc.GetTickerNews
			if fromProvider {
				get = o.svc.GetNews
			}
			items, err := get(cmd.Context(), args[0], limit)
			if err != nil {
				return report(cmd, err)
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of articles")
	cmd.Flags().BoolVar(&fromProvider, "provider-news", false, "use the market data provider's news instead of the news adapter")
	return cmd
}

// report prints err in its wire form to stderr and returns it.
func report(cmd *cobra.Command, err error) error {
	_ = printJSON(cmd.ErrOrStderr(), map[string]any{"error": marketerr.Serialize(err)})
	return fmt.Errorf("%s: %w", cmd.Name(), err)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
