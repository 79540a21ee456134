package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/market"
	"stock-advisor/internal/recorder"
	"stock-advisor/internal/types"
)

const shutdownTimeout = 15 * time.Second

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "advisor",
		Short:         "AI-assisted Buy/Hold/Sell stock advisor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default $ADVISOR_CONFIG or config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging with caller source")

	root.AddCommand(
		newServeCmd(opts),
		newAnalyzeCmd(opts),
		newSearchCmd(opts),
		newHistoryCmd(opts),
		newMetricsCmd(opts),
		newMaintainCmd(opts),
		newSummaryCmd(opts),
	)
	return root
}

// withApp boots the system, runs fn and tears everything down.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	if err := initializeSystem(opts.verbose); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = logger.Shutdown(shutdownCtx)
	}()

	cfg, err := loadConfig(ctx, configPath(opts.configPath))
	if err != nil {
		return err
	}
	a, cleanup, err := initializeApp(ctx, cfg)
	defer cleanup()
	if err != nil {
		return err
	}
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, serve)
		},
	}
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "analyze <ticker>",
		Short:   "Produce a Buy/Hold/Sell recommendation",
		Example: "  advisor analyze AAPL\n  advisor analyze RELIANCE.NS",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				res, err := a.analyzer.Analyze(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "search <query>",
		Short:   "Look up tickers by company name or symbol",
		Example: "  advisor search apple\n  advisor search AAPL,MSFT",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				matches, err := a.searcher.Search(ctx, args[0])
				if err != nil {
					return err
				}
				return printMatches(cmd.OutOrStdout(), matches)
			})
		},
	}
}

func printMatches(w io.Writer, matches []types.SymbolMatch) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tNAME\tEXCHANGE")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Ticker, m.Name, m.Exchange)
	}
	return tw.Flush()
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var rangeFlag string
	cmd := &cobra.Command{
		Use:   "history <ticker>",
		Short: "Print daily closes for a chart range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := market.ParseRange(rangeFlag)
			if err != nil {
				return err
			}
			ticker, err := market.NormalizeTicker(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				points, err := a.history.Range(ctx, ticker, rng)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DATE\tCLOSE\tVOLUME")
				for _, p := range points {
					fmt.Fprintf(tw, "%s\t%.2f\t%.0f\n", p.Date.Format("2006-01-02"), p.Close, p.Volume)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&rangeFlag, "range", "r", string(market.DefaultRange), "1M, 1Y, YTD or Max")
	return cmd
}

func newMetricsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <ticker>",
		Short: "Show valuation and risk metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker, err := market.NormalizeTicker(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				m, err := a.metrics.Metrics(ctx, ticker)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), m)
			})
		},
	}
}

func newMaintainCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "maintain",
		Short: "Apply recorder retention once (compress or prune old analyses)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				m, ok := a.recorder.(recorder.Maintainer)
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "recorder has nothing to maintain")
					return nil
				}
				n, err := m.Maintain(ctx, a.cfg.Recorder.RetentionDays)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d item(s) compressed or pruned\n", n)
				return nil
			})
		},
	}
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Write the per-ticker CSV summary of a day's analyses (JSONL recorder)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now().UTC()
			if date != "" {
				d, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
				day = d
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				j, ok := a.recorder.(*recorder.JSONL)
				if !ok {
					return fmt.Errorf("summary needs recorder.kind JSONL, have %s", a.cfg.Recorder.Kind)
				}
				p, err := j.SummarizeDay(ctx, day)
				if err != nil {
					return err
				}
				if p == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "no analyses recorded on", day.Format("2006-01-02"))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "summary written:", p)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to summarize, YYYY-MM-DD (default today, UTC)")
	return cmd
}
