// Command valuate is a cobra-based CLI for local/offline use, exposing the
// value and wacc operations cmd/api serves plus a sensitivity command that
// cmd/api does not have, the way
// cloudmanic-massive and penny-vault-pv-data expose cobra CLIs around a
// data-fetch-then-compute core.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"valuationengine/internal/cache"
	"valuationengine/internal/config"
	"valuationengine/pkg/aggregator"
	"valuationengine/pkg/engine"
	"valuationengine/pkg/models"
	"valuationengine/pkg/providers"
	"valuationengine/pkg/wacc"
)

func buildEngine() (*engine.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	treasury := providers.NewTreasury()
	treasuryCache := cache.New(cfg.RedisAddr, treasury.Rate)
	agg := aggregator.New(
		providers.NewYahoo(),
		providers.NewFMP(cfg.FMPAPIKey),
		providers.NewAlphaVantage(cfg.AlphaVantageAPIKey),
	).WithTimeout(cfg.AdapterTimeout).WithMaxConcurrent(cfg.AdapterFanout)
	waccEngine := wacc.New(treasuryCache, true, 10)
	return engine.New(agg, waccEngine, 5).WithAggregatorDeadline(cfg.AggregatorDeadline), nil
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
	}
}

func main() {
	root := &cobra.Command{
		Use:   "valuate",
		Short: "Multi-method equity valuation CLI",
	}

	var strategy string

	valueCmd := &cobra.Command{
		Use:   "value [ticker]",
		Short: "Run the full valuation pipeline for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine()
			if err != nil {
				return err
			}
			overrides := models.DefaultOverrides()
			if strategy != "" {
				overrides.Strategy = models.AggregatorStrategy(strategy)
			}
			result, err := eng.ValueEquity(context.Background(), engine.Request{Ticker: args[0], Overrides: overrides})
			if err != nil {
				return err
			}
			if result.Scenario != nil {
				printJSON(result.Scenario)
				return nil
			}
			printJSON(result.Single)
			return nil
		},
	}
	valueCmd.Flags().StringVar(&strategy, "strategy", "", "aggregator strategy: first_available | best_quality | merge")

	waccCmd := &cobra.Command{
		Use:   "wacc [ticker]",
		Short: "Compute the WACC Engine's output standalone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine()
			if err != nil {
				return err
			}
			result, err := eng.ComputeWACCForTicker(context.Background(), args[0], models.DefaultOverrides())
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}

	sensitivityCmd := &cobra.Command{
		Use:   "sensitivity [ticker]",
		Short: "Compute the WACC x terminal-growth sensitivity matrix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine()
			if err != nil {
				return err
			}
			ctx := context.Background()
			result, err := eng.ValueEquity(ctx, engine.Request{Ticker: args[0]})
			if err != nil {
				return err
			}
			base := result.WACC.WACC
			growth := result.Growth.TerminalGrowth
			matrix := eng.Sensitivity(result.Data, result.Growth.BaseFCF, result.Growth.Rates, base, growth, nil, nil)
			printJSON(matrix)
			return nil
		},
	}

	root.AddCommand(valueCmd, waccCmd, sensitivityCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "valuate: %v\n", err)
		os.Exit(1)
	}
}
