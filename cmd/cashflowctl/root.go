package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Dan9191/cashflow-service/internal/app"
	"github.com/Dan9191/cashflow-service/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagJSON     bool
	flagStrategy string
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:           "cashflowctl",
	Short:         "Cash-flow status and projection CLI",
	Long:          "Inspect balance, daily limit, projections and alerts from the configured ledger.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStatus,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print the raw JSON payload")
	rootCmd.PersistentFlags().StringVarP(&flagStrategy, "strategy", "s", "", "Status strategy (month_performance, balance_and_daily_ratio)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")
}

// withApp loads the configuration, wires the service and runs fn against it.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	level := os.Getenv("LOG_LEVEL")
	if flagQuiet {
		level = "error"
	}
	logger := app.NewLogger(level)

	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
