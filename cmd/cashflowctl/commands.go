package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Dan9191/cashflow-service/internal/app"
	"github.com/spf13/cobra"
)

var (
	flagMonths   int
	flagSweepDay string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's balance, daily limit and traffic light",
	RunE:  runStatus,
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project month-end balances",
	RunE:  runProject,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Zero an untouched day's spending placeholder (default yesterday)",
	RunE:  runSweep,
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List the alerts currently firing",
	RunE:  runAlerts,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the ledger tables for the sql backend",
	RunE:  runMigrate,
}

func init() {
	projectCmd.Flags().IntVarP(&flagMonths, "months", "m", 0, "Months to project (default 6, max 12)")
	sweepCmd.Flags().StringVar(&flagSweepDay, "date", "", "Day to sweep, YYYY-MM-DD")

	rootCmd.AddCommand(statusCmd, projectCmd, sweepCmd, alertsCmd, migrateCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		res := a.Service.ComputeStatus(ctx, flagStrategy)
		if !res.Success {
			return res.Err
		}
		if flagJSON {
			return printJSON(os.Stdout, res.Data)
		}
		fmt.Print(renderStatus(res.Data))
		return nil
	})
}

func runProject(_ *cobra.Command, _ []string) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		res := a.Service.ComputeProjection(ctx, flagMonths)
		if !res.Success {
			return res.Err
		}
		if flagJSON {
			return printJSON(os.Stdout, res.Data)
		}
		fmt.Print(renderProjection(res.Data))
		return nil
	})
}

func runSweep(_ *cobra.Command, _ []string) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		day := a.Service.Today().AddDate(0, 0, -1)
		if flagSweepDay != "" {
			var err error
			day, err = time.ParseInLocation("2006-01-02", flagSweepDay, a.Location)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", flagSweepDay, err)
			}
		}
		res := a.Service.SweepDay(ctx, day)
		if !res.Success {
			return res.Err
		}
		if flagJSON {
			return printJSON(os.Stdout, res.Data)
		}
		fmt.Print(renderSweep(res.Data))
		return nil
	})
}

func runAlerts(_ *cobra.Command, _ []string) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		res := a.Service.EvaluateAlerts(ctx)
		if !res.Success {
			return res.Err
		}
		if flagJSON {
			return printJSON(os.Stdout, res.Data)
		}
		fmt.Print(renderAlerts(res.Data))
		return nil
	})
}

// runMigrate relies on app.Build, which migrates the sql backend on open
func runMigrate(_ *cobra.Command, _ []string) error {
	return withApp(func(_ context.Context, a *app.App) error {
		if a.Repo == nil {
			return fmt.Errorf("migrate needs LEDGER_BACKEND=sql, got %q", a.Config.LedgerBackend)
		}
		fmt.Printf("  Schema ready (%s)\n", a.Config.DBDriver)
		return nil
	})
}
