package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one poll/diff/notify cycle",
	Long: `Execute one cycle: fetch the catalog, diff against the snapshot,
announce each change, and persist the delivered state.

Exits 0 on a normal run (including runs with zero changes) and
non-zero when the catalog itself cannot be fetched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg.Log.Level)

		app, err := buildApp(cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		result, err := app.runner.Run(ctx)
		if err != nil {
			return err
		}

		logger.Info("run complete",
			"items", result.ItemsSeen,
			"detected", result.Detected,
			"delivered", result.Delivered,
			"failed", result.Failed,
		)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the catalog on an interval until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg.Log.Level)

		app, err := buildApp(cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("watching catalog", "interval", cfg.Poll.Interval.Std())
		if err := app.runner.Watch(ctx, cfg.Poll.Interval.Std()); err != nil && ctx.Err() == nil {
			return err
		}
		logger.Info("shutting down")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
}
