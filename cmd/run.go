package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reelforge/internal/app"
	"reelforge/pkg/config"

	"github.com/spf13/cobra"
)

var runInterval time.Duration

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Continuous mode: produce and publish reels at regular intervals",
	Long: `Run the production loop indefinitely. Each cycle picks a trending topic,
produces a reel, and uploads it. Failed cycles are logged and the loop
continues; the interval between cycles stays fixed regardless of outcome.`,
	RunE: runLoop,
}

func init() {
	runCmd.Flags().DurationVarP(&runInterval, "interval", "i", 0, "Interval between cycles (overrides config)")
	rootCmd.AddCommand(runCmd)
}

func runLoop(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	interval := cfg.Pipeline.Interval
	if runInterval > 0 {
		interval = runInterval
	}

	service, err := app.BuildService(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}

	slog.Info("Starting production loop", "interval", interval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	cycle := func() {
		if err := service.RunCycle(ctx); err != nil {
			slog.Error("Cycle failed", "error", err)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cycle()

	for {
		select {
		case <-sigChan:
			slog.Info("Shutting down...")
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cycle()
		}
	}
}
