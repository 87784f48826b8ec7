package cmd

import (
	"log/slog"

	"reelforge/internal/app"
	"reelforge/pkg/config"

	"github.com/spf13/cobra"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Produce and publish a single reel",
	Long: `Run exactly one production cycle: pick a topic, produce the reel,
and upload it to the configured platforms.`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	service, err := app.BuildService(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}

	if err := service.RunCycle(ctx); err != nil {
		return err
	}

	slog.Info("Cycle complete", "cycle", service.Store().Counter())
	return nil
}
