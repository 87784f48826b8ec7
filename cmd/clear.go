package cmd

import (
	"fmt"
	"path/filepath"

	"reelforge/internal/distribution"
	"reelforge/internal/state"
	"reelforge/pkg/config"

	"github.com/spf13/cobra"
)

var clearBlock bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the dedup state",
	Long: `Reset the used-topic and used-combination sets so every topic and
video becomes eligible again. The cycle counter is also reset.`,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearBlock, "block", false, "Also lift an active upload block")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := state.Open(cfg.Pipeline.StateDir)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}

	cycles := store.Counter()
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	fmt.Printf("Cleared dedup state after %d cycle(s)\n", cycles)

	if clearBlock {
		sentinel := distribution.NewBlockSentinel(
			filepath.Join(cfg.Pipeline.StateDir, "upload_block"),
			cfg.Pipeline.BlockCooldown,
		)
		if err := sentinel.Clear(); err != nil {
			return fmt.Errorf("clear upload block: %w", err)
		}
		fmt.Println("Lifted upload block")
	}

	return nil
}
