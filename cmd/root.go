package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/farescout/farescout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "farescout",
	Short: "Ride offer extraction and deduplication pipeline",
	Long:  "Watches screen-content events from ride-hailing driver apps, extracts offer cards into structured records, deduplicates repeated reads, and tracks acceptance.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
