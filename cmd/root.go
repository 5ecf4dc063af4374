package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marktron/app-gaps/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "app-gaps",
	Short: "Find unmet user needs in App Store reviews",
	Long:  "Paginates the public App Store review feed for an app, packs the reviews under a token budget, and asks Claude to synthesize unmet-need themes.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A local .env is optional; real env vars win either way.
		_ = godotenv.Load()

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
