package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avianlab/habitat-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "habitat-cli",
	Short: "Habitat covariate extraction for bird distribution modeling",
	Long:  "Summarizes annual landcover rasters into neighborhood composition tables for checklist observations and prediction grids.",
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
