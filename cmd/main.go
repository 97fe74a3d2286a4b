package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"owlistic-notes/blocknotes/config"
	"owlistic-notes/blocknotes/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "blocknotes",
	Short: "Block-based note editor server.",
	Long: `Serves the block editor over HTTP and streams flush status over a websocket.

  blocknotes migrate
  blocknotes serve --config blocknotes.yaml`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (environment variables take precedence)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// loadConfig reads the configuration and installs the process logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	if err := logging.Set(cfg.LogLevel, cfg.Development()); err != nil {
		return config.Config{}, fmt.Errorf("failed to set up logging: %w", err)
	}
	return cfg, nil
}

func main() {
	err := rootCmd.Execute()
	logging.Flush()
	if err != nil {
		os.Exit(1)
	}
}
