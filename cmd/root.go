package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cppla/greenhabit/config"
	"github.com/cppla/greenhabit/utils"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "greenhabit",
	Short: "Daily eco-habit tracker API",
	Long: `GreenHabit serves a small JSON API for daily eco-friendly tasks: accounts,
one claimable task per day, rewards, a completion streak and a tip of the day.

Running without a subcommand is the same as "greenhabit serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "Path to the JSON config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// loadConfig reads configuration and starts the application logger.
func loadConfig() (config.AppConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if err := utils.InitLogger(cfg); err != nil {
		return cfg, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}
