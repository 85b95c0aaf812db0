package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"happylink/internal/config"
	"happylink/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "happylink",
	Short:         "HappyLink ISP tools: billing backup, staff ticket notifier and customer support bot",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML or YAML config file")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(migrateCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// newLogger writes to logFile and mirrors to stderr
func newLogger(cfg *config.Config, logFile string) (*zap.Logger, error) {
	logger, err := logging.New(logging.Options{
		File:    logFile,
		Level:   cfg.LogLevel,
		Console: true,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return logger, nil
}
