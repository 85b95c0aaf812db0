package cmd

import (
	"github.com/spf13/cobra"

	"happylink/internal/app"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the customer support bot (long polling)",
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, cfg.Bot.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	return application.Run(cmd.Context())
}
