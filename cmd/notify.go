package cmd

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"happylink/internal/notifier"
	"happylink/internal/storage/mysqldb"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send the newest ticket due today to the staff chat",
	RunE:  runNotify,
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateNotifier(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := newLogger(cfg, cfg.Notifier.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := mysqldb.Open(cfg.DB, cfg.DB.Name)
	if err != nil {
		logger.Error("Failed to connect to MySQL", zap.Error(err))
		return err
	}
	defer db.Close()

	api, err := tgbotapi.NewBotAPI(cfg.Notifier.Token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return fmt.Errorf("failed to create bot: %w", err)
	}

	n := notifier.New(db, api, notifier.Options{
		ChatID:       cfg.Notifier.ChatID,
		AgreementURL: cfg.Notifier.AgreementURL,
		QuestionsURL: cfg.Notifier.QuestionsURL,
	}, logger)

	_, err = n.Run(cmd.Context())
	return err
}
