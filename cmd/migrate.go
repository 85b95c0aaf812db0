package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"happylink/internal/storage/mysqldb"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|version]",
	Short:     "Run billing schema migrations (development and test databases)",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status", "version"},
	RunE:      runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, "")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := mysqldb.Open(cfg.DB, cfg.DB.Name)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("Running migrations", zap.String("command", command), zap.String("database", cfg.DB.Name))
	if err := db.Migrate(cmd.Context(), command); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	logger.Info("Migrations completed successfully", zap.String("command", command))
	return nil
}
