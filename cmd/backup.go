package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"happylink/internal/backup"
	"happylink/internal/storage"
	"happylink/internal/storage/mysqldb"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Dump the billing databases, archive them with the site and upload to MEGA",
	RunE:  runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBackup(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := newLogger(cfg, cfg.Backup.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Dumps do not need the pool; without it only the truncate step is skipped
	var audit storage.AuditStore
	db, err := mysqldb.Open(cfg.DB, cfg.DB.Name)
	if err != nil {
		logger.Error("Failed to connect to MySQL", zap.Error(err))
	} else {
		defer db.Close()
		audit = db
	}

	job := backup.NewJob(
		cfg.Backup,
		cfg.DatabaseNames(),
		audit,
		backup.NewMysqlDumper(cfg.Backup.MysqldumpPath, cfg.DB),
		backup.NewMegaUploader(cfg.Backup.MegaEmail, cfg.Backup.MegaPassword, cfg.Backup.MegaFolder),
		logger,
	)

	report, err := job.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("backup %s: %w", report.RunID, err)
	}
	if len(report.Failed) > 0 {
		logger.Warn("Backup finished with failed dumps", zap.Strings("databases", report.Failed))
	}
	return nil
}
