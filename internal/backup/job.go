package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"happylink/internal/config"
	"happylink/internal/errs"
	"happylink/internal/storage"
)

// ErrNothingToArchive is returned when neither the site folder nor any dump is available
var ErrNothingToArchive = errors.New("nothing to archive")

// Report summarizes one backup run
type Report struct {
	RunID     string
	Removed   []string
	Truncated bool
	Dumps     []string
	Failed    []string // databases whose dump failed
	Archive   string
	Link      string
}

// Job runs retention, audit cleanup, dumps, archiving and upload in order
type Job struct {
	cfg       config.BackupConfig
	databases []string
	audit     storage.AuditStore
	retention *Retention
	dumper    Dumper
	archiver  *Archiver
	uploader  Uploader
	logger    *zap.Logger
	now       func() time.Time
}

// NewJob creates a backup job. audit may be nil when the database is
// unreachable; the truncate step is then skipped.
func NewJob(cfg config.BackupConfig, databases []string, audit storage.AuditStore, dumper Dumper, uploader Uploader, logger *zap.Logger) *Job {
	return &Job{
		cfg:       cfg,
		databases: databases,
		audit:     audit,
		retention: NewRetention(cfg.Dir, logger),
		dumper:    dumper,
		archiver:  NewArchiver(cfg.ZipPassword, cfg.ZipEncryption),
		uploader:  uploader,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one backup. Retention, truncate and individual dump failures
// are logged and skipped; archive and upload failures end the run with an error.
func (j *Job) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	log := j.logger.With(zap.String("run_id", report.RunID))
	started := j.now()

	log.Info("Backup started", zap.Strings("databases", j.databases))

	if err := os.MkdirAll(j.cfg.Dir, 0o750); err != nil {
		log.Error("Failed to create backup dir", zap.Error(err))
		return report, errs.Filesystem("create backup dir", err)
	}

	removed, err := j.retention.Prune(j.databases)
	report.Removed = removed
	if err != nil {
		log.Error("Retention failed", zap.Error(err))
	}

	report.Truncated = j.truncate(ctx, log)

	for _, db := range j.databases {
		path := filepath.Join(j.cfg.Dir, DumpFileName(db, started))
		if err := j.dumper.Dump(ctx, db, path); err != nil {
			log.Error("Dump failed", zap.String("database", db), zap.Error(err))
			report.Failed = append(report.Failed, db)
			continue
		}
		log.Info("Dump saved", zap.String("database", db), zap.String("path", path))
		report.Dumps = append(report.Dumps, path)
	}

	sources := append([]string(nil), report.Dumps...)
	if j.cfg.SiteFolder != "" {
		if _, err := os.Stat(j.cfg.SiteFolder); err != nil {
			log.Warn("Site folder unavailable, archiving dumps only",
				zap.String("path", j.cfg.SiteFolder),
				zap.Error(err))
		} else {
			sources = append([]string{j.cfg.SiteFolder}, sources...)
		}
	}
	if len(sources) == 0 {
		log.Error("Backup aborted", zap.Error(ErrNothingToArchive))
		return report, ErrNothingToArchive
	}

	archive := filepath.Join(j.cfg.Dir, ArchiveFileName(started))
	if err := j.archiver.Create(archive, sources); err != nil {
		log.Error("Archive failed", zap.String("path", archive), zap.Error(err))
		return report, err
	}
	report.Archive = archive
	log.Info("Archive created", zap.String("path", archive), zap.Int("sources", len(sources)))

	link, err := j.uploader.Upload(ctx, archive)
	if err != nil {
		log.Error("Upload failed", zap.String("path", archive), zap.Error(err))
		return report, err
	}
	report.Link = link
	log.Info("Archive uploaded",
		zap.String("path", archive),
		zap.String("folder", j.cfg.MegaFolder),
		zap.String("link", link),
		zap.Duration("took", j.now().Sub(started)))

	return report, nil
}

func (j *Job) truncate(ctx context.Context, log *zap.Logger) bool {
	if j.cfg.TruncateTable == "" {
		return false
	}
	if j.audit == nil {
		log.Warn("Database unavailable, audit table not truncated", zap.String("table", j.cfg.TruncateTable))
		return false
	}
	if err := j.audit.TruncateTable(ctx, j.cfg.TruncateTable); err != nil {
		log.Error("Truncate failed", zap.String("table", j.cfg.TruncateTable), zap.Error(err))
		return false
	}
	log.Info("Audit table truncated", zap.String("table", j.cfg.TruncateTable))
	return true
}
