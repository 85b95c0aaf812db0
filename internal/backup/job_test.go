package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"happylink/internal/config"
	"happylink/internal/errs"
	"happylink/internal/storage/stubs"
)

type fakeDumper struct {
	fail map[string]bool
	seen []string
}

func (f *fakeDumper) Dump(ctx context.Context, database, path string) error {
	f.seen = append(f.seen, database)
	if f.fail[database] {
		return errs.Dump("mysqldump "+database, errors.New("exit status 2"))
	}
	return os.WriteFile(path, []byte("-- "+database), 0o600)
}

type fakeUploader struct {
	err      error
	uploaded []string
}

func (f *fakeUploader) Upload(ctx context.Context, path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploaded = append(f.uploaded, path)
	return "https://mega.nz/file/abc#key", nil
}

func newTestJob(t *testing.T, dumper Dumper, uploader Uploader, audit *stubs.MockDB) (*Job, config.BackupConfig) {
	t.Helper()

	dir := t.TempDir()
	site := filepath.Join(dir, "site")
	require.NoError(t, os.MkdirAll(site, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(site, "index.php"), []byte("<?php"), 0o644))

	cfg := config.BackupConfig{
		Dir:           filepath.Join(dir, "backups"),
		SiteFolder:    site,
		ZipPassword:   "pw",
		ZipEncryption: "aes256",
		TruncateTable: "system_events",
		MegaFolder:    "Happylink",
	}

	job := NewJob(cfg, []string{"billing", "billing_pay"}, audit, dumper, uploader, zap.NewNop())
	job.now = func() time.Time { return time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC) }
	return job, cfg
}

func TestJob_Run(t *testing.T) {
	audit := stubs.NewMockDB()
	dumper := &fakeDumper{}
	uploader := &fakeUploader{}
	job, cfg := newTestJob(t, dumper, uploader, audit)

	report, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.True(t, report.Truncated)
	assert.Equal(t, []string{"system_events"}, audit.Truncated())
	assert.Equal(t, []string{"billing", "billing_pay"}, dumper.seen)
	assert.Equal(t, []string{
		filepath.Join(cfg.Dir, "billing_backup_20261018_030000.sql"),
		filepath.Join(cfg.Dir, "billing_pay_backup_20261018_030000.sql"),
	}, report.Dumps)
	assert.Equal(t, filepath.Join(cfg.Dir, "backup_20261018_030000.zip"), report.Archive)
	assert.Equal(t, []string{report.Archive}, uploader.uploaded)
	assert.Equal(t, "https://mega.nz/file/abc#key", report.Link)

	contents := readArchive(t, report.Archive, "pw")
	assert.Contains(t, contents, "site/index.php")
	assert.Contains(t, contents, "billing_backup_20261018_030000.sql")
	assert.Contains(t, contents, "billing_pay_backup_20261018_030000.sql")
}

func TestJob_DumpAndTruncateFailuresContinue(t *testing.T) {
	audit := stubs.NewMockDB()
	audit.FailWith(errs.Database("truncate system_events", errors.New("access denied")))
	dumper := &fakeDumper{fail: map[string]bool{"billing_pay": true}}
	uploader := &fakeUploader{}
	job, _ := newTestJob(t, dumper, uploader, audit)

	report, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Truncated)
	assert.Equal(t, []string{"billing_pay"}, report.Failed)
	assert.Len(t, report.Dumps, 1)
	assert.Len(t, uploader.uploaded, 1)
}

func TestJob_NilAuditSkipsTruncate(t *testing.T) {
	uploader := &fakeUploader{}
	dir := t.TempDir()
	cfg := config.BackupConfig{Dir: dir, ZipPassword: "pw", ZipEncryption: "aes256", TruncateTable: "system_events"}

	job := NewJob(cfg, []string{"billing"}, nil, &fakeDumper{}, uploader, zap.NewNop())
	report, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Truncated)
	assert.Len(t, uploader.uploaded, 1)
}

func TestJob_NothingToArchive(t *testing.T) {
	uploader := &fakeUploader{}
	cfg := config.BackupConfig{Dir: t.TempDir(), ZipPassword: "pw", ZipEncryption: "aes256"}
	dumper := &fakeDumper{fail: map[string]bool{"billing": true}}

	job := NewJob(cfg, []string{"billing"}, nil, dumper, uploader, zap.NewNop())
	_, err := job.Run(context.Background())

	assert.ErrorIs(t, err, ErrNothingToArchive)
	assert.Empty(t, uploader.uploaded)
}

func TestJob_UploadFailureFailsRun(t *testing.T) {
	uploader := &fakeUploader{err: errs.Upload("login", errors.New("ENOENT"))}
	job, _ := newTestJob(t, &fakeDumper{}, uploader, stubs.NewMockDB())

	report, err := job.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindUpload))
	assert.FileExists(t, report.Archive, "the local archive survives a failed upload")
	assert.Empty(t, report.Link)
}

func TestJob_RetentionBeforeDumps(t *testing.T) {
	uploader := &fakeUploader{}
	job, cfg := newTestJob(t, &fakeDumper{}, uploader, stubs.NewMockDB())
	require.NoError(t, os.MkdirAll(cfg.Dir, 0o750))

	base := time.Date(2026, 10, 1, 3, 0, 0, 0, time.UTC)
	old := writeDump(t, cfg.Dir, "billing_backup_20261001_030000.sql", base)
	kept := writeDump(t, cfg.Dir, "billing_backup_20261002_030000.sql", base.AddDate(0, 0, 1))

	report, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{old}, report.Removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, kept)
}

func TestJob_ArchivesDoNotAccumulate(t *testing.T) {
	uploader := &fakeUploader{}
	job, cfg := newTestJob(t, &fakeDumper{}, uploader, stubs.NewMockDB())
	require.NoError(t, os.MkdirAll(cfg.Dir, 0o750))

	base := time.Date(2026, 10, 1, 3, 0, 0, 0, time.UTC)
	old := writeDump(t, cfg.Dir, "backup_20261001_030000.zip", base)
	previous := writeDump(t, cfg.Dir, "backup_20261002_030000.zip", base.AddDate(0, 0, 1))

	report, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, report.Removed, old)
	assert.NoFileExists(t, old)
	assert.FileExists(t, previous)
	assert.FileExists(t, report.Archive)
}
