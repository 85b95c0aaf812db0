package backup

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"happylink/internal/errs"
)

const (
	dumpExt       = ".sql"
	archivePrefix = "backup_"
	archiveExt    = ".zip"
)

// DumpPrefix is the file name prefix of every dump of database
func DumpPrefix(database string) string {
	return database + "_backup_"
}

// DumpFileName returns the dump file name for database taken at now
func DumpFileName(database string, now time.Time) string {
	return DumpPrefix(database) + now.Format("20060102_150405") + dumpExt
}

// ArchiveFileName returns the archive file name for a run started at now
func ArchiveFileName(now time.Time) string {
	return archivePrefix + now.Format("20060102_150405") + archiveExt
}

// Retention removes stale dumps and archives from the backup directory
type Retention struct {
	dir    string
	logger *zap.Logger
}

func NewRetention(dir string, logger *zap.Logger) *Retention {
	return &Retention{dir: dir, logger: logger}
}

type backupFile struct {
	path    string
	modTime time.Time
}

// Prune removes, for every database and for the archives, the single oldest
// file when at least two exist. A lone file is always kept. It returns the
// removed paths.
func (r *Retention) Prune(dbNames []string) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, errs.Filesystem("read backup dir", err)
	}

	var removed []string
	var errList []error
	prune := func(kind, prefix, ext string) {
		path, err := r.removeOldest(kind, r.matching(prefix, ext, entries))
		if err != nil {
			errList = append(errList, err)
		}
		if path != "" {
			removed = append(removed, path)
		}
	}

	for _, db := range dbNames {
		prune(db, DumpPrefix(db), dumpExt)
	}
	prune("archive", archivePrefix, archiveExt)

	return removed, errors.Join(errList...)
}

// removeOldest deletes the oldest of files when there are two or more
func (r *Retention) removeOldest(kind string, files []backupFile) (string, error) {
	if len(files) < 2 {
		r.logger.Info("No stale file to remove",
			zap.String("kind", kind),
			zap.Int("files", len(files)))
		return "", nil
	}

	oldest := files[0]
	for _, f := range files[1:] {
		if f.modTime.Before(oldest.modTime) {
			oldest = f
		}
	}

	if err := os.Remove(oldest.path); err != nil {
		r.logger.Error("Failed to remove stale file",
			zap.String("kind", kind),
			zap.String("path", oldest.path),
			zap.Error(err))
		return "", errs.Filesystem("remove "+oldest.path, err)
	}
	r.logger.Info("Removed stale file",
		zap.String("kind", kind),
		zap.String("path", oldest.path))
	return oldest.path, nil
}

func (r *Retention) matching(prefix, ext string, entries []os.DirEntry) []backupFile {
	var files []backupFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			r.logger.Warn("Failed to stat backup file", zap.String("name", name), zap.Error(err))
			continue
		}
		files = append(files, backupFile{
			path:    filepath.Join(r.dir, name),
			modTime: info.ModTime(),
		})
	}
	return files
}
