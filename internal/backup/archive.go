package backup

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yeka/zip"

	"happylink/internal/errs"
)

// Archiver packs files and folders into one password-protected zip
type Archiver struct {
	password string
	method   zip.EncryptionMethod
}

// NewArchiver returns an archiver using AES-256, or ZipCrypto when encryption
// is "standard" for compatibility with older unzip tools.
func NewArchiver(password, encryption string) *Archiver {
	method := zip.AES256Encryption
	if encryption == "standard" {
		method = zip.StandardEncryption
	}
	return &Archiver{password: password, method: method}
}

// Create writes the archive at path. Files are stored under their base name;
// folders keep their own name as the top-level entry. The archive is removed
// if any source cannot be added.
func (a *Archiver) Create(path string, sources []string) (err error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return errs.Archive("create archive", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	zw := zip.NewWriter(out)
	for _, src := range sources {
		if err = a.addSource(zw, src); err != nil {
			zw.Close()
			out.Close()
			return errs.Archive("add "+src, err)
		}
	}

	if err = zw.Close(); err != nil {
		out.Close()
		return errs.Archive("finish archive", err)
	}
	if err = out.Close(); err != nil {
		return errs.Archive("close archive", err)
	}
	return nil
}

func (a *Archiver) addSource(zw *zip.Writer, src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return a.addFile(zw, src, filepath.Base(src))
	}

	base := filepath.Dir(filepath.Clean(src))
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		return a.addFile(zw, p, filepath.ToSlash(rel))
	})
}

func (a *Archiver) addFile(zw *zip.Writer, src, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.Encrypt(name, a.password, a.method)
	if err != nil {
		return fmt.Errorf("entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("entry %s: %w", name, err)
	}
	return nil
}
