package backup

import (
	"context"
	"path/filepath"

	mega "github.com/t3rm1n4l/go-mega"

	"happylink/internal/errs"
)

// Uploader stores the archive remotely and returns a shareable link
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// MegaUploader uploads archives into a fixed folder of a mega.nz account
type MegaUploader struct {
	email    string
	password string
	folder   string
}

func NewMegaUploader(email, password, folder string) *MegaUploader {
	return &MegaUploader{email: email, password: password, folder: folder}
}

// Upload logs in, finds or creates the folder under the cloud drive root,
// uploads the file and exports a public link to it.
func (u *MegaUploader) Upload(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errs.Upload("upload", err)
	}

	m := mega.New()
	if err := m.Login(u.email, u.password); err != nil {
		return "", errs.Upload("login", err)
	}

	parent, err := u.ensureFolder(m)
	if err != nil {
		return "", errs.Upload("folder "+u.folder, err)
	}

	node, err := m.UploadFile(path, parent, filepath.Base(path), nil)
	if err != nil {
		return "", errs.Upload("upload "+filepath.Base(path), err)
	}

	link, err := m.Link(node, true)
	if err != nil {
		return "", errs.Upload("export link", err)
	}
	return link, nil
}

func (u *MegaUploader) ensureFolder(m *mega.Mega) (*mega.Node, error) {
	root := m.FS.GetRoot()
	children, err := m.FS.GetChildren(root)
	if err != nil {
		return nil, err
	}
	for _, n := range children {
		if n.GetType() == mega.FOLDER && n.GetName() == u.folder {
			return n, nil
		}
	}
	return m.CreateDir(u.folder, root)
}
