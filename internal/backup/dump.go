package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"happylink/internal/config"
	"happylink/internal/errs"
)

// Dumper writes a logical dump of one database to a file
type Dumper interface {
	Dump(ctx context.Context, database, path string) error
}

// MysqlDumper shells out to mysqldump. The password travels in MYSQL_PWD so
// it never shows up in the process list.
type MysqlDumper struct {
	Binary string
	DB     config.DBConfig
}

func NewMysqlDumper(binary string, db config.DBConfig) *MysqlDumper {
	if binary == "" {
		binary = "mysqldump"
	}
	return &MysqlDumper{Binary: binary, DB: db}
}

func (d *MysqlDumper) args(database string) []string {
	args := []string{
		"--host=" + d.DB.Host,
		"--user=" + d.DB.User,
		"--routines",
		"--triggers",
	}
	if d.DB.Port != 0 {
		args = append(args, "--port="+strconv.Itoa(d.DB.Port))
	}
	return append(args, database)
}

// Dump runs mysqldump for database with stdout redirected to path.
// A partial file is removed when the dump fails.
func (d *MysqlDumper) Dump(ctx context.Context, database, path string) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return errs.Filesystem("create dump file", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.Binary, d.args(database)...)
	cmd.Env = append(os.Environ(), "MYSQL_PWD="+d.DB.Password)
	cmd.Stdout = out
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	closeErr := out.Close()

	if runErr != nil {
		_ = os.Remove(path)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			runErr = fmt.Errorf("%w: %s", runErr, msg)
		}
		return errs.Dump("mysqldump "+database, runErr)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return errs.Filesystem("close dump file", closeErr)
	}
	return nil
}
