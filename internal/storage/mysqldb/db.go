package mysqldb

import (
	"context"
	"embed"
	"fmt"
	"net"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"happylink/internal/config"
	"happylink/internal/errs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB implements storage.Storage on top of the billing MySQL database
type DB struct {
	db *gorm.DB
}

// DSN builds a go-sql-driver DSN for the named database
func DSN(cfg config.DBConfig, database string) string {
	dc := mysqldriver.NewConfig()
	dc.User = cfg.User
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dc.DBName = database
	dc.ParseTime = true
	dc.Loc = time.Local
	dc.Params = map[string]string{"charset": "utf8mb4"}
	return dc.FormatDSN()
}

// Open connects to the named database. The pool is kept small: every tool
// handles one request at a time.
func Open(cfg config.DBConfig, database string) (*DB, error) {
	gdb, err := gorm.Open(mysql.Open(DSN(cfg, database)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, errs.Database("open", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errs.Database("open", err)
	}
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, errs.Database("ping", err)
	}

	return &DB{db: gdb}, nil
}

// New wraps an existing gorm handle
func New(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Close closes the underlying connection pool
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database answers
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return errs.Database("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errs.Database("ping", err)
	}
	return nil
}

// Migrate runs a goose command (up, down, status, version) against the
// embedded schema migrations.
func (d *DB) Migrate(ctx context.Context, command string) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, sqlDB, "migrations")
	case "down":
		return goose.DownContext(ctx, sqlDB, "migrations")
	case "status":
		return goose.StatusContext(ctx, sqlDB, "migrations")
	case "version":
		return goose.VersionContext(ctx, sqlDB, "migrations")
	default:
		return fmt.Errorf("unknown migrate command %q (available: up, down, status, version)", command)
	}
}
