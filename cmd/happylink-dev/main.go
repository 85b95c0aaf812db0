package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"go.uber.org/zap"

	"happylink/internal/app"
	"happylink/internal/config"
	"happylink/internal/logging"
	"happylink/internal/storage/mysqldb"
)

// happylink-dev runs the support bot against a throwaway MySQL container
// with the billing schema applied. BOT_TOKEN and the ticket API settings
// still come from .env or the environment.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("Starting MySQL testcontainer...")

	container, err := mysql.Run(ctx, "mysql:8.0.36",
		mysql.WithDatabase("billing"),
		mysql.WithUsername("happylink"),
		mysql.WithPassword("devpassword"),
	)
	if err != nil {
		log.Fatalf("Failed to start MySQL container: %v", err)
	}

	// Ensure container cleanup on exit
	defer func() {
		log.Println("Stopping MySQL container...")
		if err := testcontainers.TerminateContainer(container); err != nil {
			log.Printf("Failed to terminate container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "3306/tcp")
	if err != nil {
		log.Fatalf("Failed to get container port: %v", err)
	}

	log.Printf("MySQL started at %s:%s", host, port.Port())

	os.Setenv("DB_HOST", host)
	os.Setenv("DB_PORT", port.Port())
	os.Setenv("DB_NAME", "billing")
	os.Setenv("DB_USER", "happylink")
	os.Setenv("DB_PASSWORD", "devpassword")

	if os.Getenv("BOT_TOKEN") == "" {
		log.Println("⚠️  BOT_TOKEN not set. Please set it in your .env file or environment.")
	}

	if err := run(ctx); err != nil {
		log.Printf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: "debug", Console: true})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := mysqldb.Open(cfg.DB, cfg.DB.Name)
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx, "up"); err != nil {
		db.Close()
		return err
	}
	db.Close()
	logger.Info("Billing schema applied", zap.String("database", cfg.DB.Name))

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	return application.Run(ctx)
}
