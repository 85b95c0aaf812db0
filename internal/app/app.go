package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"happylink/internal/bot"
	"happylink/internal/config"
	"happylink/internal/storage/mysqldb"
	"happylink/internal/ticketapi"
)

const ticketAPITimeout = 10 * time.Second

// App represents the support bot process
type App struct {
	config *config.Config
	logger *zap.Logger
	db     *mysqldb.DB
	redis  *redis.Client
	api    *tgbotapi.BotAPI
	bot    *bot.Bot
	server *http.Server
}

// New creates and initializes the support bot application
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.ValidateBot(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &App{config: cfg, logger: logger}

	logger.Info("Starting HappyLink support bot...")

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	states, err := app.initStateStore()
	if err != nil {
		app.close()
		return nil, err
	}

	if err := app.initBot(states); err != nil {
		app.close()
		return nil, err
	}

	app.initHTTPServer()

	return app, nil
}

// initDatabase connects to the billing database
func (a *App) initDatabase() error {
	a.logger.Info("Connecting to MySQL",
		zap.String("host", a.config.DB.Host),
		zap.Int("port", a.config.DB.Port),
		zap.String("database", a.config.DB.Name),
		zap.String("user", a.config.DB.User))

	db, err := mysqldb.Open(a.config.DB, a.config.DB.Name)
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	a.db = db
	return nil
}

// initStateStore picks where conversation stages live
func (a *App) initStateStore() (bot.StateStore, error) {
	cfg := a.config.Bot
	if cfg.StateBackend != "redis" {
		a.logger.Info("Using in-memory conversation state", zap.Duration("ttl", cfg.StateTTL))
		return bot.NewMemoryStateStore(cfg.StateTTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}

	a.logger.Info("Using Redis conversation state",
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("ttl", cfg.StateTTL))
	a.redis = client
	return bot.NewRedisStateStore(client, cfg.StateTTL), nil
}

// initBot connects to Telegram and builds the bot
func (a *App) initBot(states bot.StateStore) error {
	api, err := bot.NewBotAPI(a.config.Bot.Token, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	tickets := ticketapi.NewClient(a.config.Bot.TicketAPIURL, a.config.Bot.TicketAPIKey, ticketAPITimeout)
	opts := bot.Options{
		ReasonID:    a.config.Bot.ReasonID,
		PortalURL:   a.config.Bot.PortalURL,
		EasyPayURL:  a.config.Bot.EasyPayURL,
		Privat24URL: a.config.Bot.Privat24URL,
		ReplyDelay:  a.config.Bot.ReplyDelay,
	}

	a.api = api
	a.bot = bot.NewBot(api, a.db, tickets, states, opts, a.logger)
	return nil
}

// initHTTPServer sets up the health endpoint. An empty address disables it.
func (a *App) initHTTPServer() {
	if a.config.Bot.HealthAddr == "" {
		return
	}

	a.server = &http.Server{
		Addr:         a.config.Bot.HealthAddr,
		Handler:      NewRouter(a.db),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Run polls Telegram until SIGINT/SIGTERM or ctx cancellation
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.server != nil {
		go func() {
			a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("HTTP server error", zap.Error(err))
			}
		}()
	}

	err := a.bot.Start(ctx, a.api)

	a.logger.Info("Shutting down...")
	if shutdownErr := a.Shutdown(); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

// Shutdown stops the HTTP server and closes connections
func (a *App) Shutdown() error {
	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("HTTP server shutdown error", zap.Error(err))
		}
	}

	if err := a.close(); err != nil {
		a.logger.Error("Error closing connections", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	return nil
}

func (a *App) close() error {
	var errList []error
	if a.redis != nil {
		errList = append(errList, a.redis.Close())
	}
	if a.db != nil {
		errList = append(errList, a.db.Close())
	}
	return errors.Join(errList...)
}

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter serves /health, which answers 503 while the database is down
func NewRouter(db Pinger) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})
	return r
}
