package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"happylink/internal/storage"
)

// NewBotAPI connects to Telegram and verifies the token
func NewBotAPI(token string, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))
	return api, nil
}

// NewBot creates a new support bot
func NewBot(api Sender, db storage.CustomerStore, tickets TicketCreator, states StateStore, opts Options, logger *zap.Logger) *Bot {
	return &Bot{
		api:     api,
		db:      db,
		tickets: tickets,
		states:  states,
		limiter: newLimiter(opts.ReplyDelay),
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// newLimiter paces replies to one message per delay across all chats
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
