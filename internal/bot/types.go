package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"happylink/internal/storage"
	"happylink/internal/ticketapi"
)

// Sender is the part of the Telegram client used to answer users.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Updater delivers updates in polling mode
type Updater interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// TicketCreator files support requests in the billing system
type TicketCreator interface {
	CreateTicket(ctx context.Context, req ticketapi.Request) (string, error)
}

// Options holds the customer-facing links and ticket settings
type Options struct {
	ReasonID    int
	PortalURL   string
	EasyPayURL  string
	Privat24URL string
	ReplyDelay  time.Duration
}

// Bot represents the Telegram support bot
type Bot struct {
	api     Sender
	db      storage.CustomerStore
	tickets TicketCreator
	states  StateStore
	limiter *rate.Limiter
	opts    Options
	logger  *zap.Logger
	now     func() time.Time
}
