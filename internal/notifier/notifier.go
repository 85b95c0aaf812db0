package notifier

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"happylink/internal/errs"
	"happylink/internal/storage"
)

// Sender is the part of the Telegram client the notifier uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Options struct {
	ChatID       int64
	AgreementURL string
	QuestionsURL string
}

// Notifier forwards the newest ticket due today to the staff chat, once
type Notifier struct {
	store  storage.TicketStore
	sender Sender
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

func New(store storage.TicketStore, sender Sender, opts Options, logger *zap.Logger) *Notifier {
	return &Notifier{
		store:  store,
		sender: sender,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Run delivers the latest ticket due today if it has not been delivered yet.
// The ticket is claimed before sending and released if the send fails, so two
// overlapping runs never deliver the same ticket. It reports whether a message
// was sent.
func (n *Notifier) Run(ctx context.Context) (bool, error) {
	now := n.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	ticket, err := n.store.LatestTicketDue(ctx, dayStart, dayEnd)
	if errors.Is(err, errs.ErrNotFound) {
		n.logger.Info("No tickets due today")
		return false, nil
	}
	if err != nil {
		n.logger.Error("Failed to load latest ticket", zap.Error(err))
		return false, err
	}

	log := n.logger.With(zap.Int64("ticket_id", ticket.ID))
	if ticket.Sent {
		log.Info("Latest ticket already sent")
		return false, nil
	}

	claimed, err := n.store.ClaimTicket(ctx, ticket.ID)
	if err != nil {
		log.Error("Failed to claim ticket", zap.Error(err))
		return false, err
	}
	if !claimed {
		log.Info("Ticket claimed by another run", zap.Error(errs.ErrAlreadySent))
		return false, nil
	}

	msg := tgbotapi.NewMessage(n.opts.ChatID, FormatTicket(ticket, n.opts.AgreementURL))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Все заявки", QuestionsLink(n.opts.QuestionsURL, ticket.DestTime)),
		),
	)

	if _, err := n.sender.Send(msg); err != nil {
		log.Error("Failed to send ticket", zap.Error(err))
		if relErr := n.store.ReleaseTicket(ctx, ticket.ID); relErr != nil {
			log.Error("Failed to release ticket claim", zap.Error(relErr))
		}
		return false, errs.Transport("send ticket", err)
	}

	log.Info("Ticket sent", zap.Int64("chat_id", n.opts.ChatID))
	return true, nil
}
