package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"happylink/internal/errs"
	"happylink/internal/models"
	"happylink/internal/ticketapi"
)

// handleSupportStart waits for the next message as a support request
func (b *Bot) handleSupportStart(ctx context.Context, message *tgbotapi.Message) {
	b.setStage(ctx, message.Chat.ID, models.StageAwaitingSupportText)
	b.sendText(ctx, message.Chat.ID, textSupportPrompt, backKeyboard())
}

// handleSupportMessage consumes the message that follows the support prompt:
// the back button returns to the menu, menu labels are refused, anything else
// becomes a ticket.
func (b *Bot) handleSupportMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	if text == labelBack {
		b.setStage(ctx, chatID, models.StageIdentified)
		b.sendText(ctx, chatID, textBackToMenu, mainMenu())
		return
	}

	if menuLabels[text] || text == "" {
		b.sendText(ctx, chatID, textSupportReminder, backKeyboard())
		return
	}

	customer, err := b.db.CustomerByChat(ctx, chatID)
	if errors.Is(err, errs.ErrNotFound) {
		b.clearStage(ctx, chatID)
		b.sendText(ctx, chatID, textNoRecord, phoneKeyboard())
		return
	}
	if err != nil {
		b.logger.Error("Failed to load customer for ticket", zap.Int64("chat_id", chatID), zap.Error(err))
		b.setStage(ctx, chatID, models.StageIdentified)
		b.sendText(ctx, chatID, textError, mainMenu())
		return
	}

	req := ticketapi.NewRequest(customer.ID, b.opts.ReasonID, customer.Phone, text, b.now())
	resp, err := b.tickets.CreateTicket(ctx, req)
	b.setStage(ctx, chatID, models.StageIdentified)
	if err != nil {
		b.logger.Error("Failed to create ticket",
			zap.Int64("chat_id", chatID),
			zap.Int64("customer_id", customer.ID),
			zap.Error(err))
		b.sendText(ctx, chatID, textTicketFailed, mainMenu())
		return
	}

	b.logger.Info("Ticket created",
		zap.Int64("chat_id", chatID),
		zap.Int64("customer_id", customer.ID),
		zap.String("response", resp))
	b.sendHTML(ctx, chatID, textTicketCreated, mainMenu())
}
