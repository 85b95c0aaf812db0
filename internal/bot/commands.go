package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"happylink/internal/models"
)

// paymentsLimit is how many payments the history shows
const paymentsLimit = 12

// handleStart asks for the phone number. A pending support prompt is dropped.
func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if stage, ok, err := b.states.Get(ctx, chatID); err == nil && ok && stage == models.StageAwaitingSupportText {
		b.setStage(ctx, chatID, models.StageIdentified)
	}

	b.sendText(ctx, chatID, textAskPhone, phoneKeyboard())
	b.logger.Info("Start command", zap.Int64("chat_id", chatID))
}

// handleContact links the chat to the customer owning the shared phone.
// Only the sender's own contact card is accepted.
func (b *Bot) handleContact(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	contact := message.Contact

	if message.From == nil || contact.UserID != message.From.ID {
		b.logger.Warn("Rejected foreign contact", zap.Int64("chat_id", chatID))
		b.sendText(ctx, chatID, textOwnPhone, phoneKeyboard())
		return
	}

	b.logger.Info("Phone number received", zap.Int64("chat_id", chatID))

	linked, err := b.db.LinkChatByPhone(ctx, contact.PhoneNumber, chatID)
	if err != nil {
		b.logger.Error("Failed to link chat by phone", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendText(ctx, chatID, textError, nil)
		return
	}
	if !linked {
		b.logger.Info("Phone number not found", zap.Int64("chat_id", chatID))
		b.sendText(ctx, chatID, textNotFound, phoneKeyboard())
		return
	}

	b.setStage(ctx, chatID, models.StageIdentified)
	b.sendHTML(ctx, chatID, textFound, mainMenu())
}

// handleUnsupported answers media messages with a hint and a /start button
func (b *Bot) handleUnsupported(ctx context.Context, message *tgbotapi.Message, kind string) {
	b.sendText(ctx, message.Chat.ID, textUnsupported, startKeyboard())
	b.logger.Info("Unsupported message type",
		zap.Int64("chat_id", message.Chat.ID),
		zap.String("content_type", kind))
}

// handleBalance shows balance, active plans and address per agreement
func (b *Bot) handleBalance(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	lines, err := b.db.BalanceByChat(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to load balance", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendText(ctx, chatID, textError, nil)
		return
	}
	if len(lines) == 0 {
		b.sendHTML(ctx, chatID, textNoServices, nil)
		return
	}

	b.sendHTML(ctx, chatID, balanceMessage(lines), nil)
}

// handlePayments shows the latest payments
func (b *Bot) handlePayments(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	payments, err := b.db.PaymentsByChat(ctx, chatID, paymentsLimit)
	if err != nil {
		b.logger.Error("Failed to load payments", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendText(ctx, chatID, textError, nil)
		return
	}
	if len(payments) == 0 {
		b.sendText(ctx, chatID, textNoPayments, nil)
		return
	}

	b.sendHTML(ctx, chatID, paymentsMessage(payments), nil)
}

// handlePay offers the payment providers and the bank requisites
func (b *Bot) handlePay(ctx context.Context, message *tgbotapi.Message) {
	msg := tgbotapi.NewMessage(message.Chat.ID, textPay)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyMarkup = b.payMenu()
	b.sendMessage(ctx, msg)

	b.logger.Info("Pay menu opened", zap.Int64("chat_id", message.Chat.ID))
}

// handleCabinet links to the customer portal
func (b *Bot) handleCabinet(ctx context.Context, message *tgbotapi.Message) {
	text := "Натисніть на посилання, щоб відкрити:\n " + markdownLink("👤 особистий кабінет", b.opts.PortalURL)

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	b.sendMessage(ctx, msg)

	b.logger.Info("Cabinet link sent", zap.Int64("chat_id", message.Chat.ID))
}
