package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleRequisitesCallback sends the bank transfer details
func (b *Bot) handleRequisitesCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID

	b.sendHTML(ctx, chatID, textRequisites, nil)
	b.logger.Info("Requisites sent", zap.Int64("chat_id", chatID))
}
