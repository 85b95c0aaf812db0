package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sendMessage waits for the reply pace and sends msg. Failures are logged;
// there is nobody left to tell.
func (b *Bot) sendMessage(ctx context.Context, msg tgbotapi.MessageConfig) {
	if b.api == nil {
		return // For testing
	}

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			b.logger.Warn("Reply dropped", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
			return
		}
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
	}
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	b.sendMessage(ctx, msg)
}

func (b *Bot) sendHTML(ctx context.Context, chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	b.sendMessage(ctx, msg)
}

var markdownLinkEscaper = strings.NewReplacer(`\`, `\\`, `)`, `\)`)

// markdownLink builds a MarkdownV2 inline link; label must already be escaped
func markdownLink(label, url string) string {
	return "[" + label + "](" + markdownLinkEscaper.Replace(url) + ")"
}
