package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"happylink/internal/errs"
	"happylink/internal/models"
)

// HandleUpdate processes a single update
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}

	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

// handleMessage processes a single message
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage",
				zap.Any("panic", r),
				zap.Int64("chat_id", message.Chat.ID))
			b.sendText(ctx, message.Chat.ID, textError, nil)
		}
	}()

	chatID := message.Chat.ID

	if message.Contact != nil {
		b.handleContact(ctx, message)
		return
	}

	if kind := unsupportedKind(message); kind != "" {
		b.handleUnsupported(ctx, message, kind)
		return
	}

	if message.IsCommand() && message.Command() == "start" {
		b.handleStart(ctx, message)
		return
	}

	stage, err := b.stage(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to resolve conversation stage", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendText(ctx, chatID, textError, nil)
		return
	}

	if stage == models.StageAnonymous {
		b.sendText(ctx, chatID, textAskPhone, phoneKeyboard())
		return
	}

	if message.IsCommand() {
		// Any other command cancels a pending support prompt
		if stage == models.StageAwaitingSupportText {
			b.setStage(ctx, chatID, models.StageIdentified)
		}
		b.sendText(ctx, chatID, textChoose, mainMenu())
		return
	}

	if stage == models.StageAwaitingSupportText {
		b.handleSupportMessage(ctx, message)
		return
	}

	switch message.Text {
	case labelBalance:
		b.handleBalance(ctx, message)
	case labelPayments:
		b.handlePayments(ctx, message)
	case labelPay:
		b.handlePay(ctx, message)
	case labelCabinet:
		b.handleCabinet(ctx, message)
	case labelSupport:
		b.handleSupportStart(ctx, message)
	default:
		b.sendText(ctx, chatID, textChoose, mainMenu())
	}
}

// stage returns the conversation stage of a chat. Without a stored entry the
// chat is identified if the billing database has it linked, so a restart does
// not force customers to share their phone again.
func (b *Bot) stage(ctx context.Context, chatID int64) (models.Stage, error) {
	stage, ok, err := b.states.Get(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("failed to read state: %w", err)
	}
	if ok {
		return stage, nil
	}

	_, err = b.db.CustomerByChat(ctx, chatID)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return models.StageAnonymous, nil
	case err != nil:
		return "", err
	}

	b.setStage(ctx, chatID, models.StageIdentified)
	return models.StageIdentified, nil
}

func (b *Bot) setStage(ctx context.Context, chatID int64, stage models.Stage) {
	if err := b.states.Set(ctx, chatID, stage); err != nil {
		b.logger.Error("Failed to store conversation stage",
			zap.Int64("chat_id", chatID),
			zap.String("stage", string(stage)),
			zap.Error(err))
	}
}

func (b *Bot) clearStage(ctx context.Context, chatID int64) {
	if err := b.states.Delete(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear conversation stage", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// unsupportedKind names the content type of media messages the bot ignores
func unsupportedKind(m *tgbotapi.Message) string {
	switch {
	case m.Animation != nil:
		return "animation"
	case m.Audio != nil:
		return "audio"
	case m.Document != nil:
		return "document"
	case len(m.Photo) > 0:
		return "photo"
	case m.Sticker != nil:
		return "sticker"
	case m.Video != nil:
		return "video"
	case m.VideoNote != nil:
		return "video_note"
	case m.Voice != nil:
		return "voice"
	case m.Location != nil:
		return "location"
	case m.Dice != nil:
		return "dice"
	case m.Poll != nil:
		return "poll"
	}
	return ""
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	// Answer the callback query to remove loading state
	if b.api != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			b.logger.Warn("Failed to answer callback", zap.Error(err))
		}
	}

	if query.Message == nil {
		return
	}

	switch query.Data {
	case callbackRequisites:
		b.handleRequisitesCallback(ctx, query)
	default:
		b.logger.Warn("Unknown callback", zap.String("callback_data", query.Data))
	}
}
