package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Telegram sends run summaries to Telegram chats
type Telegram struct {
	api     *tgbotapi.BotAPI
	chatIDs []int64
	logger  *zap.Logger
}

// NewTelegram creates a notifier talking to the public Telegram Bot API
func NewTelegram(token string, chatIDs []int64, logger *zap.Logger) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, tgbotapi.APIEndpoint, chatIDs, logger)
}

// NewTelegramWithEndpoint creates a notifier for a custom Bot API endpoint,
// given as a format string taking the token and the method name
func NewTelegramWithEndpoint(token, endpoint string, chatIDs []int64, logger *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Telegram notifier created",
		zap.String("bot_username", api.Self.UserName),
		zap.Int("chats", len(chatIDs)),
	)

	return &Telegram{
		api:     api,
		chatIDs: chatIDs,
		logger:  logger,
	}, nil
}

// Notify sends the summary to every configured chat. Delivery continues
// past failed chats and the failures are returned together.
func (t *Telegram) Notify(ctx context.Context, summary Summary) error {
	text := summary.Text()

	var errs []error
	for _, chatID := range t.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := t.api.Send(msg); err != nil {
			t.logger.Warn("Failed to send summary",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
			)
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
			continue
		}

		t.logger.Debug("Summary sent", zap.Int64("chat_id", chatID))
	}
	return errors.Join(errs...)
}
