package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"beetle-pipeline/internal/domain/port"
)

// Telegram отправляет итоги запусков в чат Telegram
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram авторизует бота; client может быть nil.
func NewTelegram(token string, chatID int64, client tgbotapi.HTTPClient) (*Telegram, error) {
	var (
		api *tgbotapi.BotAPI
		err error
	)
	if client != nil {
		api, err = tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	} else {
		api, err = tgbotapi.NewBotAPI(token)
	}
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}

	return &Telegram{api: api, chatID: chatID}, nil
}

// Notify отправляет текстовое сообщение
func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// Noop используется, когда уведомления не настроены
type Noop struct{}

// Notify ничего не делает
func (Noop) Notify(context.Context, string) error {
	return nil
}

var (
	_ port.Notifier = (*Telegram)(nil)
	_ port.Notifier = Noop{}
)
