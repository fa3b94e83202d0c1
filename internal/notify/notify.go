// Package notify delivers availability changes as Telegram direct messages.
package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends messages to a single configured chat.
type Notifier struct {
	api    telegramAPI
	chatID int64
	log    *slog.Logger
}

// New creates a Notifier with the given Telegram token and target chat.
func New(token string, chatID int64, log *slog.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Notifier{api: api, chatID: chatID, log: log}, nil
}

// NewWithAPI creates a Notifier over a custom API (useful for testing).
func NewWithAPI(api telegramAPI, chatID int64, log *slog.Logger) *Notifier {
	return &Notifier{api: api, chatID: chatID, log: log}
}

// SendMessage sends a text message to the configured chat.
func (n *Notifier) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	n.log.Debug("sent notification", "chat_id", n.chatID, "length", len(text))
	return nil
}
