// Package notify alerts the operator about conditions the bot cannot
// fix on its own, most importantly a publish that succeeded without
// its counter landing on disk.
package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers an operator alert.
type Notifier interface {
	Alert(msg string) error
}

// Nop is used when no notification channel is configured; alerts only
// reach the log.
type Nop struct{}

func (Nop) Alert(msg string) error {
	log.Printf("[notify] (no channel configured) %s", msg)
	return nil
}

// TelegramSender is the slice of the telegram bot API the notifier
// uses, so tests can substitute a mock.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends alerts to a fixed operator chat.
type Telegram struct {
	bot    TelegramSender
	chatID int64
}

// NewTelegram connects to the Telegram bot API with the given token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	log.Printf("[notify] telegram authorized as @%s", bot.Self.UserName)
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// NewTelegramWithSender wires a prebuilt sender, for tests.
func NewTelegramWithSender(sender TelegramSender, chatID int64) *Telegram {
	return &Telegram{bot: sender, chatID: chatID}
}

func (t *Telegram) Alert(msg string) error {
	if t.bot == nil {
		return fmt.Errorf("telegram bot not initialized")
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, msg)); err != nil {
		return fmt.Errorf("send telegram alert: %w", err)
	}
	log.Printf("[notify] alert delivered to chat %d", t.chatID)
	return nil
}
