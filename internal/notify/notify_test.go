package notify

import (
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type mockSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.sent = append(m.sent, msg)
	}
	return tgbotapi.Message{}, m.err
}

func TestTelegramAlert(t *testing.T) {
	sender := &mockSender{}
	n := NewTelegramWithSender(sender, 4242)

	if err := n.Alert("counter 99 posted but not persisted"); err != nil {
		t.Fatalf("Alert: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	if sender.sent[0].ChatID != 4242 {
		t.Errorf("chatID = %d, want 4242", sender.sent[0].ChatID)
	}
	if sender.sent[0].Text != "counter 99 posted but not persisted" {
		t.Errorf("text = %q", sender.sent[0].Text)
	}
}

func TestTelegramAlert_SendError(t *testing.T) {
	sender := &mockSender{err: fmt.Errorf("network down")}
	n := NewTelegramWithSender(sender, 1)

	if err := n.Alert("hello"); err == nil {
		t.Error("expected error when send fails")
	}
}

func TestNewTelegram_RequiresToken(t *testing.T) {
	if _, err := NewTelegram("", 1); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestNopAlert(t *testing.T) {
	if err := (Nop{}).Alert("anything"); err != nil {
		t.Errorf("Nop.Alert: %v", err)
	}
}
