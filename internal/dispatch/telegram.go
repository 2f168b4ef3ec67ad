package dispatch

import (
	"context"
	"fmt"

	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// Messenger sends a message through the openclaw messaging CLI.
type Messenger interface {
	SendMessage(ctx context.Context, channel, target, message string) error
}

// TelegramSender delivers alerts as telegram messages via the openclaw
// messenger.
type TelegramSender struct {
	messenger Messenger
}

// NewTelegramSender creates a telegram sender.
func NewTelegramSender(messenger Messenger) *TelegramSender {
	return &TelegramSender{messenger: messenger}
}

// Channel returns the channel name this sender handles.
func (s *TelegramSender) Channel() string {
	return "telegram"
}

// Send delivers the alert title and body as one message to the target chat.
func (s *TelegramSender) Send(ctx context.Context, target string, alert *storage.Alert) error {
	if target == "" {
		return fmt.Errorf("telegram target is required")
	}
	message := alert.Title + "\n\n" + alert.Body
	return s.messenger.SendMessage(ctx, "telegram", target, message)
}
