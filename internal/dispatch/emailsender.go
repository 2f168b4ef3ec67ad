package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/mahope/openclaw-mission-control/internal/dispatch/email"
	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// EmailSender delivers alerts as email through the provider registry.
type EmailSender struct {
	registry *email.Registry
	from     string
}

// NewEmailSender creates an email channel sender. from is the sending
// address.
func NewEmailSender(registry *email.Registry, from string) *EmailSender {
	return &EmailSender{registry: registry, from: from}
}

// Channel returns the channel name this sender handles.
func (s *EmailSender) Channel() string {
	return "email"
}

// Send delivers the alert to the comma-separated target addresses.
func (s *EmailSender) Send(ctx context.Context, target string, alert *storage.Alert) error {
	var to []string
	for _, addr := range strings.Split(target, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	if len(to) == 0 {
		return fmt.Errorf("email target is required")
	}

	return s.registry.Send(ctx, &email.Request{
		From:    s.from,
		To:      to,
		Subject: alert.Title,
		Body:    alert.Body,
	})
}
