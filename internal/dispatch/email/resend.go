package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// ResendProvider sends email through the Resend API.
type ResendProvider struct {
	client *resend.Client
}

// NewResendProvider creates a Resend provider. The API key is read from
// RESEND_API_KEY; without it the provider reports unconfigured.
func NewResendProvider() *ResendProvider {
	apiKey := envOrDefault("RESEND_API_KEY", "")
	if apiKey == "" {
		slog.Warn("RESEND_API_KEY not set, Resend provider unavailable")
		return &ResendProvider{}
	}
	return &ResendProvider{client: resend.NewClient(apiKey)}
}

// Name returns the provider name.
func (p *ResendProvider) Name() string { return "resend" }

// IsConfigured reports whether an API key was present.
func (p *ResendProvider) IsConfigured() bool { return p.client != nil }

// Send delivers the email via the Resend API.
func (p *ResendProvider) Send(ctx context.Context, req *Request) error {
	if p.client == nil {
		return fmt.Errorf("resend client not initialized")
	}
	if len(req.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	result, err := p.client.Emails.Send(&resend.SendEmailRequest{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		Text:    req.Body,
	})
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	slog.Info("Email sent via Resend", "email_id", result.Id, "to", req.To)
	return nil
}
