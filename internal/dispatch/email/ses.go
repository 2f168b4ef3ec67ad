package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESProvider sends email through AWS SESv2.
type SESProvider struct {
	client *sesv2.Client
}

// NewSESProvider creates a SES provider using the ambient AWS credential
// chain. A failed config load leaves the provider unconfigured.
func NewSESProvider() *SESProvider {
	region := envOrDefault("AWS_REGION", "us-east-1")
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		slog.Warn("Failed to load AWS config, SES provider unavailable", "error", err)
		return &SESProvider{}
	}
	return &SESProvider{client: sesv2.NewFromConfig(cfg)}
}

// Name returns the provider name.
func (p *SESProvider) Name() string { return "ses" }

// IsConfigured reports whether the AWS config loaded.
func (p *SESProvider) IsConfigured() bool { return p.client != nil }

// Send delivers the email via SES.
func (p *SESProvider) Send(ctx context.Context, req *Request) error {
	if p.client == nil {
		return fmt.Errorf("ses client not initialized")
	}
	if len(req.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: &req.From,
		Destination:      &types.Destination{ToAddresses: req.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &req.Subject},
				Body:    &types.Body{Text: &types.Content{Data: &req.Body}},
			},
		},
	}
	result, err := p.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	slog.Info("Email sent via SES", "message_id", *result.MessageId, "to", req.To)
	return nil
}
