package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// WebhookSender delivers alerts as JSON over HTTP POST.
type WebhookSender struct {
	httpClient *http.Client
}

// NewWebhookSender creates a webhook sender with a bounded request timeout.
func NewWebhookSender() *WebhookSender {
	return &WebhookSender{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Channel returns the channel name this sender handles.
func (s *WebhookSender) Channel() string {
	return "webhook"
}

// webhookPayload is the wire shape posted to webhook targets.
type webhookPayload struct {
	ID        string `json:"id"`
	Severity  string `json:"severity"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"createdAt"`
}

// Send posts the alert to the target URL and requires a 2xx response.
func (s *WebhookSender) Send(ctx context.Context, target string, alert *storage.Alert) error {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return fmt.Errorf("invalid webhook URL: %q", target)
	}

	payload, err := json.Marshal(webhookPayload{
		ID:        alert.ID,
		Severity:  alert.Severity,
		Title:     alert.Title,
		Body:      alert.Body,
		CreatedAt: alert.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
