// Package email sends alert emails through interchangeable providers. A
// registry picks the first configured provider, preferring the primary.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Request is one email to deliver.
type Request struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Provider is one email backend.
type Provider interface {
	// Name returns the provider name ("resend", "ses").
	Name() string

	// Send delivers the email through this provider.
	Send(ctx context.Context, req *Request) error

	// IsConfigured reports whether the provider can actually send.
	IsConfigured() bool
}

// Registry holds the available providers in registration order.
type Registry struct {
	providers []Provider
	primary   string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a provider.
func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
	slog.Info("Registered email provider", "name", p.Name(), "configured", p.IsConfigured())
}

// SetPrimary names the preferred provider.
func (r *Registry) SetPrimary(name string) {
	r.primary = name
}

// Pick returns the provider to use: the primary when configured, otherwise
// the first configured provider in registration order.
func (r *Registry) Pick() (Provider, error) {
	for _, p := range r.providers {
		if p.Name() == r.primary && p.IsConfigured() {
			return p, nil
		}
	}
	for _, p := range r.providers {
		if p.IsConfigured() {
			if r.primary != "" {
				slog.Warn("Primary email provider not configured, using fallback",
					"primary", r.primary, "fallback", p.Name())
			}
			return p, nil
		}
	}
	return nil, fmt.Errorf("no configured email provider available")
}

// Send delivers the email using the picked provider. On failure every other
// configured provider is tried once before giving up.
func (r *Registry) Send(ctx context.Context, req *Request) error {
	primary, err := r.Pick()
	if err != nil {
		return err
	}

	sendErr := primary.Send(ctx, req)
	if sendErr == nil {
		return nil
	}
	for _, p := range r.providers {
		if p.Name() == primary.Name() || !p.IsConfigured() {
			continue
		}
		slog.Warn("Email provider failed, trying fallback",
			"failed", primary.Name(), "fallback", p.Name(), "error", sendErr)
		if err := p.Send(ctx, req); err == nil {
			return nil
		}
	}
	return sendErr
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
