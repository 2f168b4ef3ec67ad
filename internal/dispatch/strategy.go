// Package dispatch delivers queued alerts through configurable channels. It
// routes each alert to a channel sender via a strategy registry and records a
// terminal send outcome per alert.
package dispatch

import (
	"context"

	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// ChannelSender delivers one alert to one target on a specific channel.
type ChannelSender interface {
	// Send delivers the alert. The target format depends on the channel:
	// a chat id for telegram, a URL for webhook, comma-separated addresses
	// for email.
	Send(ctx context.Context, target string, alert *storage.Alert) error

	// Channel returns the channel name this sender handles.
	Channel() string
}

// Registry maps channel names to their senders.
type Registry struct {
	senders map[string]ChannelSender
}

// NewRegistry creates an empty sender registry.
func NewRegistry() *Registry {
	return &Registry{senders: make(map[string]ChannelSender)}
}

// Register adds a sender for its channel.
func (r *Registry) Register(sender ChannelSender) {
	r.senders[sender.Channel()] = sender
}

// Get retrieves a sender by channel name.
func (r *Registry) Get(channel string) (ChannelSender, bool) {
	sender, ok := r.senders[channel]
	return sender, ok
}

// List returns all registered channel names.
func (r *Registry) List() []string {
	channels := make([]string, 0, len(r.senders))
	for c := range r.senders {
		channels = append(channels, c)
	}
	return channels
}
