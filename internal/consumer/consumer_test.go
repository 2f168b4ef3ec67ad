package consumer

import (
	"context"
	"testing"

	"github.com/mahope/openclaw-mission-control/internal/activity"
	"github.com/mahope/openclaw-mission-control/internal/storage"
)

type fakeIngestor struct{}

func (fakeIngestor) Ingest(ctx context.Context, ev *storage.ActivityEvent) (activity.Outcome, error) {
	return activity.Outcome{EventID: "ev-1"}, nil
}

func TestNewConsumerValidatesConfig(t *testing.T) {
	tests := []struct {
		name    string
		brokers string
		topic   string
		groupID string
		wantErr bool
	}{
		{"valid", "localhost:9092", "activity.events", "mission-control", false},
		{"multiple brokers with spaces", "a:9092, b:9092", "activity.events", "mission-control", false},
		{"missing brokers", "", "activity.events", "mission-control", true},
		{"missing topic", "localhost:9092", "", "mission-control", true},
		{"missing group id", "localhost:9092", "activity.events", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewConsumer(tt.brokers, tt.topic, tt.groupID, fakeIngestor{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewConsumer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if c != nil {
				c.Close()
			}
		})
	}
}
