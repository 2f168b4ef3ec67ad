// Package consumer provides the optional Kafka ingest path for activity
// events. Producers publish JSON events to a topic; the consumer normalizes
// and ingests them with at-least-once semantics.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mahope/openclaw-mission-control/internal/activity"
	"github.com/mahope/openclaw-mission-control/internal/storage"
)

const (
	maxPollWait    = 500 * time.Millisecond
	commitInterval = 0 // synchronous commits
)

// Ingestor accepts normalized activity events.
type Ingestor interface {
	Ingest(ctx context.Context, ev *storage.ActivityEvent) (activity.Outcome, error)
}

// Consumer reads activity events from Kafka and feeds them to the ingestor.
type Consumer struct {
	reader   *kafka.Reader
	ingestor Ingestor
	topic    string
}

// NewConsumer creates a consumer for the given comma-separated broker list.
func NewConsumer(brokers, topic, groupID string, ingestor Ingestor) (*Consumer, error) {
	if brokers == "" {
		return nil, fmt.Errorf("brokers cannot be empty")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if groupID == "" {
		return nil, fmt.Errorf("groupID cannot be empty")
	}

	brokerList := strings.Split(brokers, ",")
	for i := range brokerList {
		brokerList[i] = strings.TrimSpace(brokerList[i])
	}

	slog.Info("Initializing Kafka consumer", "brokers", brokerList, "topic", topic, "group_id", groupID)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokerList,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        maxPollWait,
		CommitInterval: commitInterval,
		StartOffset:    kafka.FirstOffset,
	})

	return &Consumer{reader: reader, ingestor: ingestor, topic: topic}, nil
}

// Run consumes until ctx is done. A malformed message is logged, committed,
// and skipped; an ingest failure leaves the offset uncommitted, so the event
// is redelivered after a restart or group rebalance.
func (c *Consumer) Run(ctx context.Context) error {
	slog.Info("Kafka consumer running", "topic", c.topic)
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		var ev storage.ActivityEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			slog.Warn("Skipping malformed activity event message", "offset", msg.Offset, "error", err)
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				slog.Error("Failed to commit skipped message", "offset", msg.Offset, "error", err)
			}
			continue
		}

		activity.Normalize(&ev, time.Now())
		outcome, err := c.ingestor.Ingest(ctx, &ev)
		if err != nil {
			slog.Error("Failed to ingest activity event from Kafka", "offset", msg.Offset, "error", err)
			continue
		}
		if outcome.AlertErr != nil || outcome.IndexErr != nil {
			slog.Warn("Activity event ingested with partial side effects",
				"event_id", outcome.EventID, "alert_err", outcome.AlertErr, "index_err", outcome.IndexErr)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			slog.Error("Failed to commit message", "offset", msg.Offset, "error", err)
		}
	}
}

// Close releases the Kafka reader.
func (c *Consumer) Close() error {
	slog.Info("Closing Kafka consumer", "topic", c.topic)
	return c.reader.Close()
}
