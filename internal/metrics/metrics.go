// Package metrics tracks operational counters for the core and publishes
// periodic snapshots to Redis, where the HTTP API reads them back.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyPrefix is the Redis key prefix for service snapshots.
	KeyPrefix = "metrics:"
	// SnapshotTTL is how long a snapshot stays in Redis unrefreshed.
	SnapshotTTL = 2 * time.Minute
	// DefaultReportInterval is the default snapshot write cadence.
	DefaultReportInterval = 30 * time.Second
)

// Snapshot is one service's published counters.
type Snapshot struct {
	ServiceName string    `json:"service_name"`
	StartedAt   time.Time `json:"started_at"`
	LastUpdated time.Time `json:"last_updated"`
	Status      string    `json:"status"` // "healthy" or "unhealthy"

	EventsIngested    uint64 `json:"events_ingested"`
	EventsDeduped     uint64 `json:"events_deduped"`
	AlertsQueued      uint64 `json:"alerts_queued"`
	AlertsSent        uint64 `json:"alerts_sent"`
	AlertSendErrors   uint64 `json:"alert_send_errors"`
	SchedulesUpserted uint64 `json:"schedules_upserted"`
	SearchWrites      uint64 `json:"search_writes"`
	WorkspaceDocs     uint64 `json:"workspace_docs"`
	HTTPRequests      uint64 `json:"http_requests"`
}

// Collector accumulates counters and writes periodic snapshots. A nil Redis
// client disables publishing but keeps the counters usable.
type Collector struct {
	serviceName    string
	redis          *redis.Client
	startedAt      time.Time
	reportInterval time.Duration

	eventsIngested    atomic.Uint64
	eventsDeduped     atomic.Uint64
	alertsQueued      atomic.Uint64
	alertsSent        atomic.Uint64
	alertSendErrors   atomic.Uint64
	schedulesUpserted atomic.Uint64
	searchWrites      atomic.Uint64
	workspaceDocs     atomic.Uint64
	httpRequests      atomic.Uint64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCollector creates a collector for the named service.
func NewCollector(serviceName string, redisClient *redis.Client) *Collector {
	return &Collector{
		serviceName:    serviceName,
		redis:          redisClient,
		startedAt:      time.Now().UTC(),
		reportInterval: DefaultReportInterval,
		stopCh:         make(chan struct{}),
	}
}

// SetReportInterval overrides the snapshot write cadence.
func (c *Collector) SetReportInterval(interval time.Duration) {
	c.reportInterval = interval
}

// Start begins periodic snapshot publishing until ctx is done or Stop is
// called. A final snapshot is written on shutdown.
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.publish(context.Background())
				return
			case <-c.stopCh:
				c.publish(context.Background())
				return
			case <-ticker.C:
				c.publish(ctx)
			}
		}
	}()
}

// Stop halts publishing after one final snapshot write.
func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

// RecordEventIngested counts one stored activity event.
func (c *Collector) RecordEventIngested() { c.eventsIngested.Add(1) }

// RecordEventDeduped counts one submission collapsed onto an existing event.
func (c *Collector) RecordEventDeduped() { c.eventsDeduped.Add(1) }

// RecordAlertQueued counts one newly queued alert.
func (c *Collector) RecordAlertQueued() { c.alertsQueued.Add(1) }

// RecordAlertSent counts one delivered alert.
func (c *Collector) RecordAlertSent() { c.alertsSent.Add(1) }

// RecordAlertSendError counts one failed delivery attempt.
func (c *Collector) RecordAlertSendError() { c.alertSendErrors.Add(1) }

// AddSchedulesUpserted counts schedule rows written in one refresh pass.
func (c *Collector) AddSchedulesUpserted(n int) {
	if n > 0 {
		c.schedulesUpserted.Add(uint64(n))
	}
}

// RecordSearchWrite counts one search projection write.
func (c *Collector) RecordSearchWrite() { c.searchWrites.Add(1) }

// AddWorkspaceDocs counts doc chunks written in one index pass.
func (c *Collector) AddWorkspaceDocs(n int) {
	if n > 0 {
		c.workspaceDocs.Add(uint64(n))
	}
}

// RecordHTTPRequest counts one handled HTTP request.
func (c *Collector) RecordHTTPRequest() { c.httpRequests.Add(1) }

// GetSnapshot returns the current counters without publishing.
func (c *Collector) GetSnapshot() *Snapshot {
	return &Snapshot{
		ServiceName:       c.serviceName,
		StartedAt:         c.startedAt,
		LastUpdated:       time.Now().UTC(),
		Status:            "healthy",
		EventsIngested:    c.eventsIngested.Load(),
		EventsDeduped:     c.eventsDeduped.Load(),
		AlertsQueued:      c.alertsQueued.Load(),
		AlertsSent:        c.alertsSent.Load(),
		AlertSendErrors:   c.alertSendErrors.Load(),
		SchedulesUpserted: c.schedulesUpserted.Load(),
		SearchWrites:      c.searchWrites.Load(),
		WorkspaceDocs:     c.workspaceDocs.Load(),
		HTTPRequests:      c.httpRequests.Load(),
	}
}

func (c *Collector) publish(ctx context.Context) {
	if c.redis == nil {
		return
	}
	snapshot := c.GetSnapshot()
	data, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("Failed to marshal metrics snapshot", "service", c.serviceName, "error", err)
		return
	}
	key := KeyPrefix + c.serviceName
	if err := c.redis.Set(ctx, key, data, SnapshotTTL).Err(); err != nil {
		slog.Error("Failed to write metrics snapshot", "service", c.serviceName, "error", err)
	}
}

// Reader reads published snapshots back from Redis.
type Reader struct {
	redis *redis.Client
}

// NewReader creates a metrics reader.
func NewReader(redisClient *redis.Client) *Reader {
	return &Reader{redis: redisClient}
}

// GetServiceMetrics retrieves the snapshot for one service. A snapshot older
// than the TTL reads back as unhealthy.
func (r *Reader) GetServiceMetrics(ctx context.Context, serviceName string) (*Snapshot, error) {
	data, err := r.redis.Get(ctx, KeyPrefix+serviceName).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("no metrics found for service: %s", serviceName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	if time.Since(snapshot.LastUpdated) > SnapshotTTL {
		snapshot.Status = "unhealthy"
	}
	return &snapshot, nil
}

// GetAllServiceMetrics retrieves every published snapshot.
func (r *Reader) GetAllServiceMetrics(ctx context.Context) (map[string]*Snapshot, error) {
	keys, err := r.redis.Keys(ctx, KeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics keys: %w", err)
	}

	result := make(map[string]*Snapshot)
	for _, key := range keys {
		serviceName := key[len(KeyPrefix):]
		snapshot, err := r.GetServiceMetrics(ctx, serviceName)
		if err != nil {
			slog.Warn("Failed to read metrics for service", "service", serviceName, "error", err)
			continue
		}
		result[serviceName] = snapshot
	}
	return result, nil
}

// ConnectRedis creates and validates a Redis connection.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}
