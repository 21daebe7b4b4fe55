// Package events publishes pipeline lifecycle events to Redis pub/sub so
// companion tooling can react to batch completions. Publishing is
// best-effort: a missing or unreachable broker never fails a batch.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/recaptools/recap-cli/pkg/logging"
)

// Redis channels for pipeline events.
const (
	ChannelBatchCompleted = "events.recap.batch_completed"
	ChannelItemFailed     = "events.recap.item_failed"
)

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// NewBaseEvent creates a BaseEvent with sensible defaults.
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Source:    "recap",
		Version:   "1.0",
	}
}

// BatchCompletedEvent is published when a batch run finishes.
type BatchCompletedEvent struct {
	BaseEvent

	BatchID        string `json:"batch_id"`
	TotalItems     int    `json:"total_items"`
	SucceededCount int    `json:"succeeded_count"`
	FailedCount    int    `json:"failed_count"`
	AllSucceeded   bool   `json:"all_succeeded"`
	TimingMs       int64  `json:"timing_ms"`
	TotalTokens    int    `json:"total_tokens"`
}

// ItemFailedEvent is published for each failed item.
type ItemFailedEvent struct {
	BaseEvent

	BatchID    string `json:"batch_id,omitempty"`
	Identifier string `json:"identifier"`
	ErrorKind  string `json:"error_kind"`
	Message    string `json:"message"`
}

// Publisher publishes pipeline events to Redis.
type Publisher struct {
	client *redis.Client
	logger logging.Logger
}

// NewPublisher creates an event publisher. A nil client disables
// publishing entirely.
func NewPublisher(client *redis.Client, logger logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Publisher{client: client, logger: logger}
}

// Enabled reports whether a broker is configured.
func (p *Publisher) Enabled() bool {
	return p != nil && p.client != nil
}

// PublishBatchCompleted publishes a batch completion event.
func (p *Publisher) PublishBatchCompleted(ctx context.Context, ev BatchCompletedEvent) error {
	ev.BaseEvent = NewBaseEvent("batch_completed")
	return p.publish(ctx, ChannelBatchCompleted, ev)
}

// PublishItemFailed publishes a per-item failure event.
func (p *Publisher) PublishItemFailed(ctx context.Context, ev ItemFailedEvent) error {
	ev.BaseEvent = NewBaseEvent("item_failed")
	return p.publish(ctx, ChannelItemFailed, ev)
}

func (p *Publisher) publish(ctx context.Context, channel string, payload interface{}) error {
	if !p.Enabled() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		p.logger.Warn("failed to publish event",
			logging.F("channel", channel), logging.Err(err))
		return err
	}

	p.logger.Debug("event published", logging.F("channel", channel))
	return nil
}
