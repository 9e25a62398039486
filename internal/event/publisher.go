// Package event provides event publishing abstractions.
//
// The service layer publishes through Publisher and does not change when
// the broker does. LoggingPublisher suits development, KafkaPublisher
// (kafka.go) is used when brokers are configured.
package event

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mvaleed/catalog/internal/domain"
)

// Publisher is the interface for publishing domain events.
// Implementations can be swapped without changing business logic.
type Publisher interface {
	// Publish sends an event to the message broker.
	Publish(ctx context.Context, event domain.Event) error

	// PublishBatch sends multiple events. Some brokers optimize for batching.
	PublishBatch(ctx context.Context, events []domain.Event) error

	// Close cleanly shuts down the publisher.
	Close() error
}

// LoggingPublisher implements Publisher by logging events.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, event domain.Event) error {
	data, _ := json.Marshal(event.Data)
	p.logger.Info("event published",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("aggregate_id", event.AggregateID.String()),
		slog.String("data", string(data)),
	)
	return nil
}

func (p *LoggingPublisher) PublishBatch(ctx context.Context, events []domain.Event) error {
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (p *LoggingPublisher) Close() error {
	return nil
}

// NoopPublisher is a no-op implementation for when event publishing is disabled.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) Publish(ctx context.Context, event domain.Event) error {
	return nil
}

func (p *NoopPublisher) PublishBatch(ctx context.Context, events []domain.Event) error {
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}

// message is the wire form of an event.
type message struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Timestamp   int64          `json:"timestamp"`
	AggregateID string         `json:"aggregate_id"`
	Data        map[string]any `json:"data"`
}

func encodeEvent(e domain.Event) ([]byte, error) {
	return json.Marshal(message{
		ID:          e.ID.String(),
		Type:        e.Type,
		Timestamp:   e.Timestamp.UnixNano(),
		AggregateID: e.AggregateID.String(),
		Data:        e.Data,
	})
}
