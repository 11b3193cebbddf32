package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/config"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/observability"
)

// EventWriter publishes simulation events to a Kafka topic.
// It implements domain.EventPublisher.
type EventWriter struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewEventWriter creates a Kafka producer for the configured simulation events topic.
func NewEventWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *EventWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.SimEventsTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &EventWriter{writer: w, metrics: metrics, logger: logger}
}

// Publish writes one event keyed by session, so a session's events stay ordered
// within a partition.
func (w *EventWriter) Publish(ctx context.Context, event domain.SimulationEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		w.metrics.SimulationEvents.WithLabelValues(string(event.Kind), "error").Inc()
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.metrics.SimulationEvents.WithLabelValues(string(event.Kind), "error").Inc()
		w.logger.Warn("publish simulation event failed",
			"session", event.SessionID,
			"kind", event.Kind,
			"error", err,
		)
		return fmt.Errorf("publish simulation event: %w", err)
	}
	w.metrics.SimulationEvents.WithLabelValues(string(event.Kind), "published").Inc()
	return nil
}

func (w *EventWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a SimulationEvent into a Kafka message.
func serializeToMessage(event domain.SimulationEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize simulation event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.SessionID),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_kind", Value: []byte(event.Kind)},
			{Key: "occurred_at", Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}
