package domain

import "context"

// EventPublisher delivers simulation state transitions to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event SimulationEvent) error
}
