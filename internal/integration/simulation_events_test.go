//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/adapter/kafka"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/config"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/observability"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/view"
)

const testEventsTopic = "test-simulation-events"

type publishedEvent struct {
	Event   domain.SimulationEvent
	Key     string
	Headers map[string]string
}

func readEvent(ctx context.Context, t *testing.T, r *kafkago.Reader) publishedEvent {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := r.ReadMessage(readCtx)
	require.NoError(t, err, "read simulation event")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.SimulationEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	return publishedEvent{Event: event, Key: string(msg.Key), Headers: headers}
}

// TestSimulationEventsReachKafka drives the simulator through the view service
// and checks that every transition lands on the topic in order.
func TestSimulationEventsReachKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testEventsTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, SimEventsTopic: testEventsTopic}
	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()

	writer := kafka.NewEventWriter(cfg, metrics, logger)
	defer writer.Close()

	store := view.NewStore(time.Hour, metrics, logger)
	svc := view.NewService(nil, store, metrics, logger, view.WithPublisher(writer))

	sess := store.Create()
	svc.ResetSimulation(ctx, sess, "80")
	svc.PlaceUnit(ctx, sess, domain.DefaultAnchor)
	final := svc.AutoDeploy(ctx, sess)
	require.True(t, final.TargetAchieved)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testEventsTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	defer reader.Close()

	reset := readEvent(ctx, t, reader)
	assert.Equal(t, sess.ID, reset.Key)
	assert.Equal(t, domain.SimulationReset, reset.Event.Kind)
	assert.Equal(t, string(domain.SimulationReset), reset.Headers["event_kind"])
	assert.Equal(t, reset.Event.ID, reset.Headers["event_id"])
	assert.InDelta(t, 80.0, reset.Event.InitialAQI, 1e-9)

	placed := readEvent(ctx, t, reader)
	assert.Equal(t, domain.SimulationUnitPlaced, placed.Event.Kind)
	assert.Equal(t, 1, placed.Event.UnitCount)
	assert.InDelta(t, 75.0, placed.Event.ProjectedAQI, 1e-9)

	deployed := readEvent(ctx, t, reader)
	assert.Equal(t, domain.SimulationUnitsDeployed, deployed.Event.Kind)
	assert.Len(t, deployed.Event.Added, 5)
	assert.Equal(t, 6, deployed.Event.UnitCount)
	assert.True(t, deployed.Event.TargetAchieved)
}
