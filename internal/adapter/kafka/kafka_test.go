package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	event := domain.SimulationEvent{
		ID:             "units_deployed-0a1b2c3d4e5f6071",
		SessionID:      "sess-1",
		Kind:           domain.SimulationUnitsDeployed,
		InitialAQI:     180,
		Added:          []domain.Position{{Lat: 28.61, Lng: 77.21}},
		UnitCount:      26,
		ProjectedAQI:   50,
		TargetAchieved: true,
		OccurredAt:     now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("sess-1"), msg.Key)
	assert.Equal(t, now, msg.Time)
	assert.Contains(t, string(msg.Value), `"kind":"units_deployed"`)
	assert.Contains(t, string(msg.Value), `"target_achieved":true`)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "event_id", msg.Headers[0].Key)
	assert.Equal(t, []byte(event.ID), msg.Headers[0].Value)
	assert.Equal(t, "event_kind", msg.Headers[1].Key)
	assert.Equal(t, []byte("units_deployed"), msg.Headers[1].Value)
	assert.Equal(t, "occurred_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)

	var decoded domain.SimulationEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestSerializeToMessage_ResetOmitsAdded(t *testing.T) {
	event := domain.SimulationEvent{
		ID:         "reset-00",
		SessionID:  "sess-2",
		Kind:       domain.SimulationReset,
		InitialAQI: 95,
		OccurredAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)
	assert.NotContains(t, string(msg.Value), `"added"`)
}
