package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vroomxtransport/vroomx-backend/pkg/config"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	"github.com/vroomxtransport/vroomx-backend/pkg/outbox"
	"github.com/vroomxtransport/vroomx-backend/pkg/outbox/payloads"
)

func testRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{
		DispatchTopic:   "vx-dispatch-events",
		SettlementTopic: "vx-settlement-events",
	})
	require.NoError(t, err)
	return reg
}

func envelopeBytes(t *testing.T, data any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
	require.NoError(t, err)
	return payload
}

func TestNewEventRegistryRequiresTopics(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{SettlementTopic: "vx-settlement-events"})
	assert.Error(t, err)

	_, err = NewEventRegistry(config.PubSubConfig{DispatchTopic: "vx-dispatch-events"})
	assert.Error(t, err)
}

func TestResolveOrderEventRidesDispatchTopic(t *testing.T) {
	reg := testRegistry(t)
	orderID := uuid.New()

	resolved, err := reg.Resolve(models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload:       envelopeBytes(t, payloads.OrderCreatedEvent{OrderID: orderID}),
	})
	require.NoError(t, err)
	assert.Equal(t, "vx-dispatch-events", resolved.Descriptor.Topic)

	payload, ok := resolved.Payload.(*payloads.OrderCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, orderID, payload.OrderID)
}

func TestResolveFinancialEventRidesSettlementTopic(t *testing.T) {
	reg := testRegistry(t)
	tripID := uuid.New()

	resolved, err := reg.Resolve(models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventTripFinancialsRecomputed,
		AggregateType: enums.AggregateTrip,
		AggregateID:   tripID,
		Payload:       envelopeBytes(t, payloads.TripFinancialsRecomputedEvent{TripID: tripID}),
	})
	require.NoError(t, err)
	assert.Equal(t, "vx-settlement-events", resolved.Descriptor.Topic)
}

func TestResolveUnknownEventTypeIsNonRetryable(t *testing.T) {
	reg := testRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.OutboxEventType("order_archived"),
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       envelopeBytes(t, payloads.OrderCreatedEvent{}),
	})
	var nonRetryable NonRetryableError
	assert.True(t, errors.As(err, &nonRetryable))
}

func TestResolveAggregateMismatchIsNonRetryable(t *testing.T) {
	reg := testRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateTrip,
		AggregateID:   uuid.New(),
		Payload:       envelopeBytes(t, payloads.OrderCreatedEvent{}),
	})
	var nonRetryable NonRetryableError
	assert.True(t, errors.As(err, &nonRetryable))
}

func TestResolveNullDataIsNonRetryable(t *testing.T) {
	reg := testRegistry(t)

	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version: 1,
		EventID: uuid.NewString(),
		Data:    json.RawMessage("null"),
	})
	require.NoError(t, err)

	_, err = reg.Resolve(models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       payload,
	})
	var nonRetryable NonRetryableError
	assert.True(t, errors.As(err, &nonRetryable))
}

func TestResolveMalformedEnvelopeIsNonRetryable(t *testing.T) {
	reg := testRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":`),
	})
	var nonRetryable NonRetryableError
	assert.True(t, errors.As(err, &nonRetryable))
}
