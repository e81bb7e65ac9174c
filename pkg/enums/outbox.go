package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder       OutboxAggregateType = "order"
	AggregateTrip        OutboxAggregateType = "trip"
	AggregateTripExpense OutboxAggregateType = "trip_expense"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateTrip,
	AggregateTripExpense,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated             OutboxEventType = "order_created"
	EventOrderStatusChanged       OutboxEventType = "order_status_changed"
	EventOrderCanceled            OutboxEventType = "order_canceled"
	EventOrderAssigned            OutboxEventType = "order_assigned"
	EventOrderUnassigned          OutboxEventType = "order_unassigned"
	EventTripCreated              OutboxEventType = "trip_created"
	EventTripStatusChanged        OutboxEventType = "trip_status_changed"
	EventTripRouteSaved           OutboxEventType = "trip_route_saved"
	EventTripFinancialsRecomputed OutboxEventType = "trip_financials_recomputed"
	EventTripExpenseRecorded      OutboxEventType = "trip_expense_recorded"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderStatusChanged,
	EventOrderCanceled,
	EventOrderAssigned,
	EventOrderUnassigned,
	EventTripCreated,
	EventTripStatusChanged,
	EventTripRouteSaved,
	EventTripFinancialsRecomputed,
	EventTripExpenseRecorded,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason explains why an outbox row was parked in the DLQ.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
)
