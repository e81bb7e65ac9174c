package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vroomxtransport/vroomx-backend/pkg/db/types"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
)

// OrderCreatedEvent signals a new transport order entering dispatch.
type OrderCreatedEvent struct {
	OrderID  uuid.UUID       `json:"order_id"`
	BrokerID *uuid.UUID      `json:"broker_id,omitempty"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// OrderStatusChangedEvent is emitted on every advance or rollback.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	TripID     *uuid.UUID        `json:"trip_id,omitempty"`
	FromStatus enums.OrderStatus `json:"from_status"`
	ToStatus   enums.OrderStatus `json:"to_status"`
	Cascaded   bool              `json:"cascaded"`
	ChangedAt  time.Time         `json:"changed_at"`
}

// OrderCanceledEvent carries the mandatory cancellation reason.
type OrderCanceledEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	FromStatus enums.OrderStatus `json:"from_status"`
	Reason     string            `json:"reason"`
	CanceledAt time.Time         `json:"canceled_at"`
}

// OrderAssignedEvent reports an order placed onto a trip, with the
// capacity-utilization snapshot computed at assignment time.
type OrderAssignedEvent struct {
	OrderID      uuid.UUID `json:"order_id"`
	TripID       uuid.UUID `json:"trip_id"`
	Capacity     int       `json:"capacity"`
	Utilization  int       `json:"utilization"`
	OverCapacity bool      `json:"over_capacity"`
}

// OrderUnassignedEvent reports an order removed from a trip and reset to new.
type OrderUnassignedEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	TripID  uuid.UUID `json:"trip_id"`
}

// TripCreatedEvent signals a new trip itinerary.
type TripCreatedEvent struct {
	TripID   uuid.UUID  `json:"trip_id"`
	TruckID  *uuid.UUID `json:"truck_id,omitempty"`
	DriverID *uuid.UUID `json:"driver_id,omitempty"`
}

// TripStatusChangedEvent is emitted on every trip advance or rollback,
// including the ids of orders the cascade moved along.
type TripStatusChangedEvent struct {
	TripID          uuid.UUID        `json:"trip_id"`
	FromStatus      enums.TripStatus `json:"from_status"`
	ToStatus        enums.TripStatus `json:"to_status"`
	CascadedOrders  []uuid.UUID      `json:"cascaded_orders,omitempty"`
	ChangedAt       time.Time        `json:"changed_at"`
}

// TripRouteSavedEvent carries the full sequence that replaced the stored one.
type TripRouteSavedEvent struct {
	TripID   uuid.UUID        `json:"trip_id"`
	Stops    types.RouteStops `json:"stops"`
	Warnings []string         `json:"warnings,omitempty"`
}

// TripFinancialsRecomputedEvent surfaces the refreshed rollups.
type TripFinancialsRecomputedEvent struct {
	TripID          uuid.UUID       `json:"trip_id"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalBrokerFees decimal.Decimal `json:"total_broker_fees"`
	DriverPay       decimal.Decimal `json:"driver_pay"`
	TotalExpenses   decimal.Decimal `json:"total_expenses"`
	NetProfit       decimal.Decimal `json:"net_profit"`
}

// TripExpenseRecordedEvent is emitted for expense create/update/delete.
type TripExpenseRecordedEvent struct {
	ExpenseID uuid.UUID             `json:"expense_id"`
	TripID    uuid.UUID             `json:"trip_id"`
	Category  enums.ExpenseCategory `json:"category"`
	Amount    decimal.Decimal       `json:"amount"`
	Mutation  string                `json:"mutation"`
}
