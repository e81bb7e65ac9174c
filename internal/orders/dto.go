package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
)

// CreateOrderInput carries the fields accepted when registering a new order.
// Every order starts in status new with no trip reference.
type CreateOrderInput struct {
	BrokerID              *uuid.UUID
	VehicleYear           *int
	VehicleMake           *string
	VehicleModel          *string
	VehicleVIN            *string
	Revenue               decimal.Decimal
	CarrierPay            decimal.Decimal
	BrokerFee             decimal.Decimal
	LocalFee              decimal.Decimal
	DistanceMiles         decimal.NullDecimal
	PickupLocation        *string
	PickupCity            *string
	PickupState           *string
	PickupZip             *string
	PickupContact         *string
	DeliveryLocation      *string
	DeliveryCity          *string
	DeliveryState         *string
	DeliveryZip           *string
	DeliveryContact       *string
	ScheduledPickupDate   *time.Time
	ScheduledDeliveryDate *time.Time
	Notes                 *string
}

// OrderFilters narrows order listings.
type OrderFilters struct {
	Status *enums.OrderStatus
	TripID *uuid.UUID
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order
	NextCursor *string
}

// OrderView is the API shape of a single order.
type OrderView struct {
	ID                    uuid.UUID         `json:"id"`
	Status                enums.OrderStatus `json:"status"`
	BrokerID              *uuid.UUID        `json:"broker_id,omitempty"`
	DriverID              *uuid.UUID        `json:"driver_id,omitempty"`
	TripID                *uuid.UUID        `json:"trip_id,omitempty"`
	VehicleYear           *int              `json:"vehicle_year,omitempty"`
	VehicleMake           *string           `json:"vehicle_make,omitempty"`
	VehicleModel          *string           `json:"vehicle_model,omitempty"`
	VehicleVIN            *string           `json:"vehicle_vin,omitempty"`
	Revenue               decimal.Decimal   `json:"revenue"`
	CarrierPay            decimal.Decimal   `json:"carrier_pay"`
	BrokerFee             decimal.Decimal   `json:"broker_fee"`
	LocalFee              decimal.Decimal   `json:"local_fee"`
	DistanceMiles         *decimal.Decimal  `json:"distance_miles,omitempty"`
	PickupLocation        *string           `json:"pickup_location,omitempty"`
	PickupCity            *string           `json:"pickup_city,omitempty"`
	PickupState           *string           `json:"pickup_state,omitempty"`
	PickupZip             *string           `json:"pickup_zip,omitempty"`
	PickupContact         *string           `json:"pickup_contact,omitempty"`
	DeliveryLocation      *string           `json:"delivery_location,omitempty"`
	DeliveryCity          *string           `json:"delivery_city,omitempty"`
	DeliveryState         *string           `json:"delivery_state,omitempty"`
	DeliveryZip           *string           `json:"delivery_zip,omitempty"`
	DeliveryContact       *string           `json:"delivery_contact,omitempty"`
	ScheduledPickupDate   *time.Time        `json:"scheduled_pickup_date,omitempty"`
	ScheduledDeliveryDate *time.Time        `json:"scheduled_delivery_date,omitempty"`
	ActualPickupDate      *time.Time        `json:"actual_pickup_date,omitempty"`
	ActualDeliveryDate    *time.Time        `json:"actual_delivery_date,omitempty"`
	CancelReason          *string           `json:"cancel_reason,omitempty"`
	Notes                 *string           `json:"notes,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// OrderPage is the paged API listing.
type OrderPage struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// NewOrderView maps a stored order onto its API shape.
func NewOrderView(order models.Order) OrderView {
	view := OrderView{
		ID:                    order.ID,
		Status:                order.Status,
		BrokerID:              order.BrokerID,
		DriverID:              order.DriverID,
		TripID:                order.TripID,
		VehicleYear:           order.VehicleYear,
		VehicleMake:           order.VehicleMake,
		VehicleModel:          order.VehicleModel,
		VehicleVIN:            order.VehicleVIN,
		Revenue:               order.Revenue,
		CarrierPay:            order.CarrierPay,
		BrokerFee:             order.BrokerFee,
		LocalFee:              order.LocalFee,
		PickupLocation:        order.PickupLocation,
		PickupCity:            order.PickupCity,
		PickupState:           order.PickupState,
		PickupZip:             order.PickupZip,
		PickupContact:         order.PickupContact,
		DeliveryLocation:      order.DeliveryLocation,
		DeliveryCity:          order.DeliveryCity,
		DeliveryState:         order.DeliveryState,
		DeliveryZip:           order.DeliveryZip,
		DeliveryContact:       order.DeliveryContact,
		ScheduledPickupDate:   order.ScheduledPickupDate,
		ScheduledDeliveryDate: order.ScheduledDeliveryDate,
		ActualPickupDate:      order.ActualPickupDate,
		ActualDeliveryDate:    order.ActualDeliveryDate,
		CancelReason:          order.CancelReason,
		Notes:                 order.Notes,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
	if order.DistanceMiles.Valid {
		miles := order.DistanceMiles.Decimal
		view.DistanceMiles = &miles
	}
	return view
}

// NewOrderPage maps a repository page onto its API shape.
func NewOrderPage(list OrderList) OrderPage {
	page := OrderPage{Orders: make([]OrderView, 0, len(list.Orders))}
	for _, order := range list.Orders {
		page.Orders = append(page.Orders, NewOrderView(order))
	}
	if list.NextCursor != nil {
		page.NextCursor = *list.NextCursor
	}
	return page
}
