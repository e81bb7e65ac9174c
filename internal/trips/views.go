package trips

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vroomxtransport/vroomx-backend/internal/expenses"
	"github.com/vroomxtransport/vroomx-backend/internal/orders"
	"github.com/vroomxtransport/vroomx-backend/internal/routing"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/types"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
)

// TruckSummary is the truck slice of a trip view. Capacity derives from the
// truck type, it is never stored.
type TruckSummary struct {
	ID         uuid.UUID       `json:"id"`
	UnitNumber string          `json:"unit_number"`
	Type       enums.TruckType `json:"type"`
	Capacity   int             `json:"capacity"`
}

// DriverSummary is the driver slice of a trip view.
type DriverSummary struct {
	ID      uuid.UUID           `json:"id"`
	Name    string              `json:"name"`
	PayType enums.DriverPayType `json:"pay_type"`
}

// TripView is the API shape of a single trip row.
type TripView struct {
	ID              uuid.UUID        `json:"id"`
	TripNumber      *string          `json:"trip_number,omitempty"`
	Status          enums.TripStatus `json:"status"`
	TruckID         *uuid.UUID       `json:"truck_id,omitempty"`
	DriverID        *uuid.UUID       `json:"driver_id,omitempty"`
	StartDate       *time.Time       `json:"start_date,omitempty"`
	EndDate         *time.Time       `json:"end_date,omitempty"`
	TotalRevenue    decimal.Decimal  `json:"total_revenue"`
	CarrierPay      decimal.Decimal  `json:"carrier_pay"`
	TotalBrokerFees decimal.Decimal  `json:"total_broker_fees"`
	DriverPay       decimal.Decimal  `json:"driver_pay"`
	TotalExpenses   decimal.Decimal  `json:"total_expenses"`
	NetProfit       decimal.Decimal  `json:"net_profit"`
	Notes           *string          `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// RoutePayload is the reconciled route as served over HTTP.
type RoutePayload struct {
	Stops    types.RouteStops  `json:"stops"`
	Stale    bool              `json:"stale"`
	Warnings []routing.Warning `json:"warnings,omitempty"`
}

// TripDetailView is the full trip read: associations, reconciled route, and
// the capacity picture.
type TripDetailView struct {
	TripView
	Truck        *TruckSummary          `json:"truck,omitempty"`
	Driver       *DriverSummary         `json:"driver,omitempty"`
	Orders       []orders.OrderView     `json:"orders"`
	Expenses     []expenses.ExpenseView `json:"expenses"`
	Route        RoutePayload           `json:"route"`
	Capacity     int                    `json:"capacity"`
	Utilization  int                    `json:"utilization"`
	OverCapacity bool                   `json:"over_capacity"`
}

// TripPage is the paged API listing.
type TripPage struct {
	Trips      []TripView `json:"trips"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NewTripView maps a stored trip onto its API shape.
func NewTripView(trip models.Trip) TripView {
	return TripView{
		ID:              trip.ID,
		TripNumber:      trip.TripNumber,
		Status:          trip.Status,
		TruckID:         trip.TruckID,
		DriverID:        trip.DriverID,
		StartDate:       trip.StartDate,
		EndDate:         trip.EndDate,
		TotalRevenue:    trip.TotalRevenue,
		CarrierPay:      trip.CarrierPay,
		TotalBrokerFees: trip.TotalBrokerFees,
		DriverPay:       trip.DriverPay,
		TotalExpenses:   trip.TotalExpenses,
		NetProfit:       trip.NetProfit,
		Notes:           trip.Notes,
		CreatedAt:       trip.CreatedAt,
		UpdatedAt:       trip.UpdatedAt,
	}
}

// NewRoutePayload maps the reconciled route onto its API shape.
func NewRoutePayload(route RouteView) RoutePayload {
	return RoutePayload{
		Stops:    route.Stops,
		Stale:    route.Stale,
		Warnings: route.Warnings,
	}
}

// NewTripDetailView maps the full trip read model onto its API shape.
func NewTripDetailView(detail TripDetail) TripDetailView {
	view := TripDetailView{
		TripView:     NewTripView(detail.Trip),
		Orders:       make([]orders.OrderView, 0, len(detail.Trip.Orders)),
		Expenses:     make([]expenses.ExpenseView, 0, len(detail.Trip.Expenses)),
		Route:        NewRoutePayload(detail.Route),
		Capacity:     detail.Capacity,
		Utilization:  detail.Utilization,
		OverCapacity: detail.OverCapacity,
	}
	if detail.Trip.Truck != nil {
		view.Truck = &TruckSummary{
			ID:         detail.Trip.Truck.ID,
			UnitNumber: detail.Trip.Truck.UnitNumber,
			Type:       detail.Trip.Truck.Type,
			Capacity:   detail.Trip.Truck.Type.MaxVehicles(),
		}
	}
	if detail.Trip.Driver != nil {
		view.Driver = &DriverSummary{
			ID:      detail.Trip.Driver.ID,
			Name:    detail.Trip.Driver.Name,
			PayType: detail.Trip.Driver.PayType,
		}
	}
	for _, order := range detail.Trip.Orders {
		view.Orders = append(view.Orders, orders.NewOrderView(order))
	}
	for _, expense := range detail.Trip.Expenses {
		view.Expenses = append(view.Expenses, expenses.NewExpenseView(expense))
	}
	return view
}

// NewTripPage maps a repository page onto its API shape.
func NewTripPage(list TripList) TripPage {
	page := TripPage{Trips: make([]TripView, 0, len(list.Trips))}
	for _, trip := range list.Trips {
		page.Trips = append(page.Trips, NewTripView(trip))
	}
	if list.NextCursor != nil {
		page.NextCursor = *list.NextCursor
	}
	return page
}
