package trips

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vroomxtransport/vroomx-backend/internal/routing"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/types"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
)

// CreateTripInput carries the fields accepted when planning a new trip.
// Truck and driver are chosen at creation time.
type CreateTripInput struct {
	TripNumber *string
	TruckID    *uuid.UUID
	DriverID   *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	CarrierPay decimal.Decimal
	Notes      *string
}

// TripFilters narrows trip listings.
type TripFilters struct {
	Status *enums.TripStatus
}

// TripList is one page of trips plus the cursor for the next page.
type TripList struct {
	Trips      []models.Trip
	NextCursor *string
}

// RouteView is the reconciled sequence served on trip reads. Stale means the
// saved sequence no longer matches the assigned order set; replacing it is
// the caller's decision.
type RouteView struct {
	Stops    types.RouteStops
	Stale    bool
	Warnings []routing.Warning
}

// TripDetail is the full trip read model: associations, the reconciled route,
// and the derived capacity picture.
type TripDetail struct {
	Trip         models.Trip
	Route        RouteView
	Capacity     int
	Utilization  int
	OverCapacity bool
}
