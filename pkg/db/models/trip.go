package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vroomxtransport/vroomx-backend/pkg/db/types"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
)

// Trip represents one truck/driver itinerary spanning a date range. Financial
// rollups are persisted and recomputed on every order or expense change. The
// route sequence is saved verbatim and may be stale relative to the current
// order set; readers reconcile it before use.
type Trip struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripNumber      *string          `gorm:"column:trip_number"`
	Status          enums.TripStatus `gorm:"column:status;type:trip_status;not null;default:'planned'"`
	TruckID         *uuid.UUID       `gorm:"column:truck_id;type:uuid"`
	DriverID        *uuid.UUID       `gorm:"column:driver_id;type:uuid"`
	StartDate       *time.Time       `gorm:"column:start_date"`
	EndDate         *time.Time       `gorm:"column:end_date"`
	TotalRevenue    decimal.Decimal  `gorm:"column:total_revenue;type:numeric(12,2);not null;default:0"`
	CarrierPay      decimal.Decimal  `gorm:"column:carrier_pay;type:numeric(12,2);not null;default:0"`
	TotalBrokerFees decimal.Decimal  `gorm:"column:total_broker_fees;type:numeric(12,2);not null;default:0"`
	DriverPay       decimal.Decimal  `gorm:"column:driver_pay;type:numeric(12,2);not null;default:0"`
	TotalExpenses   decimal.Decimal  `gorm:"column:total_expenses;type:numeric(12,2);not null;default:0"`
	NetProfit       decimal.Decimal  `gorm:"column:net_profit;type:numeric(12,2);not null;default:0"`
	RouteStops      types.RouteStops `gorm:"column:route_stops;type:jsonb;serializer:json"`
	Notes           *string          `gorm:"column:notes"`
	Truck           *Truck           `gorm:"foreignKey:TruckID"`
	Driver          *Driver          `gorm:"foreignKey:DriverID"`
	Orders          []Order          `gorm:"foreignKey:TripID"`
	Expenses        []TripExpense    `gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
