package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
)

// Order represents a single vehicle-transport job. An order knows its trip via
// trip_id, but the trip owns the assignment relationship.
type Order struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Status                enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'new'"`
	BrokerID              *uuid.UUID          `gorm:"column:broker_id;type:uuid"`
	DriverID              *uuid.UUID          `gorm:"column:driver_id;type:uuid"`
	TripID                *uuid.UUID          `gorm:"column:trip_id;type:uuid"`
	VehicleYear           *int                `gorm:"column:vehicle_year"`
	VehicleMake           *string             `gorm:"column:vehicle_make"`
	VehicleModel          *string             `gorm:"column:vehicle_model"`
	VehicleVIN            *string             `gorm:"column:vehicle_vin"`
	Revenue               decimal.Decimal     `gorm:"column:revenue;type:numeric(12,2);not null;default:0"`
	CarrierPay            decimal.Decimal     `gorm:"column:carrier_pay;type:numeric(12,2);not null;default:0"`
	BrokerFee             decimal.Decimal     `gorm:"column:broker_fee;type:numeric(12,2);not null;default:0"`
	LocalFee              decimal.Decimal     `gorm:"column:local_fee;type:numeric(12,2);not null;default:0"`
	DistanceMiles         decimal.NullDecimal `gorm:"column:distance_miles;type:numeric(10,1)"`
	PickupLocation        *string             `gorm:"column:pickup_location"`
	PickupCity            *string             `gorm:"column:pickup_city"`
	PickupState           *string             `gorm:"column:pickup_state"`
	PickupZip             *string             `gorm:"column:pickup_zip"`
	PickupContact         *string             `gorm:"column:pickup_contact"`
	DeliveryLocation      *string             `gorm:"column:delivery_location"`
	DeliveryCity          *string             `gorm:"column:delivery_city"`
	DeliveryState         *string             `gorm:"column:delivery_state"`
	DeliveryZip           *string             `gorm:"column:delivery_zip"`
	DeliveryContact       *string             `gorm:"column:delivery_contact"`
	ScheduledPickupDate   *time.Time          `gorm:"column:scheduled_pickup_date"`
	ScheduledDeliveryDate *time.Time          `gorm:"column:scheduled_delivery_date"`
	ActualPickupDate      *time.Time          `gorm:"column:actual_pickup_date"`
	ActualDeliveryDate    *time.Time          `gorm:"column:actual_delivery_date"`
	CancelReason          *string             `gorm:"column:cancel_reason"`
	Notes                 *string             `gorm:"column:notes"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
