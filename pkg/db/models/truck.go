package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
)

// Truck is a carrier unit. Capacity is never stored; it derives from the
// truck type via enums.TruckType.MaxVehicles.
type Truck struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UnitNumber string          `gorm:"column:unit_number;not null"`
	Type       enums.TruckType `gorm:"column:type;type:truck_type;not null"`
	Make       *string         `gorm:"column:make"`
	Model      *string         `gorm:"column:model"`
	Year       *int            `gorm:"column:year"`
	PlateNo    *string         `gorm:"column:plate_no"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
