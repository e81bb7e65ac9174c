package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
)

// Driver is a carrier driver. PayType and PayRate drive the trip driver-pay
// derivation: percentage of trip revenue, cents-per-mile, or a flat amount.
type Driver struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string              `gorm:"column:name;not null"`
	Phone     *string             `gorm:"column:phone"`
	Email     *string             `gorm:"column:email"`
	PayType   enums.DriverPayType `gorm:"column:pay_type;type:driver_pay_type;not null;default:'percentage'"`
	PayRate   decimal.Decimal     `gorm:"column:pay_rate;type:numeric(10,4);not null;default:0"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
