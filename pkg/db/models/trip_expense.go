package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
)

// TripExpense is a trip-scoped cost line item. CustomLabel is required when
// the category is misc.
type TripExpense struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripID      uuid.UUID             `gorm:"column:trip_id;type:uuid;not null"`
	Category    enums.ExpenseCategory `gorm:"column:category;type:expense_category;not null"`
	CustomLabel *string               `gorm:"column:custom_label"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	ExpenseDate *time.Time            `gorm:"column:expense_date"`
	Notes       *string               `gorm:"column:notes"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
