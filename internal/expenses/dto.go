package expenses

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
)

// ExpenseView is the API shape of a trip expense.
type ExpenseView struct {
	ID          uuid.UUID             `json:"id"`
	TripID      uuid.UUID             `json:"trip_id"`
	Category    enums.ExpenseCategory `json:"category"`
	CustomLabel *string               `json:"custom_label,omitempty"`
	Amount      decimal.Decimal       `json:"amount"`
	ExpenseDate *time.Time            `json:"expense_date,omitempty"`
	Notes       *string               `json:"notes,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewExpenseView maps a stored expense onto its API shape.
func NewExpenseView(expense models.TripExpense) ExpenseView {
	return ExpenseView{
		ID:          expense.ID,
		TripID:      expense.TripID,
		Category:    expense.Category,
		CustomLabel: expense.CustomLabel,
		Amount:      expense.Amount,
		ExpenseDate: expense.ExpenseDate,
		Notes:       expense.Notes,
		CreatedAt:   expense.CreatedAt,
		UpdatedAt:   expense.UpdatedAt,
	}
}
