// Package expenses manages trip-scoped cost line items. Every mutation runs
// in one transaction with the trip financial recompute it triggers.
package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
	"github.com/vroomxtransport/vroomx-backend/pkg/outbox"
	"github.com/vroomxtransport/vroomx-backend/pkg/outbox/payloads"
)

const (
	mutationCreated = "created"
	mutationUpdated = "updated"
	mutationDeleted = "deleted"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type tripFinancials interface {
	RecomputeFinancials(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) error
}

// ExpenseInput carries the editable fields of a trip expense.
type ExpenseInput struct {
	Category    enums.ExpenseCategory
	CustomLabel *string
	Amount      decimal.Decimal
	ExpenseDate *time.Time
	Notes       *string
}

// Service manages the trip expense lifecycle.
type Service interface {
	Create(ctx context.Context, tripID uuid.UUID, input ExpenseInput) (*models.TripExpense, error)
	Update(ctx context.Context, expenseID uuid.UUID, input ExpenseInput) (*models.TripExpense, error)
	Delete(ctx context.Context, expenseID uuid.UUID) error
}

type service struct {
	repo       Repository
	financials tripFinancials
	tx         txRunner
	outbox     outboxPublisher
}

// NewService builds the trip expense service.
func NewService(repo Repository, financials tripFinancials, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expenses repository required")
	}
	if financials == nil {
		return nil, fmt.Errorf("trip financials required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:       repo,
		financials: financials,
		tx:         tx,
		outbox:     publisher,
	}, nil
}

func validateInput(input ExpenseInput) error {
	if !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid expense category %q", input.Category))
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "expense amount must be positive")
	}
	if input.Category.RequiresLabel() {
		if input.CustomLabel == nil || strings.TrimSpace(*input.CustomLabel) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("category %s requires a custom label", input.Category))
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, tripID uuid.UUID, input ExpenseInput) (*models.TripExpense, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	expense := &models.TripExpense{
		TripID:      tripID,
		Category:    input.Category,
		CustomLabel: input.CustomLabel,
		Amount:      input.Amount,
		ExpenseDate: input.ExpenseDate,
		Notes:       input.Notes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, expense)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create trip expense")
		}
		expense = created

		if err := s.financials.RecomputeFinancials(ctx, tx, tripID); err != nil {
			return err
		}
		return s.emit(ctx, tx, expense, mutationCreated)
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *service) Update(ctx context.Context, expenseID uuid.UUID, input ExpenseInput) (*models.TripExpense, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var out *models.TripExpense
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		expense, err := s.findExpense(ctx, repo, expenseID)
		if err != nil {
			return err
		}

		updates := map[string]any{
			"category":     input.Category,
			"custom_label": input.CustomLabel,
			"amount":       input.Amount,
			"expense_date": input.ExpenseDate,
			"notes":        input.Notes,
		}
		if err := repo.Update(ctx, expenseID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update trip expense")
		}
		expense.Category = input.Category
		expense.CustomLabel = input.CustomLabel
		expense.Amount = input.Amount
		expense.ExpenseDate = input.ExpenseDate
		expense.Notes = input.Notes
		out = expense

		if err := s.financials.RecomputeFinancials(ctx, tx, expense.TripID); err != nil {
			return err
		}
		return s.emit(ctx, tx, expense, mutationUpdated)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, expenseID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		expense, err := s.findExpense(ctx, repo, expenseID)
		if err != nil {
			return err
		}

		if err := repo.Delete(ctx, expenseID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete trip expense")
		}
		if err := s.financials.RecomputeFinancials(ctx, tx, expense.TripID); err != nil {
			return err
		}
		return s.emit(ctx, tx, expense, mutationDeleted)
	})
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, expense *models.TripExpense, mutation string) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventTripExpenseRecorded,
		AggregateType: enums.AggregateTripExpense,
		AggregateID:   expense.ID,
		Version:       1,
		Data: payloads.TripExpenseRecordedEvent{
			ExpenseID: expense.ID,
			TripID:    expense.TripID,
			Category:  expense.Category,
			Amount:    expense.Amount,
			Mutation:  mutation,
		},
	})
}

func (s *service) findExpense(ctx context.Context, repo Repository, expenseID uuid.UUID) (*models.TripExpense, error) {
	expense, err := repo.Find(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip expense not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip expense")
	}
	return expense, nil
}
