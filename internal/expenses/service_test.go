package expenses

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
	"github.com/vroomxtransport/vroomx-backend/pkg/outbox"
)

type stubExpensesRepo struct {
	expense *models.TripExpense
	updates map[string]any
	deleted bool
}

func (s *stubExpensesRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubExpensesRepo) Create(ctx context.Context, expense *models.TripExpense) (*models.TripExpense, error) {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	s.expense = expense
	return expense, nil
}

func (s *stubExpensesRepo) Find(ctx context.Context, expenseID uuid.UUID) (*models.TripExpense, error) {
	if s.expense == nil || s.expense.ID != expenseID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.expense
	return &copied, nil
}

func (s *stubExpensesRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripExpense, error) {
	return nil, nil
}

func (s *stubExpensesRepo) Update(ctx context.Context, expenseID uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubExpensesRepo) Delete(ctx context.Context, expenseID uuid.UUID) error {
	s.deleted = true
	return nil
}

type stubFinancials struct {
	recomputed []uuid.UUID
}

func (s *stubFinancials) RecomputeFinancials(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) error {
	s.recomputed = append(s.recomputed, tripID)
	return nil
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubExpensesRepo, fin *stubFinancials, pub *stubOutbox) Service {
	t.Helper()
	svc, err := NewService(repo, fin, stubTxRunner{}, pub)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateExpenseRejectsUnknownCategory(t *testing.T) {
	svc := newTestService(t, &stubExpensesRepo{}, &stubFinancials{}, &stubOutbox{})

	_, err := svc.Create(context.Background(), uuid.New(), ExpenseInput{
		Category: enums.ExpenseCategory("parking"),
		Amount:   decimal.NewFromInt(20),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreateExpenseRejectsNonPositiveAmount(t *testing.T) {
	svc := newTestService(t, &stubExpensesRepo{}, &stubFinancials{}, &stubOutbox{})

	_, err := svc.Create(context.Background(), uuid.New(), ExpenseInput{
		Category: enums.ExpenseCategoryFuel,
		Amount:   decimal.Zero,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreateMiscExpenseRequiresLabel(t *testing.T) {
	svc := newTestService(t, &stubExpensesRepo{}, &stubFinancials{}, &stubOutbox{})

	_, err := svc.Create(context.Background(), uuid.New(), ExpenseInput{
		Category: enums.ExpenseCategoryMisc,
		Amount:   decimal.NewFromInt(35),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreateExpenseRecomputesAndEmits(t *testing.T) {
	tripID := uuid.New()
	repo := &stubExpensesRepo{}
	fin := &stubFinancials{}
	pub := &stubOutbox{}
	svc := newTestService(t, repo, fin, pub)

	expense, err := svc.Create(context.Background(), tripID, ExpenseInput{
		Category: enums.ExpenseCategoryFuel,
		Amount:   decimal.NewFromFloat(180.44),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if expense.TripID != tripID {
		t.Fatal("expected expense bound to the trip")
	}
	if len(fin.recomputed) != 1 || fin.recomputed[0] != tripID {
		t.Fatalf("expected trip rollups recomputed, got %v", fin.recomputed)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventTripExpenseRecorded {
		t.Fatalf("expected trip_expense_recorded event, got %+v", pub.events)
	}
}

func TestUpdateExpenseValidatesBeforeLoading(t *testing.T) {
	svc := newTestService(t, &stubExpensesRepo{}, &stubFinancials{}, &stubOutbox{})

	_, err := svc.Update(context.Background(), uuid.New(), ExpenseInput{
		Category: enums.ExpenseCategoryTolls,
		Amount:   decimal.NewFromInt(-5),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestUpdateExpenseRecomputesFormerTrip(t *testing.T) {
	tripID := uuid.New()
	expenseID := uuid.New()
	repo := &stubExpensesRepo{expense: &models.TripExpense{
		ID:       expenseID,
		TripID:   tripID,
		Category: enums.ExpenseCategoryFuel,
		Amount:   decimal.NewFromInt(100),
	}}
	fin := &stubFinancials{}
	pub := &stubOutbox{}
	svc := newTestService(t, repo, fin, pub)

	updated, err := svc.Update(context.Background(), expenseID, ExpenseInput{
		Category: enums.ExpenseCategoryRepairs,
		Amount:   decimal.NewFromInt(420),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Category != enums.ExpenseCategoryRepairs || !updated.Amount.Equal(decimal.NewFromInt(420)) {
		t.Fatalf("unexpected updated expense %+v", updated)
	}
	if len(fin.recomputed) != 1 || fin.recomputed[0] != tripID {
		t.Fatalf("expected trip rollups recomputed, got %v", fin.recomputed)
	}
	if len(pub.events) != 1 {
		t.Fatal("expected one expense event")
	}
}

func TestDeleteExpenseRecomputes(t *testing.T) {
	tripID := uuid.New()
	expenseID := uuid.New()
	repo := &stubExpensesRepo{expense: &models.TripExpense{
		ID:       expenseID,
		TripID:   tripID,
		Category: enums.ExpenseCategoryLodging,
		Amount:   decimal.NewFromInt(90),
	}}
	fin := &stubFinancials{}
	svc := newTestService(t, repo, fin, &stubOutbox{})

	if err := svc.Delete(context.Background(), expenseID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !repo.deleted {
		t.Fatal("expected the row deleted")
	}
	if len(fin.recomputed) != 1 || fin.recomputed[0] != tripID {
		t.Fatalf("expected trip rollups recomputed, got %v", fin.recomputed)
	}
}

func TestDeleteUnknownExpenseIsNotFound(t *testing.T) {
	svc := newTestService(t, &stubExpensesRepo{}, &stubFinancials{}, &stubOutbox{})

	err := svc.Delete(context.Background(), uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
