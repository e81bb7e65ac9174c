package routing

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/types"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
)

func datePtr(t time.Time) *time.Time { return &t }

func orderWithDates(pickup, delivery *time.Time) models.Order {
	return models.Order{ID: uuid.New(), ScheduledPickupDate: pickup, ScheduledDeliveryDate: delivery}
}

func TestDefaultSequencePickupsBeforeDeliveries(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	a := orderWithDates(datePtr(day), datePtr(day.Add(72*time.Hour)))
	b := orderWithDates(datePtr(day.Add(24*time.Hour)), datePtr(day.Add(48*time.Hour)))

	seq := DefaultSequence([]models.Order{b, a})
	if len(seq) != 4 {
		t.Fatalf("expected 4 stops, got %d", len(seq))
	}
	// Pickups ascend by pickup date, deliveries ascend by delivery date.
	want := types.RouteStops{
		{OrderID: a.ID, StopType: enums.StopTypePickup},
		{OrderID: b.ID, StopType: enums.StopTypePickup},
		{OrderID: b.ID, StopType: enums.StopTypeDelivery},
		{OrderID: a.ID, StopType: enums.StopTypeDelivery},
	}
	for i, stop := range want {
		if seq[i] != stop {
			t.Fatalf("stop %d: expected %+v, got %+v", i, stop, seq[i])
		}
	}
}

func TestDefaultSequenceMissingDatesSortLast(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	dated := orderWithDates(datePtr(day), datePtr(day))
	undated := orderWithDates(nil, nil)

	seq := DefaultSequence([]models.Order{undated, dated})
	if seq[0].OrderID != dated.ID {
		t.Fatalf("expected dated order to pick up first, got %s", seq[0].OrderID)
	}
	if seq[1].OrderID != undated.ID {
		t.Fatalf("expected undated order to pick up last, got %s", seq[1].OrderID)
	}
}

func TestDefaultSequenceTieBreaksOnOrderID(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	a := orderWithDates(datePtr(day), datePtr(day))
	b := orderWithDates(datePtr(day), datePtr(day))

	first := DefaultSequence([]models.Order{a, b})
	second := DefaultSequence([]models.Order{b, a})
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sequence not deterministic at stop %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestReconcileEmptySavedUsesDefault(t *testing.T) {
	order := orderWithDates(nil, nil)
	seq, stale := Reconcile(nil, []models.Order{order})
	if stale {
		t.Fatal("freshly computed default must not be stale")
	}
	if len(seq) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(seq))
	}
}

func TestReconcileSavedShownVerbatim(t *testing.T) {
	order := orderWithDates(nil, nil)
	saved := types.RouteStops{
		{OrderID: order.ID, StopType: enums.StopTypeDelivery},
		{OrderID: order.ID, StopType: enums.StopTypePickup},
	}
	seq, stale := Reconcile(saved, []models.Order{order})
	if stale {
		t.Fatal("matching order set must not be stale")
	}
	if seq[0].StopType != enums.StopTypeDelivery {
		t.Fatal("saved sequence must be returned verbatim, not resorted")
	}
}

func TestReconcileFlagsStaleOnOrderSetDrift(t *testing.T) {
	kept := orderWithDates(nil, nil)
	removed := orderWithDates(nil, nil)
	saved := types.RouteStops{
		{OrderID: kept.ID, StopType: enums.StopTypePickup},
		{OrderID: removed.ID, StopType: enums.StopTypePickup},
		{OrderID: kept.ID, StopType: enums.StopTypeDelivery},
		{OrderID: removed.ID, StopType: enums.StopTypeDelivery},
	}
	seq, stale := Reconcile(saved, []models.Order{kept})
	if !stale {
		t.Fatal("expected stale flag when saved sequence references a removed order")
	}
	if len(seq) != 4 {
		t.Fatal("stale sequence must still be returned untouched")
	}
}

func TestMovePreservesRelativeOrder(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	seq := types.RouteStops{
		{OrderID: ids[0], StopType: enums.StopTypePickup},
		{OrderID: ids[1], StopType: enums.StopTypePickup},
		{OrderID: ids[2], StopType: enums.StopTypePickup},
	}
	out, err := Move(seq, 2, 0)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if out[0].OrderID != ids[2] || out[1].OrderID != ids[0] || out[2].OrderID != ids[1] {
		t.Fatalf("unexpected order after move: %+v", out)
	}
}

func TestMoveOutOfRange(t *testing.T) {
	seq := types.RouteStops{{OrderID: uuid.New(), StopType: enums.StopTypePickup}}
	if _, err := Move(seq, 0, 5); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if _, err := Move(seq, -1, 0); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestValidateWarnsOnDeliveryBeforePickup(t *testing.T) {
	orderID := uuid.New()
	seq := types.RouteStops{
		{OrderID: orderID, StopType: enums.StopTypeDelivery},
		{OrderID: orderID, StopType: enums.StopTypePickup},
	}
	warnings := Validate(seq)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
}

func TestValidateCleanSequenceNoWarnings(t *testing.T) {
	orderID := uuid.New()
	seq := types.RouteStops{
		{OrderID: orderID, StopType: enums.StopTypePickup},
		{OrderID: orderID, StopType: enums.StopTypeDelivery},
	}
	if warnings := Validate(seq); len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
}

func TestValidateMembershipRejectsForeignOrder(t *testing.T) {
	assigned := orderWithDates(nil, nil)
	seq := types.RouteStops{
		{OrderID: assigned.ID, StopType: enums.StopTypePickup},
		{OrderID: assigned.ID, StopType: enums.StopTypeDelivery},
		{OrderID: uuid.New(), StopType: enums.StopTypePickup},
	}
	err := ValidateMembership(seq, []models.Order{assigned})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestValidateMembershipRequiresBothStops(t *testing.T) {
	assigned := orderWithDates(nil, nil)
	seq := types.RouteStops{
		{OrderID: assigned.ID, StopType: enums.StopTypePickup},
	}
	err := ValidateMembership(seq, []models.Order{assigned})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
