package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vroomxtransport/vroomx-backend/internal/orders"
	"github.com/vroomxtransport/vroomx-backend/internal/trips"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/types"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
	"github.com/vroomxtransport/vroomx-backend/pkg/outbox"
	"github.com/vroomxtransport/vroomx-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	order      *models.Order
	assigned   []models.Order
	casUpdates map[string]any
	updates    map[string]any
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) Find(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *stubOrdersRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Order, error) {
	return s.assigned, nil
}

func (s *stubOrdersRepo) List(ctx context.Context, params pagination.Params, filters orders.OrderFilters) (*orders.OrderList, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) UpdateStatusCAS(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, updates map[string]any) (bool, error) {
	if s.order == nil || s.order.ID != orderID || s.order.Status != from {
		return false, nil
	}
	s.casUpdates = updates
	if status, ok := updates["status"].(enums.OrderStatus); ok {
		s.order.Status = status
	}
	if v, ok := updates["trip_id"]; ok {
		switch id := v.(type) {
		case uuid.UUID:
			s.order.TripID = &id
		case nil:
			s.order.TripID = nil
		}
	}
	return true, nil
}

func (s *stubOrdersRepo) Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	s.updates = updates
	if v, ok := updates["trip_id"].(uuid.UUID); ok {
		s.order.TripID = &v
	}
	return nil
}

type stubTripsRepo struct {
	trip *models.Trip
}

func (s *stubTripsRepo) WithTx(tx *gorm.DB) trips.Repository { return s }

func (s *stubTripsRepo) Create(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	panic("not implemented")
}

func (s *stubTripsRepo) Find(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	return s.FindDetailed(ctx, tripID)
}

func (s *stubTripsRepo) FindDetailed(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	if s.trip == nil || s.trip.ID != tripID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.trip
	return &copied, nil
}

func (s *stubTripsRepo) List(ctx context.Context, params pagination.Params, filters trips.TripFilters) (*trips.TripList, error) {
	panic("not implemented")
}

func (s *stubTripsRepo) UpdateStatusCAS(ctx context.Context, tripID uuid.UUID, from enums.TripStatus, updates map[string]any) (bool, error) {
	panic("not implemented")
}

func (s *stubTripsRepo) Update(ctx context.Context, tripID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

func (s *stubTripsRepo) UpdateRouteStops(ctx context.Context, tripID uuid.UUID, stops types.RouteStops) error {
	panic("not implemented")
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

func newTestService(t *testing.T, ordersRepo *stubOrdersRepo, tripsRepo *stubTripsRepo, fin *stubFinancials, pub *stubOutbox) Service {
	t.Helper()
	svc, err := NewService(ordersRepo, tripsRepo, fin, stubTxRunner{}, pub, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestAssignNewOrderBecomesAssigned(t *testing.T) {
	orderID := uuid.New()
	tripID := uuid.New()
	ordersRepo := &stubOrdersRepo{order: &models.Order{ID: orderID, Status: enums.OrderStatusNew}}
	tripsRepo := &stubTripsRepo{trip: &models.Trip{ID: tripID}}
	fin := &stubFinancials{}
	pub := &stubOutbox{}
	svc := newTestService(t, ordersRepo, tripsRepo, fin, pub)

	ordersRepo.assigned = []models.Order{{ID: orderID}}
	report, err := svc.Assign(context.Background(), orderID, tripID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if ordersRepo.order.Status != enums.OrderStatusAssigned {
		t.Fatalf("expected assigned, got %s", ordersRepo.order.Status)
	}
	if ordersRepo.order.TripID == nil || *ordersRepo.order.TripID != tripID {
		t.Fatal("expected trip reference set")
	}
	if report.Utilization != 1 {
		t.Fatalf("expected utilization 1, got %d", report.Utilization)
	}
	if len(fin.recomputed) != 1 || fin.recomputed[0] != tripID {
		t.Fatalf("expected trip rollups recomputed, got %v", fin.recomputed)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventOrderAssigned {
		t.Fatalf("expected order_assigned event, got %+v", pub.events)
	}
}

func TestAssignAlreadyAssignedIsStateConflict(t *testing.T) {
	orderID := uuid.New()
	existing := uuid.New()
	ordersRepo := &stubOrdersRepo{order: &models.Order{
		ID:     orderID,
		Status: enums.OrderStatusAssigned,
		TripID: &existing,
	}}
	svc := newTestService(t, ordersRepo, &stubTripsRepo{}, &stubFinancials{}, &stubOutbox{})

	_, err := svc.Assign(context.Background(), orderID, uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestAssignUnknownTripIsNotFound(t *testing.T) {
	orderID := uuid.New()
	ordersRepo := &stubOrdersRepo{order: &models.Order{ID: orderID, Status: enums.OrderStatusNew}}
	svc := newTestService(t, ordersRepo, &stubTripsRepo{}, &stubFinancials{}, &stubOutbox{})

	_, err := svc.Assign(context.Background(), orderID, uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestAssignPastNewKeepsStatus(t *testing.T) {
	// Re-attaching a delivered order moves only the trip reference.
	orderID := uuid.New()
	tripID := uuid.New()
	ordersRepo := &stubOrdersRepo{order: &models.Order{ID: orderID, Status: enums.OrderStatusDelivered}}
	tripsRepo := &stubTripsRepo{trip: &models.Trip{ID: tripID}}
	svc := newTestService(t, ordersRepo, tripsRepo, &stubFinancials{}, &stubOutbox{})

	if _, err := svc.Assign(context.Background(), orderID, tripID); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if ordersRepo.order.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected status untouched, got %s", ordersRepo.order.Status)
	}
	if ordersRepo.casUpdates != nil {
		t.Fatal("expected plain update, not a status swap")
	}
	if ordersRepo.order.TripID == nil || *ordersRepo.order.TripID != tripID {
		t.Fatal("expected trip reference set")
	}
}

func TestAssignOverCapacityReportedNotBlocked(t *testing.T) {
	orderID := uuid.New()
	tripID := uuid.New()
	truck := &models.Truck{ID: uuid.New(), Type: enums.TruckTypeEnclosed2}
	ordersRepo := &stubOrdersRepo{order: &models.Order{ID: orderID, Status: enums.OrderStatusNew}}
	tripsRepo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Truck: truck}}
	svc := newTestService(t, ordersRepo, tripsRepo, &stubFinancials{}, &stubOutbox{})

	ordersRepo.assigned = []models.Order{{}, {}, {}}
	report, err := svc.Assign(context.Background(), orderID, tripID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if !report.OverCapacity {
		t.Fatal("expected over-capacity flagged")
	}
	if report.Capacity != 2 || report.Utilization != 3 {
		t.Fatalf("expected 3/2, got %d/%d", report.Utilization, report.Capacity)
	}
}

func TestAssignNoTruckNeverOverCapacity(t *testing.T) {
	orderID := uuid.New()
	tripID := uuid.New()
	ordersRepo := &stubOrdersRepo{order: &models.Order{ID: orderID, Status: enums.OrderStatusNew}}
	tripsRepo := &stubTripsRepo{trip: &models.Trip{ID: tripID}}
	svc := newTestService(t, ordersRepo, tripsRepo, &stubFinancials{}, &stubOutbox{})

	ordersRepo.assigned = make([]models.Order, 12)
	report, err := svc.Assign(context.Background(), orderID, tripID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if report.Capacity != 0 || report.OverCapacity {
		t.Fatalf("trip without a truck must report capacity 0, got %+v", report)
	}
}

func TestUnassignResetsOrder(t *testing.T) {
	orderID := uuid.New()
	tripID := uuid.New()
	pickedUp := time.Now().UTC()
	ordersRepo := &stubOrdersRepo{order: &models.Order{
		ID:               orderID,
		Status:           enums.OrderStatusPickedUp,
		TripID:           &tripID,
		ActualPickupDate: &pickedUp,
	}}
	fin := &stubFinancials{}
	pub := &stubOutbox{}
	svc := newTestService(t, ordersRepo, &stubTripsRepo{}, fin, pub)

	if err := svc.Unassign(context.Background(), orderID); err != nil {
		t.Fatalf("Unassign: %v", err)
	}
	if ordersRepo.order.Status != enums.OrderStatusNew {
		t.Fatalf("expected new, got %s", ordersRepo.order.Status)
	}
	if ordersRepo.order.TripID != nil {
		t.Fatal("expected trip reference cleared")
	}
	if v, ok := ordersRepo.casUpdates["actual_pickup_date"]; !ok || v != nil {
		t.Fatal("expected actual pickup date cleared")
	}
	if len(fin.recomputed) != 1 || fin.recomputed[0] != tripID {
		t.Fatalf("expected former trip recomputed, got %v", fin.recomputed)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventOrderUnassigned {
		t.Fatalf("expected order_unassigned event, got %+v", pub.events)
	}
}

func TestUnassignUnassignedOrderIsValidationError(t *testing.T) {
	orderID := uuid.New()
	ordersRepo := &stubOrdersRepo{order: &models.Order{ID: orderID, Status: enums.OrderStatusNew}}
	svc := newTestService(t, ordersRepo, &stubTripsRepo{}, &stubFinancials{}, &stubOutbox{})

	err := svc.Unassign(context.Background(), orderID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestUnassignCancelledOrderIsStateConflict(t *testing.T) {
	// Cancelling keeps the trip reference, so a cancelled order is still
	// "assigned" on paper. Unassigning it must not resurrect it as new.
	orderID := uuid.New()
	tripID := uuid.New()
	reason := "broker withdrew the load"
	ordersRepo := &stubOrdersRepo{order: &models.Order{
		ID:           orderID,
		Status:       enums.OrderStatusCancelled,
		TripID:       &tripID,
		CancelReason: &reason,
	}}
	fin := &stubFinancials{}
	pub := &stubOutbox{}
	svc := newTestService(t, ordersRepo, &stubTripsRepo{}, fin, pub)

	err := svc.Unassign(context.Background(), orderID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if ordersRepo.order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected order to stay cancelled, got %s", ordersRepo.order.Status)
	}
	if ordersRepo.order.TripID == nil || ordersRepo.order.CancelReason == nil {
		t.Fatal("expected trip reference and cancel reason untouched")
	}
	if len(fin.recomputed) != 0 || len(pub.events) != 0 {
		t.Fatal("expected no side effects on a refused unassign")
	}
}

func TestUnassignPaidOrderIsStateConflict(t *testing.T) {
	orderID := uuid.New()
	tripID := uuid.New()
	ordersRepo := &stubOrdersRepo{order: &models.Order{
		ID:     orderID,
		Status: enums.OrderStatusPaid,
		TripID: &tripID,
	}}
	svc := newTestService(t, ordersRepo, &stubTripsRepo{}, &stubFinancials{}, &stubOutbox{})

	err := svc.Unassign(context.Background(), orderID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if ordersRepo.order.Status != enums.OrderStatusPaid {
		t.Fatalf("expected order to stay paid, got %s", ordersRepo.order.Status)
	}
}

func TestUtilizationSnapshot(t *testing.T) {
	tripID := uuid.New()
	truck := &models.Truck{ID: uuid.New(), Type: enums.TruckTypeOpen10}
	tripsRepo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Truck: truck}}
	ordersRepo := &stubOrdersRepo{assigned: make([]models.Order, 4)}
	svc := newTestService(t, ordersRepo, tripsRepo, &stubFinancials{}, &stubOutbox{})

	report, err := svc.Utilization(context.Background(), tripID)
	if err != nil {
		t.Fatalf("Utilization: %v", err)
	}
	if report.Capacity != 10 || report.Utilization != 4 || report.OverCapacity {
		t.Fatalf("unexpected report %+v", report)
	}
}
