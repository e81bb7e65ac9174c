package trips

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vroomxtransport/vroomx-backend/internal/orders"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/types"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
	"github.com/vroomxtransport/vroomx-backend/pkg/outbox"
	"github.com/vroomxtransport/vroomx-backend/pkg/pagination"
)

type stubTripsRepo struct {
	trip      *models.Trip
	updates   map[string]any
	routeSave types.RouteStops
	casFails  bool
}

func (s *stubTripsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubTripsRepo) Create(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	s.trip = trip
	return trip, nil
}

func (s *stubTripsRepo) Find(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	if s.trip == nil || s.trip.ID != tripID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.trip
	return &copied, nil
}

func (s *stubTripsRepo) FindDetailed(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	return s.Find(ctx, tripID)
}

func (s *stubTripsRepo) List(ctx context.Context, params pagination.Params, filters TripFilters) (*TripList, error) {
	return &TripList{}, nil
}

func (s *stubTripsRepo) UpdateStatusCAS(ctx context.Context, tripID uuid.UUID, from enums.TripStatus, updates map[string]any) (bool, error) {
	if s.casFails {
		return false, nil
	}
	if s.trip == nil || s.trip.ID != tripID || s.trip.Status != from {
		return false, nil
	}
	if status, ok := updates["status"].(enums.TripStatus); ok {
		s.trip.Status = status
	}
	return true, nil
}

func (s *stubTripsRepo) Update(ctx context.Context, tripID uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubTripsRepo) UpdateRouteStops(ctx context.Context, tripID uuid.UUID, stops types.RouteStops) error {
	s.routeSave = stops
	if s.trip != nil {
		s.trip.RouteStops = stops
	}
	return nil
}

type stubAssignedOrders struct {
	orders     []models.Order
	casUpdates map[uuid.UUID]map[string]any
}

func (s *stubAssignedOrders) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubAssignedOrders) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubAssignedOrders) Find(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubAssignedOrders) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Order, error) {
	return s.orders, nil
}

func (s *stubAssignedOrders) List(ctx context.Context, params pagination.Params, filters orders.OrderFilters) (*orders.OrderList, error) {
	panic("not implemented")
}

func (s *stubAssignedOrders) UpdateStatusCAS(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, updates map[string]any) (bool, error) {
	if s.casUpdates == nil {
		s.casUpdates = make(map[uuid.UUID]map[string]any)
	}
	s.casUpdates[orderID] = updates
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			if status, ok := updates["status"].(enums.OrderStatus); ok {
				s.orders[i].Status = status
			}
		}
	}
	return true, nil
}

func (s *stubAssignedOrders) Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubOutbox) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	return s.Emit(ctx, tx, event)
}

func (s *stubOutbox) byType(eventType enums.OutboxEventType) []outbox.DomainEvent {
	var out []outbox.DomainEvent
	for _, e := range s.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubTripsRepo, assigned *stubAssignedOrders, pub *stubOutbox) Service {
	t.Helper()
	svc, err := NewService(repo, assigned, stubTxRunner{}, pub, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func assignedOrder(tripID uuid.UUID, status enums.OrderStatus) models.Order {
	return models.Order{ID: uuid.New(), Status: status, TripID: &tripID}
}

func TestCreateTripRejectsInvertedDateRange(t *testing.T) {
	svc := newTestService(t, &stubTripsRepo{}, &stubAssignedOrders{}, &stubOutbox{})

	start := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)
	_, err := svc.Create(context.Background(), CreateTripInput{StartDate: &start, EndDate: &end})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreateTripStartsPlanned(t *testing.T) {
	pub := &stubOutbox{}
	svc := newTestService(t, &stubTripsRepo{}, &stubAssignedOrders{}, pub)

	trip, err := svc.Create(context.Background(), CreateTripInput{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if trip.Status != enums.TripStatusPlanned {
		t.Fatalf("expected planned, got %s", trip.Status)
	}
	if len(pub.byType(enums.EventTripCreated)) != 1 {
		t.Fatalf("expected trip_created event, got %+v", pub.events)
	}
}

func TestAdvanceToInProgressCascadesPickup(t *testing.T) {
	tripID := uuid.New()
	repo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Status: enums.TripStatusPlanned}}
	assigned := &stubAssignedOrders{orders: []models.Order{
		assignedOrder(tripID, enums.OrderStatusAssigned),
		assignedOrder(tripID, enums.OrderStatusAssigned),
	}}
	pub := &stubOutbox{}
	svc := newTestService(t, repo, assigned, pub)

	trip, err := svc.Advance(context.Background(), tripID)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if trip.Status != enums.TripStatusInProgress {
		t.Fatalf("expected in_progress, got %s", trip.Status)
	}
	for _, o := range assigned.orders {
		if o.Status != enums.OrderStatusPickedUp {
			t.Fatalf("expected order %s picked up, got %s", o.ID, o.Status)
		}
		if _, ok := assigned.casUpdates[o.ID]["actual_pickup_date"]; !ok {
			t.Fatalf("expected pickup stamp for order %s", o.ID)
		}
	}
	if got := len(pub.byType(enums.EventOrderStatusChanged)); got != 2 {
		t.Fatalf("expected 2 cascaded order events, got %d", got)
	}
}

func TestAdvanceSkipsOrdersAlreadyPastTarget(t *testing.T) {
	tripID := uuid.New()
	repo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Status: enums.TripStatusPlanned}}
	ahead := assignedOrder(tripID, enums.OrderStatusDelivered)
	assigned := &stubAssignedOrders{orders: []models.Order{
		ahead,
		assignedOrder(tripID, enums.OrderStatusAssigned),
	}}
	pub := &stubOutbox{}
	svc := newTestService(t, repo, assigned, pub)

	if _, err := svc.Advance(context.Background(), tripID); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if _, touched := assigned.casUpdates[ahead.ID]; touched {
		t.Fatal("order already past the cascade target must be left alone")
	}
	if got := len(pub.byType(enums.EventOrderStatusChanged)); got != 1 {
		t.Fatalf("expected 1 cascaded order event, got %d", got)
	}
}

func TestAdvanceBlockedCascadeFailsWhole(t *testing.T) {
	tripID := uuid.New()
	repo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Status: enums.TripStatusPlanned}}
	blocker := assignedOrder(tripID, enums.OrderStatusNew)
	assigned := &stubAssignedOrders{orders: []models.Order{
		assignedOrder(tripID, enums.OrderStatusAssigned),
		blocker,
	}}
	svc := newTestService(t, repo, assigned, &stubOutbox{})

	_, err := svc.Advance(context.Background(), tripID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeCascade) {
		t.Fatalf("expected CASCADE_FAILURE, got %v", err)
	}
	coded := pkgerrors.As(err)
	if coded == nil {
		t.Fatal("expected coded error")
	}
	details, ok := coded.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %v", coded.Details())
	}
	ids, ok := details["order_ids"].([]uuid.UUID)
	if !ok || len(ids) != 1 || ids[0] != blocker.ID {
		t.Fatalf("expected blocker %s listed, got %v", blocker.ID, details)
	}
}

func TestAdvanceCompletionCascadesDelivery(t *testing.T) {
	tripID := uuid.New()
	repo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Status: enums.TripStatusAtTerminal}}
	assigned := &stubAssignedOrders{orders: []models.Order{
		assignedOrder(tripID, enums.OrderStatusPickedUp),
	}}
	svc := newTestService(t, repo, assigned, &stubOutbox{})

	trip, err := svc.Advance(context.Background(), tripID)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if trip.Status != enums.TripStatusCompleted {
		t.Fatalf("expected completed, got %s", trip.Status)
	}
	if assigned.orders[0].Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", assigned.orders[0].Status)
	}
	if _, ok := assigned.casUpdates[assigned.orders[0].ID]["actual_delivery_date"]; !ok {
		t.Fatal("expected delivery stamp on cascaded order")
	}
}

func TestAdvanceMidStepHasNoCascade(t *testing.T) {
	tripID := uuid.New()
	repo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Status: enums.TripStatusInProgress}}
	assigned := &stubAssignedOrders{orders: []models.Order{
		assignedOrder(tripID, enums.OrderStatusPickedUp),
	}}
	svc := newTestService(t, repo, assigned, &stubOutbox{})

	trip, err := svc.Advance(context.Background(), tripID)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if trip.Status != enums.TripStatusAtTerminal {
		t.Fatalf("expected at_terminal, got %s", trip.Status)
	}
	if len(assigned.casUpdates) != 0 {
		t.Fatal("in_progress to at_terminal must not touch orders")
	}
}

func TestAdvanceFromCompletedIsStateConflict(t *testing.T) {
	tripID := uuid.New()
	repo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Status: enums.TripStatusCompleted}}
	svc := newTestService(t, repo, &stubAssignedOrders{}, &stubOutbox{})

	_, err := svc.Advance(context.Background(), tripID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestRollbackLeavesOrdersUntouched(t *testing.T) {
	tripID := uuid.New()
	repo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Status: enums.TripStatusInProgress}}
	assigned := &stubAssignedOrders{orders: []models.Order{
		assignedOrder(tripID, enums.OrderStatusPickedUp),
	}}
	svc := newTestService(t, repo, assigned, &stubOutbox{})

	trip, err := svc.Rollback(context.Background(), tripID)
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if trip.Status != enums.TripStatusPlanned {
		t.Fatalf("expected planned, got %s", trip.Status)
	}
	if assigned.orders[0].Status != enums.OrderStatusPickedUp {
		t.Fatal("trip rollback must not move orders")
	}
}

func TestRecomputeFinancialsPercentageDriver(t *testing.T) {
	tripID := uuid.New()
	driver := &models.Driver{
		ID:      uuid.New(),
		PayType: enums.DriverPayTypePercentage,
		PayRate: decimal.NewFromInt(25),
	}
	repo := &stubTripsRepo{trip: &models.Trip{
		ID:         tripID,
		Status:     enums.TripStatusPlanned,
		CarrierPay: decimal.NewFromInt(100),
		Driver:     driver,
		Expenses: []models.TripExpense{
			{Amount: decimal.NewFromInt(40)},
			{Amount: decimal.NewFromInt(10)},
		},
	}}
	order := assignedOrder(tripID, enums.OrderStatusAssigned)
	order.Revenue = decimal.NewFromInt(1000)
	order.BrokerFee = decimal.NewFromInt(100)
	assigned := &stubAssignedOrders{orders: []models.Order{order}}
	pub := &stubOutbox{}
	svc := newTestService(t, repo, assigned, pub)

	if err := svc.RecomputeFinancials(context.Background(), nil, tripID); err != nil {
		t.Fatalf("RecomputeFinancials: %v", err)
	}
	if got := repo.updates["driver_pay"].(decimal.Decimal); !got.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected driver pay 250, got %s", got)
	}
	// 1000 - 100 carrier - 100 broker - 250 driver - 50 expenses
	if got := repo.updates["net_profit"].(decimal.Decimal); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected net profit 500, got %s", got)
	}
	if len(pub.byType(enums.EventTripFinancialsRecomputed)) != 1 {
		t.Fatal("expected financials recomputed event")
	}
}

func TestRecomputeFinancialsPerMileDriver(t *testing.T) {
	tripID := uuid.New()
	driver := &models.Driver{
		ID:      uuid.New(),
		PayType: enums.DriverPayTypePerMile,
		PayRate: decimal.NewFromFloat(0.55),
	}
	repo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Status: enums.TripStatusPlanned, Driver: driver}}
	order := assignedOrder(tripID, enums.OrderStatusAssigned)
	order.DistanceMiles = decimal.NewNullDecimal(decimal.NewFromInt(1200))
	assigned := &stubAssignedOrders{orders: []models.Order{order}}
	svc := newTestService(t, repo, assigned, &stubOutbox{})

	if err := svc.RecomputeFinancials(context.Background(), nil, tripID); err != nil {
		t.Fatalf("RecomputeFinancials: %v", err)
	}
	if got := repo.updates["driver_pay"].(decimal.Decimal); !got.Equal(decimal.NewFromInt(660)) {
		t.Fatalf("expected driver pay 660, got %s", got)
	}
}

func TestRecomputeFinancialsFlatDriverIgnoresRevenue(t *testing.T) {
	tripID := uuid.New()
	driver := &models.Driver{
		ID:      uuid.New(),
		PayType: enums.DriverPayTypeFlat,
		PayRate: decimal.NewFromInt(800),
	}
	repo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Status: enums.TripStatusPlanned, Driver: driver}}
	svc := newTestService(t, repo, &stubAssignedOrders{}, &stubOutbox{})

	if err := svc.RecomputeFinancials(context.Background(), nil, tripID); err != nil {
		t.Fatalf("RecomputeFinancials: %v", err)
	}
	if got := repo.updates["driver_pay"].(decimal.Decimal); !got.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("expected driver pay 800, got %s", got)
	}
}

func TestRecomputeFinancialsNoDriverZeroPay(t *testing.T) {
	tripID := uuid.New()
	repo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Status: enums.TripStatusPlanned}}
	svc := newTestService(t, repo, &stubAssignedOrders{}, &stubOutbox{})

	if err := svc.RecomputeFinancials(context.Background(), nil, tripID); err != nil {
		t.Fatalf("RecomputeFinancials: %v", err)
	}
	if got := repo.updates["driver_pay"].(decimal.Decimal); !got.IsZero() {
		t.Fatalf("expected zero driver pay, got %s", got)
	}
}

func TestSaveRouteRejectsForeignOrders(t *testing.T) {
	tripID := uuid.New()
	repo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Status: enums.TripStatusPlanned}}
	order := assignedOrder(tripID, enums.OrderStatusAssigned)
	assigned := &stubAssignedOrders{orders: []models.Order{order}}
	svc := newTestService(t, repo, assigned, &stubOutbox{})

	stops := types.RouteStops{
		{OrderID: order.ID, StopType: enums.StopTypePickup},
		{OrderID: order.ID, StopType: enums.StopTypeDelivery},
		{OrderID: uuid.New(), StopType: enums.StopTypePickup},
	}
	_, err := svc.SaveRoute(context.Background(), tripID, stops)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if repo.routeSave != nil {
		t.Fatal("rejected sequence must not be persisted")
	}
}

func TestSaveRoutePersistsWithWarnings(t *testing.T) {
	tripID := uuid.New()
	repo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Status: enums.TripStatusPlanned}}
	order := assignedOrder(tripID, enums.OrderStatusAssigned)
	assigned := &stubAssignedOrders{orders: []models.Order{order}}
	pub := &stubOutbox{}
	svc := newTestService(t, repo, assigned, pub)

	stops := types.RouteStops{
		{OrderID: order.ID, StopType: enums.StopTypeDelivery},
		{OrderID: order.ID, StopType: enums.StopTypePickup},
	}
	view, err := svc.SaveRoute(context.Background(), tripID, stops)
	if err != nil {
		t.Fatalf("SaveRoute: %v", err)
	}
	if len(view.Warnings) != 1 {
		t.Fatalf("expected 1 ordering warning, got %d", len(view.Warnings))
	}
	if len(repo.routeSave) != 2 {
		t.Fatal("expected the sequence persisted despite warnings")
	}
	if len(pub.byType(enums.EventTripRouteSaved)) != 1 {
		t.Fatal("expected route saved event")
	}
}

func TestApplyDefaultRouteReplacesStored(t *testing.T) {
	tripID := uuid.New()
	order := assignedOrder(tripID, enums.OrderStatusAssigned)
	stale := types.RouteStops{{OrderID: uuid.New(), StopType: enums.StopTypePickup}}
	repo := &stubTripsRepo{trip: &models.Trip{ID: tripID, Status: enums.TripStatusPlanned, RouteStops: stale}}
	assigned := &stubAssignedOrders{orders: []models.Order{order}}
	svc := newTestService(t, repo, assigned, &stubOutbox{})

	view, err := svc.ApplyDefaultRoute(context.Background(), tripID)
	if err != nil {
		t.Fatalf("ApplyDefaultRoute: %v", err)
	}
	if len(view.Stops) != 2 || view.Stops[0].OrderID != order.ID {
		t.Fatalf("expected fresh default sequence, got %+v", view.Stops)
	}
	if len(repo.routeSave) != 2 {
		t.Fatal("expected default sequence persisted")
	}
}

func TestGetReportsStaleRouteAndCapacity(t *testing.T) {
	tripID := uuid.New()
	order := assignedOrder(tripID, enums.OrderStatusAssigned)
	staleStops := types.RouteStops{
		{OrderID: uuid.New(), StopType: enums.StopTypePickup},
		{OrderID: uuid.New(), StopType: enums.StopTypeDelivery},
	}
	truck := &models.Truck{ID: uuid.New(), Type: enums.TruckTypeOpen7}
	repo := &stubTripsRepo{trip: &models.Trip{
		ID:         tripID,
		Status:     enums.TripStatusPlanned,
		RouteStops: staleStops,
		Truck:      truck,
	}}
	assigned := &stubAssignedOrders{orders: []models.Order{order}}
	svc := newTestService(t, repo, assigned, &stubOutbox{})

	detail, err := svc.Get(context.Background(), tripID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !detail.Route.Stale {
		t.Fatal("expected stale route flag")
	}
	if detail.Capacity != enums.TruckTypeOpen7.MaxVehicles() {
		t.Fatalf("expected capacity from truck type, got %d", detail.Capacity)
	}
	if detail.Utilization != 1 {
		t.Fatalf("expected utilization 1, got %d", detail.Utilization)
	}
	if detail.OverCapacity {
		t.Fatal("one order on a seven-car truck is not over capacity")
	}
}
