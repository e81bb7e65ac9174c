package trips

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/vroomxtransport/vroomx-backend/internal/orders"
	"github.com/vroomxtransport/vroomx-backend/internal/routing"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/types"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
	"github.com/vroomxtransport/vroomx-backend/pkg/metrics"
	"github.com/vroomxtransport/vroomx-backend/pkg/outbox"
	"github.com/vroomxtransport/vroomx-backend/pkg/outbox/payloads"
	"github.com/vroomxtransport/vroomx-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service drives trip transitions, the order cascade they trigger, the
// persisted financial rollups, and route sequence persistence.
type Service interface {
	Create(ctx context.Context, input CreateTripInput) (*models.Trip, error)
	Get(ctx context.Context, tripID uuid.UUID) (*TripDetail, error)
	List(ctx context.Context, params pagination.Params, filters TripFilters) (*TripList, error)
	Advance(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	Rollback(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	RecomputeFinancials(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) error
	Route(ctx context.Context, tripID uuid.UUID) (*RouteView, error)
	SaveRoute(ctx context.Context, tripID uuid.UUID, stops types.RouteStops) (*RouteView, error)
	ApplyDefaultRoute(ctx context.Context, tripID uuid.UUID) (*RouteView, error)
}

type service struct {
	repo    Repository
	orders  orders.Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.DispatchMetrics
}

// NewService builds the trip service. The orders repository is required
// because cascades move assigned orders inside the trip's transaction.
func NewService(repo Repository, ordersRepo orders.Repository, tx txRunner, publisher outboxPublisher, m *metrics.DispatchMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("trips repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:    repo,
		orders:  ordersRepo,
		tx:      tx,
		outbox:  publisher,
		metrics: m,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateTripInput) (*models.Trip, error) {
	if input.CarrierPay.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "carrier pay must not be negative")
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}

	trip := &models.Trip{
		TripNumber: input.TripNumber,
		Status:     enums.TripStatusPlanned,
		TruckID:    input.TruckID,
		DriverID:   input.DriverID,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		CarrierPay: input.CarrierPay,
		Notes:      input.Notes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, trip)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create trip")
		}
		trip = created
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTripCreated,
			AggregateType: enums.AggregateTrip,
			AggregateID:   trip.ID,
			Version:       1,
			Data: payloads.TripCreatedEvent{
				TripID:   trip.ID,
				TruckID:  trip.TruckID,
				DriverID: trip.DriverID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return trip, nil
}

func (s *service) Get(ctx context.Context, tripID uuid.UUID) (*TripDetail, error) {
	trip, err := s.findDetailed(ctx, s.repo, tripID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.orders.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned orders")
	}
	trip.Orders = assigned

	stops, stale := routing.Reconcile(trip.RouteStops, assigned)
	detail := &TripDetail{
		Trip: *trip,
		Route: RouteView{
			Stops:    stops,
			Stale:    stale,
			Warnings: routing.Validate(stops),
		},
		Utilization: len(assigned),
	}
	if trip.Truck != nil {
		detail.Capacity = trip.Truck.Type.MaxVehicles()
	}
	detail.OverCapacity = detail.Capacity > 0 && detail.Utilization > detail.Capacity
	return detail, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters TripFilters) (*TripList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list trips")
	}
	return list, nil
}

// Advance moves the trip one step forward and applies the matching cascade on
// every assigned order inside the same transaction. A blocked cascade aborts
// the whole unit of work.
func (s *service) Advance(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	started := time.Now()
	var out *models.Trip
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		trip, err := s.findTrip(ctx, repo, tripID)
		if err != nil {
			return err
		}

		next, ok := trip.Status.Next()
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("trip cannot advance from %s", trip.Status))
		}

		if err := s.swapStatus(ctx, repo, trip, map[string]any{"status": next}); err != nil {
			return err
		}

		now := time.Now().UTC()
		var cascaded []uuid.UUID
		if step := cascadeFor(trip.Status, next); step != nil {
			cascaded, err = s.applyCascade(ctx, tx, trip, step, now)
			if err != nil {
				return err
			}
		}

		from := trip.Status
		trip.Status = next
		out = trip
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTripStatusChanged,
			AggregateType: enums.AggregateTrip,
			AggregateID:   trip.ID,
			Version:       1,
			Data: payloads.TripStatusChangedEvent{
				TripID:         trip.ID,
				FromStatus:     from,
				ToStatus:       next,
				CascadedOrders: cascaded,
				ChangedAt:      now,
			},
		})
	})
	s.observe("advance", started, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Rollback moves the trip one step backwards. Orders are deliberately left
// untouched; the operator adjusts them manually when needed.
func (s *service) Rollback(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	started := time.Now()
	var out *models.Trip
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		trip, err := s.findTrip(ctx, repo, tripID)
		if err != nil {
			return err
		}

		prev, ok := trip.Status.Prev()
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("trip cannot roll back from %s", trip.Status))
		}

		if err := s.swapStatus(ctx, repo, trip, map[string]any{"status": prev}); err != nil {
			return err
		}

		from := trip.Status
		trip.Status = prev
		out = trip
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTripStatusChanged,
			AggregateType: enums.AggregateTrip,
			AggregateID:   trip.ID,
			Version:       1,
			Data: payloads.TripStatusChangedEvent{
				TripID:     trip.ID,
				FromStatus: from,
				ToStatus:   prev,
				ChangedAt:  time.Now().UTC(),
			},
		})
	})
	s.observe("rollback", started, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// cascadeStep describes the bulk order effect a trip transition triggers:
// orders sitting at pre move to target, orders at or past target are skipped,
// anything else blocks the transition.
type cascadeStep struct {
	pre         enums.OrderStatus
	target      enums.OrderStatus
	stampColumn string
}

func cascadeFor(from, to enums.TripStatus) *cascadeStep {
	switch {
	case from == enums.TripStatusPlanned && to == enums.TripStatusInProgress:
		return &cascadeStep{
			pre:         enums.OrderStatusAssigned,
			target:      enums.OrderStatusPickedUp,
			stampColumn: "actual_pickup_date",
		}
	case from == enums.TripStatusAtTerminal && to == enums.TripStatusCompleted:
		return &cascadeStep{
			pre:         enums.OrderStatusPickedUp,
			target:      enums.OrderStatusDelivered,
			stampColumn: "actual_delivery_date",
		}
	default:
		return nil
	}
}

func (s *service) applyCascade(ctx context.Context, tx *gorm.DB, trip *models.Trip, step *cascadeStep, now time.Time) ([]uuid.UUID, error) {
	ordersRepo := s.orders.WithTx(tx)
	assigned, err := ordersRepo.ListByTrip(ctx, trip.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned orders")
	}

	var (
		cascaded []uuid.UUID
		blockers []uuid.UUID
		causes   error
	)
	for _, order := range assigned {
		switch {
		case order.Status == step.pre:
			swapped, err := ordersRepo.UpdateStatusCAS(ctx, order.ID, step.pre, map[string]any{
				"status":         step.target,
				step.stampColumn: now,
			})
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cascade order status")
			}
			if !swapped {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
			}
			cascaded = append(cascaded, order.ID)
			tripID := trip.ID
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderStatusChanged,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Data: payloads.OrderStatusChangedEvent{
					OrderID:    order.ID,
					TripID:     &tripID,
					FromStatus: step.pre,
					ToStatus:   step.target,
					Cascaded:   true,
					ChangedAt:  now,
				},
			}); err != nil {
				return nil, err
			}

		case order.Status.AtOrPast(step.target):
			// already moved manually, nothing to do

		default:
			blockers = append(blockers, order.ID)
			causes = multierr.Append(causes,
				fmt.Errorf("order %s in status %s cannot reach %s", order.ID, order.Status, step.target))
		}
	}

	if len(blockers) > 0 {
		return nil, pkgerrors.Wrap(pkgerrors.CodeCascade, causes, "assigned orders blocked the trip transition").
			WithDetails(map[string]any{"order_ids": blockers})
	}
	return cascaded, nil
}

// RecomputeFinancials rebuilds the trip's persisted rollups from its current
// order set, driver pay terms, and expenses. It runs inside the caller's
// transaction so assignment and expense mutations stay atomic.
func (s *service) RecomputeFinancials(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	trip, err := s.findDetailed(ctx, repo, tripID)
	if err != nil {
		return err
	}
	assigned, err := s.orders.WithTx(tx).ListByTrip(ctx, tripID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned orders")
	}

	var totalRevenue, brokerFees, miles decimal.Decimal
	for _, order := range assigned {
		totalRevenue = totalRevenue.Add(order.Revenue)
		brokerFees = brokerFees.Add(order.BrokerFee)
		if order.DistanceMiles.Valid {
			miles = miles.Add(order.DistanceMiles.Decimal)
		}
	}

	driverPay := decimal.Zero
	if trip.Driver != nil {
		switch trip.Driver.PayType {
		case enums.DriverPayTypePercentage:
			driverPay = totalRevenue.Mul(trip.Driver.PayRate).Div(decimal.NewFromInt(100))
		case enums.DriverPayTypePerMile:
			driverPay = trip.Driver.PayRate.Mul(miles)
		case enums.DriverPayTypeFlat:
			driverPay = trip.Driver.PayRate
		}
	}
	driverPay = driverPay.Round(2)

	totalExpenses := decimal.Zero
	for _, expense := range trip.Expenses {
		totalExpenses = totalExpenses.Add(expense.Amount)
	}

	netProfit := totalRevenue.
		Sub(trip.CarrierPay).
		Sub(brokerFees).
		Sub(driverPay).
		Sub(totalExpenses)

	if err := repo.Update(ctx, tripID, map[string]any{
		"total_revenue":     totalRevenue,
		"total_broker_fees": brokerFees,
		"driver_pay":        driverPay,
		"total_expenses":    totalExpenses,
		"net_profit":        netProfit,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update trip rollups")
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventTripFinancialsRecomputed,
		AggregateType: enums.AggregateTrip,
		AggregateID:   tripID,
		Version:       1,
		Data: payloads.TripFinancialsRecomputedEvent{
			TripID:          tripID,
			TotalRevenue:    totalRevenue,
			TotalBrokerFees: brokerFees,
			DriverPay:       driverPay,
			TotalExpenses:   totalExpenses,
			NetProfit:       netProfit,
		},
	})
}

// Route returns the reconciled sequence for display along with ordering
// warnings. A stale sequence is served as-is; replacing it is the caller's
// decision.
func (s *service) Route(ctx context.Context, tripID uuid.UUID) (*RouteView, error) {
	trip, err := s.findTrip(ctx, s.repo, tripID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.orders.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned orders")
	}
	stops, stale := routing.Reconcile(trip.RouteStops, assigned)
	return &RouteView{
		Stops:    stops,
		Stale:    stale,
		Warnings: routing.Validate(stops),
	}, nil
}

// SaveRoute overwrites the stored sequence with the supplied one after
// checking membership. Ordering warnings never block the save; they ride
// along with the success response.
func (s *service) SaveRoute(ctx context.Context, tripID uuid.UUID, stops types.RouteStops) (*RouteView, error) {
	var view *RouteView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.findTrip(ctx, repo, tripID); err != nil {
			return err
		}
		assigned, err := s.orders.WithTx(tx).ListByTrip(ctx, tripID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned orders")
		}
		if err := routing.ValidateMembership(stops, assigned); err != nil {
			return err
		}

		warnings := routing.Validate(stops)
		if err := repo.UpdateRouteStops(ctx, tripID, stops); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save route sequence")
		}
		view = &RouteView{Stops: stops, Warnings: warnings}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTripRouteSaved,
			AggregateType: enums.AggregateTrip,
			AggregateID:   tripID,
			Version:       1,
			Data: payloads.TripRouteSavedEvent{
				TripID:   tripID,
				Stops:    stops,
				Warnings: warningStrings(warnings),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ApplyDefaultRoute recomputes the deterministic default sequence from the
// current order set and saves it, replacing whatever was stored.
func (s *service) ApplyDefaultRoute(ctx context.Context, tripID uuid.UUID) (*RouteView, error) {
	var view *RouteView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.findTrip(ctx, repo, tripID); err != nil {
			return err
		}
		assigned, err := s.orders.WithTx(tx).ListByTrip(ctx, tripID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned orders")
		}

		stops := routing.DefaultSequence(assigned)
		if err := repo.UpdateRouteStops(ctx, tripID, stops); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save route sequence")
		}
		view = &RouteView{Stops: stops, Warnings: routing.Validate(stops)}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTripRouteSaved,
			AggregateType: enums.AggregateTrip,
			AggregateID:   tripID,
			Version:       1,
			Data: payloads.TripRouteSavedEvent{
				TripID: tripID,
				Stops:  stops,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) swapStatus(ctx context.Context, repo Repository, trip *models.Trip, updates map[string]any) error {
	swapped, err := repo.UpdateStatusCAS(ctx, trip.ID, trip.Status, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update trip status")
	}
	if !swapped {
		return pkgerrors.New(pkgerrors.CodeConflict, "trip status changed concurrently")
	}
	return nil
}

func (s *service) observe(operation string, started time.Time, err error) {
	s.metrics.ObserveTransition("trip", operation, time.Since(started))
	if err == nil {
		s.metrics.IncTransitionSuccess("trip", operation)
		return
	}
	if pkgerrors.IsCode(err, pkgerrors.CodeCascade) {
		s.metrics.IncCascadeBlocked(operation)
	}
	reason := "error"
	if coded := pkgerrors.As(err); coded != nil {
		reason = string(coded.Code())
	}
	s.metrics.IncTransitionFailure("trip", operation, reason)
}

func (s *service) findTrip(ctx context.Context, repo Repository, tripID uuid.UUID) (*models.Trip, error) {
	trip, err := repo.Find(ctx, tripID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
	}
	return trip, nil
}

func (s *service) findDetailed(ctx context.Context, repo Repository, tripID uuid.UUID) (*models.Trip, error) {
	trip, err := repo.FindDetailed(ctx, tripID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
	}
	return trip, nil
}

func warningStrings(warnings []routing.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = string(w)
	}
	return out
}
