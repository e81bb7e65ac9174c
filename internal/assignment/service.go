// Package assignment places orders onto trips under a soft capacity ceiling:
// over-capacity placement is reported, never blocked.
package assignment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vroomxtransport/vroomx-backend/internal/orders"
	"github.com/vroomxtransport/vroomx-backend/internal/trips"
	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
	"github.com/vroomxtransport/vroomx-backend/pkg/metrics"
	"github.com/vroomxtransport/vroomx-backend/pkg/outbox"
	"github.com/vroomxtransport/vroomx-backend/pkg/outbox/payloads"
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

// UtilizationReport is the capacity picture returned with every assignment.
// Capacity derives from the trip's truck type; a trip without a truck reports
// capacity 0 and never flags over-capacity.
type UtilizationReport struct {
	TripID       uuid.UUID `json:"trip_id"`
	Capacity     int       `json:"capacity"`
	Utilization  int       `json:"utilization"`
	OverCapacity bool      `json:"over_capacity"`
}

// Service manages the trip/order assignment relationship.
type Service interface {
	Assign(ctx context.Context, orderID, tripID uuid.UUID) (*UtilizationReport, error)
	Unassign(ctx context.Context, orderID uuid.UUID) error
	Utilization(ctx context.Context, tripID uuid.UUID) (*UtilizationReport, error)
}

type service struct {
	orders     orders.Repository
	trips      trips.Repository
	financials tripFinancials
	tx         txRunner
	outbox     outboxPublisher
	metrics    *metrics.DispatchMetrics
}

// NewService builds the assignment service.
func NewService(ordersRepo orders.Repository, tripsRepo trips.Repository, financials tripFinancials, tx txRunner, publisher outboxPublisher, m *metrics.DispatchMetrics) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tripsRepo == nil {
		return nil, fmt.Errorf("trips repository required")
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
		orders:     ordersRepo,
		trips:      tripsRepo,
		financials: financials,
		tx:         tx,
		outbox:     publisher,
		metrics:    m,
	}, nil
}

// Assign places the order onto the trip. A new order becomes assigned; an
// order already past new keeps its status and only gains the trip reference.
// Capacity never blocks: exceeding it is reported on the returned report.
func (s *service) Assign(ctx context.Context, orderID, tripID uuid.UUID) (*UtilizationReport, error) {
	var report *UtilizationReport
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		tripsRepo := s.trips.WithTx(tx)

		order, err := s.findOrder(ctx, ordersRepo, orderID)
		if err != nil {
			return err
		}
		if order.TripID != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already assigned to a trip")
		}

		trip, err := s.findTripDetailed(ctx, tripsRepo, tripID)
		if err != nil {
			return err
		}

		if order.Status == enums.OrderStatusNew {
			swapped, err := ordersRepo.UpdateStatusCAS(ctx, order.ID, enums.OrderStatusNew, map[string]any{
				"trip_id": tripID,
				"status":  enums.OrderStatusAssigned,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign order")
			}
			if !swapped {
				return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
			}
		} else {
			// status stays untouched past new; only the reference moves
			if err := ordersRepo.Update(ctx, order.ID, map[string]any{"trip_id": tripID}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign order")
			}
		}

		assigned, err := ordersRepo.ListByTrip(ctx, tripID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned orders")
		}
		report = buildReport(trip, len(assigned))
		if report.OverCapacity {
			s.metrics.IncOverCapacity()
		}

		if err := s.financials.RecomputeFinancials(ctx, tx, tripID); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderAssigned,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderAssignedEvent{
				OrderID:      order.ID,
				TripID:       tripID,
				Capacity:     report.Capacity,
				Utilization:  report.Utilization,
				OverCapacity: report.OverCapacity,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Unassign detaches the order from its trip, resets it to new, and clears any
// actual dates accumulated while assigned. The former trip's rollups are
// refreshed in the same transaction. Terminal orders are refused: a cancelled
// or paid order keeps its trip reference and its status.
func (s *service) Unassign(ctx context.Context, orderID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)

		order, err := s.findOrder(ctx, ordersRepo, orderID)
		if err != nil {
			return err
		}
		if order.TripID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "order is not assigned to a trip")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot unassign a %s order", order.Status))
		}
		formerTrip := *order.TripID

		swapped, err := ordersRepo.UpdateStatusCAS(ctx, order.ID, order.Status, map[string]any{
			"trip_id":              nil,
			"status":               enums.OrderStatusNew,
			"actual_pickup_date":   nil,
			"actual_delivery_date": nil,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unassign order")
		}
		if !swapped {
			return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
		}

		if err := s.financials.RecomputeFinancials(ctx, tx, formerTrip); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderUnassigned,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderUnassignedEvent{
				OrderID: order.ID,
				TripID:  formerTrip,
			},
		})
	})
}

// Utilization reports the current capacity picture for a trip.
func (s *service) Utilization(ctx context.Context, tripID uuid.UUID) (*UtilizationReport, error) {
	trip, err := s.findTripDetailed(ctx, s.trips, tripID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.orders.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned orders")
	}
	return buildReport(trip, len(assigned)), nil
}

func buildReport(trip *models.Trip, utilization int) *UtilizationReport {
	report := &UtilizationReport{
		TripID:      trip.ID,
		Utilization: utilization,
	}
	if trip.Truck != nil {
		report.Capacity = trip.Truck.Type.MaxVehicles()
	}
	report.OverCapacity = report.Capacity > 0 && report.Utilization > report.Capacity
	return report
}

func (s *service) findOrder(ctx context.Context, repo orders.Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) findTripDetailed(ctx context.Context, repo trips.Repository, tripID uuid.UUID) (*models.Trip, error) {
	trip, err := repo.FindDetailed(ctx, tripID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
	}
	return trip, nil
}
