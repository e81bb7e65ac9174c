package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vroomxtransport/vroomx-backend/pkg/db/models"
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

// TripFinancials refreshes a trip's persisted rollups after its order set or
// monetary inputs changed.
type TripFinancials interface {
	RecomputeFinancials(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) error
}

// Service drives the order status transition engine.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	Advance(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	Rollback(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID, reason string) (*models.Order, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	outbox     outboxPublisher
	financials TripFinancials
	metrics    *metrics.DispatchMetrics
}

// NewService builds the order transition service. The financials dependency
// keeps a trip's rollups honest when a rollback detaches an order from it.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, financials TripFinancials, m *metrics.DispatchMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if financials == nil {
		return nil, fmt.Errorf("trip financials required")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		outbox:     publisher,
		financials: financials,
		metrics:    m,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	for name, amount := range map[string]interface{ IsNegative() bool }{
		"revenue":     input.Revenue,
		"carrier pay": input.CarrierPay,
		"broker fee":  input.BrokerFee,
		"local fee":   input.LocalFee,
	} {
		if amount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, name+" must not be negative")
		}
	}
	if input.DistanceMiles.Valid && input.DistanceMiles.Decimal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "distance must not be negative")
	}

	order := &models.Order{
		Status:                enums.OrderStatusNew,
		BrokerID:              input.BrokerID,
		VehicleYear:           input.VehicleYear,
		VehicleMake:           input.VehicleMake,
		VehicleModel:          input.VehicleModel,
		VehicleVIN:            input.VehicleVIN,
		Revenue:               input.Revenue,
		CarrierPay:            input.CarrierPay,
		BrokerFee:             input.BrokerFee,
		LocalFee:              input.LocalFee,
		DistanceMiles:         input.DistanceMiles,
		PickupLocation:        input.PickupLocation,
		PickupCity:            input.PickupCity,
		PickupState:           input.PickupState,
		PickupZip:             input.PickupZip,
		PickupContact:         input.PickupContact,
		DeliveryLocation:      input.DeliveryLocation,
		DeliveryCity:          input.DeliveryCity,
		DeliveryState:         input.DeliveryState,
		DeliveryZip:           input.DeliveryZip,
		DeliveryContact:       input.DeliveryContact,
		ScheduledPickupDate:   input.ScheduledPickupDate,
		ScheduledDeliveryDate: input.ScheduledDeliveryDate,
		Notes:                 input.Notes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		order = created
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderCreatedEvent{
				OrderID:  order.ID,
				BrokerID: order.BrokerID,
				Revenue:  order.Revenue,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// Advance moves the order one step along the forward table, stamping the
// actual pickup or delivery date when the new status requires it. The status
// write is a compare-and-swap against the status read inside the same
// transaction; a lost race surfaces as CONFLICT, a retry of an
// already-advanced order as STATE_CONFLICT.
func (s *service) Advance(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	started := time.Now()
	var out *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := findOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}

		next, ok := order.Status.Next()
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order cannot advance from %s", order.Status))
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": next}
		switch next {
		case enums.OrderStatusPickedUp:
			updates["actual_pickup_date"] = now
		case enums.OrderStatusDelivered:
			updates["actual_delivery_date"] = now
		}

		from := order.Status
		if err := s.swapStatus(ctx, repo, order, updates); err != nil {
			return err
		}
		order.Status = next
		switch next {
		case enums.OrderStatusPickedUp:
			order.ActualPickupDate = &now
		case enums.OrderStatusDelivered:
			order.ActualDeliveryDate = &now
		}
		out = order

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:    order.ID,
				TripID:     order.TripID,
				FromStatus: from,
				ToStatus:   next,
				ChangedAt:  now,
			},
		})
	})
	s.observe("advance", started, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Rollback moves the order one step backwards and clears exactly the date
// stamp the matching forward step set. Rolling back to new also detaches the
// order from its trip, keeping the no-trip-while-new invariant, and refreshes
// the former trip's rollups.
func (s *service) Rollback(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	started := time.Now()
	var out *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := findOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}

		prev, ok := order.Status.Prev()
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order cannot roll back from %s", order.Status))
		}

		updates := map[string]any{"status": prev}
		switch order.Status {
		case enums.OrderStatusPickedUp:
			updates["actual_pickup_date"] = nil
		case enums.OrderStatusDelivered:
			updates["actual_delivery_date"] = nil
		}
		formerTrip := order.TripID
		if prev == enums.OrderStatusNew && formerTrip != nil {
			updates["trip_id"] = nil
		}

		from := order.Status
		if err := s.swapStatus(ctx, repo, order, updates); err != nil {
			return err
		}
		order.Status = prev
		switch from {
		case enums.OrderStatusPickedUp:
			order.ActualPickupDate = nil
		case enums.OrderStatusDelivered:
			order.ActualDeliveryDate = nil
		}
		if prev == enums.OrderStatusNew && formerTrip != nil {
			order.TripID = nil
			if err := s.financials.RecomputeFinancials(ctx, tx, *formerTrip); err != nil {
				return err
			}
		}
		out = order

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:    order.ID,
				TripID:     order.TripID,
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

// Cancel is allowed only while the order is new, assigned, or picked up, and
// always requires a reason. The reason is stored verbatim.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, reason string) (*models.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	started := time.Now()
	var out *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := findOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}

		if !order.Status.IsCancellable() {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("order in status %s cannot be cancelled", order.Status))
		}

		updates := map[string]any{
			"status":        enums.OrderStatusCancelled,
			"cancel_reason": reason,
		}
		from := order.Status
		if err := s.swapStatus(ctx, repo, order, updates); err != nil {
			return err
		}
		order.Status = enums.OrderStatusCancelled
		order.CancelReason = &reason
		out = order

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderCanceledEvent{
				OrderID:    order.ID,
				FromStatus: from,
				Reason:     reason,
				CanceledAt: time.Now().UTC(),
			},
		})
	})
	s.observe("cancel", started, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) swapStatus(ctx context.Context, repo Repository, order *models.Order, updates map[string]any) error {
	swapped, err := repo.UpdateStatusCAS(ctx, order.ID, order.Status, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !swapped {
		return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
	}
	return nil
}

func (s *service) observe(operation string, started time.Time, err error) {
	s.metrics.ObserveTransition("order", operation, time.Since(started))
	if err == nil {
		s.metrics.IncTransitionSuccess("order", operation)
		return
	}
	reason := "error"
	if coded := pkgerrors.As(err); coded != nil {
		reason = string(coded.Code())
	}
	s.metrics.IncTransitionFailure("order", operation, reason)
}

func findOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
