// Package orders exposes the order lifecycle and assignment endpoints.
package orders

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vroomxtransport/vroomx-backend/api/responses"
	"github.com/vroomxtransport/vroomx-backend/api/validators"
	"github.com/vroomxtransport/vroomx-backend/internal/assignment"
	internalorders "github.com/vroomxtransport/vroomx-backend/internal/orders"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
	"github.com/vroomxtransport/vroomx-backend/pkg/logger"
	"github.com/vroomxtransport/vroomx-backend/pkg/pagination"
)

type createOrderRequest struct {
	BrokerID              *uuid.UUID           `json:"broker_id,omitempty"`
	VehicleYear           *int                 `json:"vehicle_year,omitempty" validate:"omitempty,min=1900,max=2100"`
	VehicleMake           *string              `json:"vehicle_make,omitempty"`
	VehicleModel          *string              `json:"vehicle_model,omitempty"`
	VehicleVIN            *string              `json:"vehicle_vin,omitempty" validate:"omitempty,max=17"`
	Revenue               decimal.Decimal      `json:"revenue"`
	CarrierPay            decimal.Decimal      `json:"carrier_pay"`
	BrokerFee             decimal.Decimal      `json:"broker_fee"`
	LocalFee              decimal.Decimal      `json:"local_fee"`
	DistanceMiles         *decimal.Decimal     `json:"distance_miles,omitempty"`
	PickupLocation        *string              `json:"pickup_location,omitempty"`
	PickupCity            *string              `json:"pickup_city,omitempty"`
	PickupState           *string              `json:"pickup_state,omitempty" validate:"omitempty,len=2"`
	PickupZip             *string              `json:"pickup_zip,omitempty" validate:"omitempty,max=10"`
	PickupContact         *string              `json:"pickup_contact,omitempty"`
	DeliveryLocation      *string              `json:"delivery_location,omitempty"`
	DeliveryCity          *string              `json:"delivery_city,omitempty"`
	DeliveryState         *string              `json:"delivery_state,omitempty" validate:"omitempty,len=2"`
	DeliveryZip           *string              `json:"delivery_zip,omitempty" validate:"omitempty,max=10"`
	DeliveryContact       *string              `json:"delivery_contact,omitempty"`
	ScheduledPickupDate   *time.Time           `json:"scheduled_pickup_date,omitempty"`
	ScheduledDeliveryDate *time.Time           `json:"scheduled_delivery_date,omitempty"`
	Notes                 *string              `json:"notes,omitempty"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type assignOrderRequest struct {
	TripID uuid.UUID `json:"trip_id" validate:"required"`
}

// Create registers a new order in status new.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.CreateOrderInput{
			BrokerID:              req.BrokerID,
			VehicleYear:           req.VehicleYear,
			VehicleMake:           req.VehicleMake,
			VehicleModel:          req.VehicleModel,
			VehicleVIN:            req.VehicleVIN,
			Revenue:               req.Revenue,
			CarrierPay:            req.CarrierPay,
			BrokerFee:             req.BrokerFee,
			LocalFee:              req.LocalFee,
			PickupLocation:        req.PickupLocation,
			PickupCity:            req.PickupCity,
			PickupState:           req.PickupState,
			PickupZip:             req.PickupZip,
			PickupContact:         req.PickupContact,
			DeliveryLocation:      req.DeliveryLocation,
			DeliveryCity:          req.DeliveryCity,
			DeliveryState:         req.DeliveryState,
			DeliveryZip:           req.DeliveryZip,
			DeliveryContact:       req.DeliveryContact,
			ScheduledPickupDate:   req.ScheduledPickupDate,
			ScheduledDeliveryDate: req.ScheduledDeliveryDate,
			Notes:                 req.Notes,
		}
		if req.DistanceMiles != nil {
			input.DistanceMiles = decimal.NullDecimal{Decimal: *req.DistanceMiles, Valid: true}
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalorders.NewOrderView(*order))
	}
}

// Detail returns a single order.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderView(*order))
	}
}

// List returns a cursor page of orders, optionally filtered by status and trip.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		var filters internalorders.OrderFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseOrderStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("trip_id")); raw != "" {
			tripID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid trip id filter"))
				return
			}
			filters.TripID = &tripID
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderPage(*list))
	}
}

// Advance moves the order one step forward in its lifecycle.
func Advance(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Advance(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderView(*order))
	}
}

// Rollback moves the order one step backward in its lifecycle.
func Rollback(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Rollback(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderView(*order))
	}
}

// Cancel terminates the order with a required reason.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), orderID, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderView(*order))
	}
}

// Assign places the order on a trip and returns the trip's utilization.
func Assign(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Assign(r.Context(), orderID, req.TripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// Unassign removes the order from its trip and resets it to status new.
func Unassign(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Unassign(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "unassigned"})
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}
