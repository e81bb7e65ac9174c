// Package trips exposes the trip lifecycle, route, and expense endpoints.
package trips

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vroomxtransport/vroomx-backend/api/responses"
	"github.com/vroomxtransport/vroomx-backend/api/validators"
	"github.com/vroomxtransport/vroomx-backend/internal/expenses"
	internaltrips "github.com/vroomxtransport/vroomx-backend/internal/trips"
	dbtypes "github.com/vroomxtransport/vroomx-backend/pkg/db/types"
	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
	"github.com/vroomxtransport/vroomx-backend/pkg/logger"
	"github.com/vroomxtransport/vroomx-backend/pkg/pagination"
)

type createTripRequest struct {
	TripNumber *string         `json:"trip_number,omitempty"`
	TruckID    *uuid.UUID      `json:"truck_id,omitempty"`
	DriverID   *uuid.UUID      `json:"driver_id,omitempty"`
	StartDate  *time.Time      `json:"start_date,omitempty"`
	EndDate    *time.Time      `json:"end_date,omitempty"`
	CarrierPay decimal.Decimal `json:"carrier_pay"`
	Notes      *string         `json:"notes,omitempty"`
}

type routeStopRequest struct {
	OrderID  uuid.UUID `json:"order_id" validate:"required"`
	StopType string    `json:"stop_type" validate:"required,oneof=pickup delivery"`
}

type saveRouteRequest struct {
	Stops []routeStopRequest `json:"stops" validate:"required,dive"`
}

type expenseRequest struct {
	Category    string          `json:"category" validate:"required"`
	CustomLabel *string         `json:"custom_label,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate *time.Time      `json:"expense_date,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
}

// Create plans a new trip in status planned.
func Create(svc internaltrips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTripRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.Create(r.Context(), internaltrips.CreateTripInput{
			TripNumber: req.TripNumber,
			TruckID:    req.TruckID,
			DriverID:   req.DriverID,
			StartDate:  req.StartDate,
			EndDate:    req.EndDate,
			CarrierPay: req.CarrierPay,
			Notes:      req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internaltrips.NewTripView(*trip))
	}
}

// Detail returns the full trip read including the reconciled route and the
// capacity picture.
func Detail(svc internaltrips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := parseTripID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internaltrips.NewTripDetailView(*detail))
	}
}

// List returns a cursor page of trips, optionally filtered by status.
func List(svc internaltrips.Service, logg *logger.Logger) http.HandlerFunc {
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

		var filters internaltrips.TripFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseTripStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internaltrips.NewTripPage(*list))
	}
}

// Advance moves the trip one step forward, cascading assigned orders.
func Advance(svc internaltrips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := parseTripID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.Advance(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internaltrips.NewTripView(*trip))
	}
}

// Rollback moves the trip one step backward. Orders are untouched.
func Rollback(svc internaltrips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := parseTripID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.Rollback(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internaltrips.NewTripView(*trip))
	}
}

// Route returns the reconciled stop sequence with ordering warnings.
func Route(svc internaltrips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := parseTripID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		route, err := svc.Route(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internaltrips.NewRoutePayload(*route))
	}
}

// SaveRoute overwrites the trip's stop sequence with the submitted one.
func SaveRoute(svc internaltrips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := parseTripID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req saveRouteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stops := make(dbtypes.RouteStops, 0, len(req.Stops))
		for _, stop := range req.Stops {
			stopType, parseErr := enums.ParseStopType(stop.StopType)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid stop type"))
				return
			}
			stops = append(stops, dbtypes.RouteStop{OrderID: stop.OrderID, StopType: stopType})
		}

		route, err := svc.SaveRoute(r.Context(), tripID, stops)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internaltrips.NewRoutePayload(*route))
	}
}

// DefaultRoute recomputes and saves the schedule-derived default sequence.
func DefaultRoute(svc internaltrips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := parseTripID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		route, err := svc.ApplyDefaultRoute(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internaltrips.NewRoutePayload(*route))
	}
}

// CreateExpense records a cost line item against the trip.
func CreateExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := parseTripID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := decodeExpenseInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Create(r.Context(), tripID, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, expenses.NewExpenseView(*expense))
	}
}

// UpdateExpense replaces an expense line item.
func UpdateExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expenseID, err := parseExpenseID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := decodeExpenseInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Update(r.Context(), expenseID, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expenses.NewExpenseView(*expense))
	}
}

// DeleteExpense removes an expense line item.
func DeleteExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expenseID, err := parseExpenseID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), expenseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func decodeExpenseInput(r *http.Request) (*expenses.ExpenseInput, error) {
	var req expenseRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		return nil, err
	}
	category, err := enums.ParseExpenseCategory(req.Category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expense category")
	}
	return &expenses.ExpenseInput{
		Category:    category,
		CustomLabel: req.CustomLabel,
		Amount:      req.Amount,
		ExpenseDate: req.ExpenseDate,
		Notes:       req.Notes,
	}, nil
}

func parseTripID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "tripId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id is required")
	}
	tripID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid trip id")
	}
	return tripID, nil
}

func parseExpenseID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "expenseId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "expense id is required")
	}
	expenseID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expense id")
	}
	return expenseID, nil
}
