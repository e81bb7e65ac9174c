// Package reports exposes the period KPI endpoint.
package reports

import (
	"net/http"

	"github.com/vroomxtransport/vroomx-backend/api/responses"
	"github.com/vroomxtransport/vroomx-backend/api/validators"
	internalreports "github.com/vroomxtransport/vroomx-backend/internal/reports"
	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
	"github.com/vroomxtransport/vroomx-backend/pkg/logger"
)

// KPIs returns the derived KPI set and expense breakdown for a period.
func KPIs(svc internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := validators.ParseQueryTime(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryTime(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if start.IsZero() || end.IsZero() {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "start and end query parameters are required"))
			return
		}

		view, err := svc.KPIs(r.Context(), internalreports.Period{Start: start, End: end})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
