package reports

import (
	"context"
	"time"

	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
	"github.com/vroomxtransport/vroomx-backend/pkg/logger"
)

// KPIView is the full report payload for one period.
type KPIView struct {
	PeriodStart time.Time      `json:"period_start"`
	PeriodEnd   time.Time      `json:"period_end"`
	KPIs        KPIReport      `json:"kpis"`
	Expenses    []ExpenseSlice `json:"expenses"`
}

// Service computes period reports.
type Service interface {
	KPIs(ctx context.Context, period Period) (*KPIView, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the report service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reports repository is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) KPIs(ctx context.Context, period Period) (*KPIView, error) {
	if period.Start.IsZero() || period.End.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report period start and end are required")
	}
	if !period.End.After(period.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report period end must be after start")
	}

	agg, err := s.repo.LoadAggregates(ctx, period)
	if err != nil {
		return nil, err
	}

	view := &KPIView{
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		KPIs:        ComputeKPIs(*agg),
		Expenses:    ExpenseBreakdown(*agg),
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"period_start": period.Start.Format(time.RFC3339),
		"period_end":   period.End.Format(time.RFC3339),
		"order_count":  agg.OrderCount,
	}), "computed kpi report")
	return view, nil
}
