package reports

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
	"github.com/vroomxtransport/vroomx-backend/pkg/logger"
)

type stubReportsRepo struct {
	agg     *KPIAggregates
	periods []Period
}

func (s *stubReportsRepo) LoadAggregates(ctx context.Context, period Period) (*KPIAggregates, error) {
	s.periods = append(s.periods, period)
	if s.agg == nil {
		return &KPIAggregates{}, nil
	}
	return s.agg, nil
}

func newTestService(t *testing.T, repo *stubReportsRepo) Service {
	t.Helper()
	svc, err := NewService(repo, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestKPIsRequiresBothBounds(t *testing.T) {
	svc := newTestService(t, &stubReportsRepo{})

	_, err := svc.KPIs(context.Background(), Period{End: time.Now()})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestKPIsRejectsInvertedPeriod(t *testing.T) {
	svc := newTestService(t, &stubReportsRepo{})

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.KPIs(context.Background(), Period{Start: start, End: start})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestKPIsBuildsViewFromAggregates(t *testing.T) {
	repo := &stubReportsRepo{agg: &KPIAggregates{
		TotalRevenue:   decimal.NewFromInt(5000),
		TotalDriverPay: decimal.NewFromInt(1000),
		OrderCount:     4,
	}}
	svc := newTestService(t, repo)

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	view, err := svc.KPIs(context.Background(), Period{Start: start, End: end})
	if err != nil {
		t.Fatalf("KPIs: %v", err)
	}
	if !view.PeriodStart.Equal(start) || !view.PeriodEnd.Equal(end) {
		t.Fatalf("unexpected period echo %+v", view)
	}
	if !view.KPIs.NetProfit.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("expected net profit 4000, got %s", view.KPIs.NetProfit)
	}
	if len(view.Expenses) != 1 || view.Expenses[0].Category != "driver_pay" {
		t.Fatalf("expected driver pay breakdown slice, got %+v", view.Expenses)
	}
	if len(repo.periods) != 1 {
		t.Fatal("expected one aggregate load")
	}
}
