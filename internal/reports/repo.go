package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
	pkgerrors "github.com/vroomxtransport/vroomx-backend/pkg/errors"
)

// Period bounds a report window. Start is inclusive, End is exclusive.
type Period struct {
	Start time.Time
	End   time.Time
}

// Repository loads pre-summed aggregates for the KPI engine.
type Repository interface {
	LoadAggregates(ctx context.Context, period Period) (*KPIAggregates, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns the gorm-backed aggregates repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type orderSums struct {
	TotalRevenue    decimal.Decimal `gorm:"column:total_revenue"`
	TotalBrokerFees decimal.Decimal `gorm:"column:total_broker_fees"`
	TotalLocalFees  decimal.Decimal `gorm:"column:total_local_fees"`
	TotalCarrierPay decimal.Decimal `gorm:"column:total_carrier_pay"`
	TotalMiles      decimal.Decimal `gorm:"column:total_miles"`
	OrderCount      int64           `gorm:"column:order_count"`
}

type tripSums struct {
	TotalDriverPay     decimal.Decimal `gorm:"column:total_driver_pay"`
	TruckCount         int64           `gorm:"column:truck_count"`
	CompletedTripCount int64           `gorm:"column:completed_trip_count"`
}

type expenseSum struct {
	Category enums.ExpenseCategory `gorm:"column:category"`
	Amount   decimal.Decimal       `gorm:"column:amount"`
}

func (r *repository) LoadAggregates(ctx context.Context, period Period) (*KPIAggregates, error) {
	var orders orderSums
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(revenue), 0)        AS total_revenue,
			COALESCE(SUM(broker_fee), 0)     AS total_broker_fees,
			COALESCE(SUM(local_fee), 0)      AS total_local_fees,
			COALESCE(SUM(carrier_pay), 0)    AS total_carrier_pay,
			COALESCE(SUM(distance_miles), 0) AS total_miles,
			COUNT(*)                         AS order_count
		FROM orders
		WHERE status <> 'cancelled'
		  AND created_at >= ? AND created_at < ?`,
		period.Start, period.End).Scan(&orders).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to aggregate orders")
	}

	var trips tripSums
	err = r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(driver_pay), 0)                       AS total_driver_pay,
			COUNT(DISTINCT truck_id)                           AS truck_count,
			COUNT(*) FILTER (WHERE status = 'completed')       AS completed_trip_count
		FROM trips
		WHERE created_at >= ? AND created_at < ?`,
		period.Start, period.End).Scan(&trips).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to aggregate trips")
	}

	var expenseRows []expenseSum
	err = r.db.WithContext(ctx).Raw(`
		SELECT te.category AS category, COALESCE(SUM(te.amount), 0) AS amount
		FROM trip_expenses te
		JOIN trips t ON t.id = te.trip_id
		WHERE t.created_at >= ? AND t.created_at < ?
		GROUP BY te.category`,
		period.Start, period.End).Scan(&expenseRows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to aggregate trip expenses")
	}

	agg := &KPIAggregates{
		TotalRevenue:       orders.TotalRevenue,
		TotalBrokerFees:    orders.TotalBrokerFees,
		TotalLocalFees:     orders.TotalLocalFees,
		TotalCarrierPay:    orders.TotalCarrierPay,
		TotalMiles:         orders.TotalMiles,
		OrderCount:         orders.OrderCount,
		TotalDriverPay:     trips.TotalDriverPay,
		TruckCount:         trips.TruckCount,
		CompletedTripCount: trips.CompletedTripCount,
		ExpensesByCategory: make(map[enums.ExpenseCategory]decimal.Decimal, len(expenseRows)),
	}
	for _, row := range expenseRows {
		agg.ExpensesByCategory[row.Category] = row.Amount
		agg.TotalTripExpenses = agg.TotalTripExpenses.Add(row.Amount)
	}
	return agg, nil
}
