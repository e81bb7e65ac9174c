// Package reports derives period KPIs from pre-summed aggregates. The engine
// is pure: storage supplies one KPIAggregates record and the functions here
// only transform it. Zero denominators yield null metrics, never NaN or
// infinity.
package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vroomxtransport/vroomx-backend/pkg/enums"
)

// KPIAggregates is the pre-summed input for one reporting period.
type KPIAggregates struct {
	TotalRevenue       decimal.Decimal
	TotalBrokerFees    decimal.Decimal
	TotalLocalFees     decimal.Decimal
	TotalDriverPay     decimal.Decimal
	TotalTripExpenses  decimal.Decimal
	TotalCarrierPay    decimal.Decimal
	TotalMiles         decimal.Decimal
	OrderCount         int64
	TruckCount         int64
	CompletedTripCount int64
	ExpensesByCategory map[enums.ExpenseCategory]decimal.Decimal
}

// KPIReport carries the derived period metrics. Ratio metrics are null when
// their denominator is zero.
type KPIReport struct {
	TotalRevenue       decimal.Decimal     `json:"total_revenue"`
	NetProfit          decimal.Decimal     `json:"net_profit"`
	TotalExpenses      decimal.Decimal     `json:"total_expenses"`
	CleanGross         decimal.Decimal     `json:"clean_gross"`
	TruckGross         decimal.Decimal     `json:"truck_gross"`
	OperatingRatio     decimal.NullDecimal `json:"operating_ratio"`
	GrossMargin        decimal.NullDecimal `json:"gross_margin"`
	TruckGrossMargin   decimal.NullDecimal `json:"truck_gross_margin"`
	RevenuePerMile     decimal.NullDecimal `json:"rpm"`
	CostPerMile        decimal.NullDecimal `json:"cpm"`
	ProfitPerMile      decimal.NullDecimal `json:"ppm"`
	AvgPayPerOrder     decimal.NullDecimal `json:"appo"`
	OrderCount         int64               `json:"order_count"`
	TruckCount         int64               `json:"truck_count"`
	CompletedTripCount int64               `json:"completed_trip_count"`
}

// ExpenseSlice is one row of the period expense breakdown.
type ExpenseSlice struct {
	Category   string          `json:"category"`
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

var hundred = decimal.NewFromInt(100)

// ComputeKPIs derives the full metric set from one aggregate record.
func ComputeKPIs(agg KPIAggregates) KPIReport {
	netProfit := agg.TotalRevenue.
		Sub(agg.TotalBrokerFees).
		Sub(agg.TotalLocalFees).
		Sub(agg.TotalDriverPay).
		Sub(agg.TotalTripExpenses)

	totalExpenses := agg.TotalBrokerFees.
		Add(agg.TotalLocalFees).
		Add(agg.TotalDriverPay).
		Add(agg.TotalTripExpenses).
		Add(agg.TotalCarrierPay)

	cleanGross := agg.TotalRevenue.Sub(agg.TotalBrokerFees).Sub(agg.TotalLocalFees)
	truckGross := cleanGross.Sub(agg.TotalDriverPay)

	report := KPIReport{
		TotalRevenue:       agg.TotalRevenue,
		NetProfit:          netProfit,
		TotalExpenses:      totalExpenses,
		CleanGross:         cleanGross,
		TruckGross:         truckGross,
		OrderCount:         agg.OrderCount,
		TruckCount:         agg.TruckCount,
		CompletedTripCount: agg.CompletedTripCount,
	}

	report.OperatingRatio = percentOf(totalExpenses, agg.TotalRevenue)
	report.GrossMargin = percentOf(netProfit, agg.TotalRevenue)
	report.TruckGrossMargin = percentOf(truckGross, agg.TotalRevenue)

	report.RevenuePerMile = ratio(agg.TotalRevenue, agg.TotalMiles)
	report.CostPerMile = ratio(totalExpenses, agg.TotalMiles)
	report.ProfitPerMile = ratio(netProfit, agg.TotalMiles)

	if agg.OrderCount > 0 {
		report.AvgPayPerOrder = available(agg.TotalRevenue.Div(decimal.NewFromInt(agg.OrderCount)).Round(2))
	}

	return report
}

// ExpenseBreakdown lists every non-zero cost bucket with its share of the
// period's total expenses, sorted descending by amount. Percentages are
// rounded to one decimal.
func ExpenseBreakdown(agg KPIAggregates) []ExpenseSlice {
	totalExpenses := agg.TotalBrokerFees.
		Add(agg.TotalLocalFees).
		Add(agg.TotalDriverPay).
		Add(agg.TotalTripExpenses).
		Add(agg.TotalCarrierPay)

	slices := make([]ExpenseSlice, 0, len(agg.ExpensesByCategory)+4)
	appendSlice := func(category, label string, amount decimal.Decimal) {
		if amount.IsZero() {
			return
		}
		slice := ExpenseSlice{Category: category, Label: label, Amount: amount}
		if totalExpenses.IsPositive() {
			slice.Percentage = amount.Div(totalExpenses).Mul(hundred).Round(1)
		}
		slices = append(slices, slice)
	}

	for _, category := range []enums.ExpenseCategory{
		enums.ExpenseCategoryFuel,
		enums.ExpenseCategoryTolls,
		enums.ExpenseCategoryRepairs,
		enums.ExpenseCategoryLodging,
		enums.ExpenseCategoryInsurance,
		enums.ExpenseCategoryMisc,
	} {
		appendSlice(string(category), categoryLabel(category), agg.ExpensesByCategory[category])
	}
	appendSlice("driver_pay", "Driver pay", agg.TotalDriverPay)
	appendSlice("broker_fees", "Broker fees", agg.TotalBrokerFees)
	appendSlice("local_fees", "Local fees", agg.TotalLocalFees)
	appendSlice("carrier_pay", "Carrier pay", agg.TotalCarrierPay)

	sort.SliceStable(slices, func(i, j int) bool {
		if !slices[i].Amount.Equal(slices[j].Amount) {
			return slices[i].Amount.GreaterThan(slices[j].Amount)
		}
		return slices[i].Label < slices[j].Label
	})
	return slices
}

func percentOf(numerator, denominator decimal.Decimal) decimal.NullDecimal {
	if denominator.IsZero() {
		return decimal.NullDecimal{}
	}
	return available(numerator.Div(denominator).Mul(hundred).Round(1))
}

func ratio(numerator, denominator decimal.Decimal) decimal.NullDecimal {
	if denominator.IsZero() {
		return decimal.NullDecimal{}
	}
	return available(numerator.Div(denominator).Round(2))
}

func available(value decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: value, Valid: true}
}

func categoryLabel(category enums.ExpenseCategory) string {
	switch category {
	case enums.ExpenseCategoryFuel:
		return "Fuel"
	case enums.ExpenseCategoryTolls:
		return "Tolls"
	case enums.ExpenseCategoryRepairs:
		return "Repairs"
	case enums.ExpenseCategoryLodging:
		return "Lodging"
	case enums.ExpenseCategoryInsurance:
		return "Insurance"
	case enums.ExpenseCategoryMisc:
		return "Miscellaneous"
	default:
		return string(category)
	}
}
