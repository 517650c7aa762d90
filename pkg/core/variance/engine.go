// Package variance computes the derived per-row metrics and the four aggregate
// views (department rollup, monthly trend, department-by-month variance and
// latest-month KPIs) from the monthly financial dataset.
package variance

import (
	"errors"
	"sort"

	"fpna_dashboard/pkg/core/store"
	"fpna_dashboard/pkg/models"
)

// ErrNoRecords is returned by Analyze on an empty dataset; the latest month
// is undefined without at least one row.
var ErrNoRecords = errors.New("no financial records")

// Derive applies the gross profit and budget variance formulas row by row.
// Ratios with a zero or undefined denominator stay undefined.
func Derive(records []models.FinancialRecord) []models.DerivedRecord {
	out := make([]models.DerivedRecord, len(records))
	for i, r := range records {
		gp := r.Revenue.Sub(r.Expense)
		v := r.Revenue.Sub(r.ForecastRevenue)
		out[i] = models.DerivedRecord{
			FinancialRecord:    r,
			GrossProfit:        gp,
			GrossMarginPct:     models.RatioPercent(gp, r.Revenue),
			VarianceVsForecast: v,
			VariancePct:        models.RatioPercent(v, r.ForecastRevenue),
		}
	}
	return out
}

type deptTotals struct {
	name     string
	actual   models.Accumulator
	budget   models.Accumulator
	variance models.Accumulator
	margin   models.Accumulator
}

// SummarizeByDepartment rolls the derived rows up per department, ordered by
// Actual_Total descending. Ties keep the order departments were first seen.
func SummarizeByDepartment(derived []models.DerivedRecord) []models.DepartmentSummary {
	var groups []*deptTotals
	index := make(map[string]*deptTotals)
	for _, r := range derived {
		g, ok := index[r.Department]
		if !ok {
			g = &deptTotals{name: r.Department}
			index[r.Department] = g
			groups = append(groups, g)
		}
		g.actual.Add(r.Revenue)
		g.budget.Add(r.ForecastRevenue)
		g.variance.Add(r.VarianceVsForecast)
		g.margin.Add(r.GrossMarginPct)
	}

	out := make([]models.DepartmentSummary, len(groups))
	for i, g := range groups {
		budget := g.budget.Sum()
		variance := g.variance.Sum()
		out[i] = models.DepartmentSummary{
			Department:        g.name,
			ActualTotal:       g.actual.Sum(),
			BudgetTotal:       budget,
			VarianceTotal:     variance,
			AvgGrossMarginPct: g.margin.Mean().Round(models.OutputPlaces),
			VariancePct:       models.RatioPercent(variance, budget),
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].ActualTotal.Decimal()
		b, _ := out[j].ActualTotal.Decimal()
		return a.GreaterThan(b)
	})
	return out
}

type monthTotals struct {
	month  models.Month
	actual models.Accumulator
	budget models.Accumulator
	profit models.Accumulator
}

// SummarizeByMonth sums revenue, budget and gross profit per month in
// chronological order. YoY_Actual_Revenue compares against the month exactly
// twelve months back; a missing or zero prior month leaves it undefined.
func SummarizeByMonth(derived []models.DerivedRecord) []models.MonthlyTrend {
	index := make(map[int]*monthTotals)
	for _, r := range derived {
		key := r.Month.Index()
		g, ok := index[key]
		if !ok {
			g = &monthTotals{month: r.Month}
			index[key] = g
		}
		g.actual.Add(r.Revenue)
		g.budget.Add(r.ForecastRevenue)
		g.profit.Add(r.GrossProfit)
	}

	keys := make([]int, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]models.MonthlyTrend, len(keys))
	for i, k := range keys {
		g := index[k]
		actual := g.actual.Sum()
		yoy := models.Unknown()
		if prior, ok := index[k-12]; ok {
			yoy = models.Change(actual, prior.actual.Sum())
		}
		out[i] = models.MonthlyTrend{
			Month:            g.month,
			ActualRevenue:    actual,
			BudgetForecast:   g.budget.Sum(),
			GrossProfit:      g.profit.Sum(),
			YoYActualRevenue: yoy,
		}
	}
	return out
}

// DepartmentVariance returns the per-row variance view sorted by month, then
// department.
func DepartmentVariance(derived []models.DerivedRecord) []models.DepartmentVariance {
	out := make([]models.DepartmentVariance, len(derived))
	for i, r := range derived {
		out[i] = models.DepartmentVariance{
			Month:              r.Month,
			Department:         r.Department,
			Revenue:            r.Revenue,
			ForecastRevenue:    r.ForecastRevenue,
			VarianceVsForecast: r.VarianceVsForecast,
			VariancePct:        r.VariancePct,
			GrossMarginPct:     r.GrossMarginPct,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month.Before(out[j].Month)
		}
		return out[i].Department < out[j].Department
	})
	return out
}

// LatestKPIs aggregates the rows of the most recent month only. The second
// return value is false when derived is empty.
func LatestKPIs(derived []models.DerivedRecord) (models.LatestKPIs, bool) {
	if len(derived) == 0 {
		return models.LatestKPIs{}, false
	}
	latest := derived[0].Month
	for _, r := range derived[1:] {
		if latest.Before(r.Month) {
			latest = r.Month
		}
	}

	var actual, budget, variance, profit models.Accumulator
	for _, r := range derived {
		if r.Month != latest {
			continue
		}
		actual.Add(r.Revenue)
		budget.Add(r.ForecastRevenue)
		variance.Add(r.VarianceVsForecast)
		profit.Add(r.GrossProfit)
	}

	return models.LatestKPIs{
		Month:          latest,
		ActualTotal:    actual.Sum(),
		BudgetTotal:    budget.Sum(),
		VarianceTotal:  variance.Sum(),
		VariancePct:    models.Percent(variance.Sum(), budget.Sum()),
		GrossMarginPct: models.Percent(profit.Sum(), actual.Sum()),
	}, true
}

// Report bundles the four aggregate views.
type Report struct {
	Derived            []models.DerivedRecord
	Summary            []models.DepartmentSummary
	Trend              []models.MonthlyTrend
	DepartmentVariance []models.DepartmentVariance
	Latest             models.LatestKPIs
}

// Analyze runs every aggregation over records.
func Analyze(records []models.FinancialRecord) (*Report, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	derived := Derive(records)
	latest, _ := LatestKPIs(derived)
	return &Report{
		Derived:            derived,
		Summary:            SummarizeByDepartment(derived),
		Trend:              SummarizeByMonth(derived),
		DepartmentVariance: DepartmentVariance(derived),
		Latest:             latest,
	}, nil
}

// Tables returns the report's output tables in write order.
func (r *Report) Tables() []store.Table {
	return []store.Table{
		{Name: models.VarianceSummaryFile, Rows: r.Summary},
		{Name: models.MonthlyTrendFile, Rows: r.Trend},
		{Name: models.DepartmentVarianceFile, Rows: r.DepartmentVariance},
		{Name: models.LatestKPIsFile, Rows: []models.LatestKPIs{r.Latest}},
	}
}
