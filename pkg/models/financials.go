package models

// Table file names shared by the pipeline stages and the collaborators that
// consume them.
const (
	FinancialsFile         = "financials.csv"
	VarianceSummaryFile    = "variance_summary.csv"
	MonthlyTrendFile       = "monthly_trend.csv"
	DepartmentVarianceFile = "department_variance.csv"
	LatestKPIsFile         = "latest_kpis.csv"
	ForecastFile           = "forecast_by_department.csv"
	ExecSummaryFile        = "exec_summary.md"
	TrendChartFile         = "viz_trend.png"
	VarianceChartFile      = "viz_dept_variance.png"
	ForecastChartFile      = "viz_forecast_dept.png"
	DeckFile               = "fpna_onepager.html"
	ManifestFile           = "run_manifest.yaml"
)

// FinancialRecord is one input row. (Month, Department) is unique.
type FinancialRecord struct {
	Month           Month  `csv:"Month"`
	Department      string `csv:"Department"`
	Revenue         Figure `csv:"Revenue"`
	Expense         Figure `csv:"Expense"`
	ForecastRevenue Figure `csv:"Forecast_Revenue"`
}

// FinancialsColumns are the columns the variance stage requires.
var FinancialsColumns = []string{"Month", "Department", "Revenue", "Expense", "Forecast_Revenue"}

// RevenueColumns are the columns the forecast stage requires.
var RevenueColumns = []string{"Month", "Department", "Revenue"}

// RevenueRecord is the subset of a FinancialRecord the forecast stage reads.
type RevenueRecord struct {
	Month      Month  `csv:"Month"`
	Department string `csv:"Department"`
	Revenue    Figure `csv:"Revenue"`
}

// DerivedRecord carries the per-row metrics computed from a FinancialRecord.
type DerivedRecord struct {
	FinancialRecord
	GrossProfit        Figure
	GrossMarginPct     Figure // undefined when Revenue is 0
	VarianceVsForecast Figure
	VariancePct        Figure // undefined when Forecast_Revenue is 0
}

// DepartmentSummary is one row of variance_summary.csv.
type DepartmentSummary struct {
	Department        string `csv:"Department"`
	ActualTotal       Figure `csv:"Actual_Total"`
	BudgetTotal       Figure `csv:"Budget_Total"`
	VarianceTotal     Figure `csv:"Variance_Total"`
	AvgGrossMarginPct Figure `csv:"Avg_Gross_Margin_Pct"`
	VariancePct       Figure `csv:"Variance_Pct"`
}

var DepartmentSummaryColumns = []string{"Department", "Actual_Total", "Budget_Total", "Variance_Total", "Avg_Gross_Margin_Pct", "Variance_Pct"}

// MonthlyTrend is one row of monthly_trend.csv.
type MonthlyTrend struct {
	Month            Month  `csv:"Month"`
	ActualRevenue    Figure `csv:"Actual_Revenue"`
	BudgetForecast   Figure `csv:"Budget_Forecast"`
	GrossProfit      Figure `csv:"Gross_Profit"`
	YoYActualRevenue Figure `csv:"YoY_Actual_Revenue"` // undefined without the month 12 back
}

var MonthlyTrendColumns = []string{"Month", "Actual_Revenue", "Budget_Forecast", "Gross_Profit", "YoY_Actual_Revenue"}

// DepartmentVariance is one row of department_variance.csv.
type DepartmentVariance struct {
	Month              Month  `csv:"Month"`
	Department         string `csv:"Department"`
	Revenue            Figure `csv:"Revenue"`
	ForecastRevenue    Figure `csv:"Forecast_Revenue"`
	VarianceVsForecast Figure `csv:"Variance_vs_Forecast"`
	VariancePct        Figure `csv:"Variance_Pct"`
	GrossMarginPct     Figure `csv:"Gross_Margin_Pct"`
}

// LatestKPIs is the single row of latest_kpis.csv.
type LatestKPIs struct {
	Month          Month  `csv:"Month"`
	ActualTotal    Figure `csv:"Actual_Total"`
	BudgetTotal    Figure `csv:"Budget_Total"`
	VarianceTotal  Figure `csv:"Variance_Total"`
	VariancePct    Figure `csv:"Variance_Pct"`
	GrossMarginPct Figure `csv:"Gross_Margin_Pct"`
}

var LatestKPIsColumns = []string{"Month", "Actual_Total", "Budget_Total", "Variance_Total", "Variance_Pct", "Gross_Margin_Pct"}

// ForecastPoint is one row of forecast_by_department.csv.
type ForecastPoint struct {
	Month      Month  `csv:"Month"`
	Department string `csv:"Department"`
	Forecast   Figure `csv:"Forecast"`
	Lower      Figure `csv:"Lower"`
	Upper      Figure `csv:"Upper"`
}

var ForecastColumns = []string{"Month", "Department", "Forecast", "Lower", "Upper"}
