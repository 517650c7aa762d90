// Package visual renders the dashboard charts from the persisted variance and
// forecast tables.
package visual

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"fpna_dashboard/pkg/models"
)

// Chart titles, shared with the deck slides.
const (
	TrendTitle    = "Revenue vs Budget (Trend)"
	VarianceTitle = "Variance % by Department"
	ForecastTitle = "Forecast by Department (Next 6 Months)"
)

// maxMonthTicks bounds how many month labels an axis carries.
const maxMonthTicks = 12

// Size is the rendered image size.
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultSize matches a 16:9 slide picture.
func DefaultSize() Size {
	return Size{Width: 10 * vg.Inch, Height: 5 * vg.Inch}
}

// =============================================================================
// TREND
// =============================================================================

// TrendChart plots Actual_Revenue, Budget_Forecast and Gross_Profit by month.
// Undefined values leave a gap in their series.
func TrendChart(rows []models.MonthlyTrend, size Size) ([]byte, error) {
	rows = append([]models.MonthlyTrend(nil), rows...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Month.Before(rows[j].Month) })

	p := newPlot(TrendTitle, "Month", "USD")
	months := make([]models.Month, len(rows))
	for i, r := range rows {
		months[i] = r.Month
	}
	p.X.Tick.Marker = monthTicks(months)

	series := []struct {
		name  string
		value func(models.MonthlyTrend) models.Figure
	}{
		{"Actual Revenue", func(r models.MonthlyTrend) models.Figure { return r.ActualRevenue }},
		{"Budget Forecast", func(r models.MonthlyTrend) models.Figure { return r.BudgetForecast }},
		{"Gross Profit", func(r models.MonthlyTrend) models.Figure { return r.GrossProfit }},
	}
	for i, s := range series {
		xys := make(plotter.XYs, 0, len(rows))
		for x, r := range rows {
			if v, ok := s.value(r).Float(); ok {
				xys = append(xys, plotter.XY{X: float64(x), Y: v})
			}
		}
		if err := addLine(p, s.name, xys, i); err != nil {
			return nil, err
		}
	}
	return encode(p, size)
}

// =============================================================================
// VARIANCE BY DEPARTMENT
// =============================================================================

// VarianceChart draws Variance_Pct per department as bars, highest first.
// Departments with an undefined variance keep their label with a zero bar.
func VarianceChart(rows []models.DepartmentSummary, size Size) ([]byte, error) {
	type bar struct {
		name  string
		value float64
	}
	bars := make([]bar, len(rows))
	for i, r := range rows {
		v, _ := r.VariancePct.Float()
		bars[i] = bar{name: r.Department, value: v}
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].value > bars[j].value })

	p := newPlot(VarianceTitle, "", "Variance %")
	if len(bars) == 0 {
		return encode(p, size)
	}

	values := make(plotter.Values, len(bars))
	names := make([]string, len(bars))
	for i, b := range bars {
		values[i] = b.value
		names[i] = b.name
	}
	chart, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, fmt.Errorf("failed to build variance bars: %w", err)
	}
	chart.Color = plotutil.Color(0)
	chart.LineStyle.Width = 0
	p.Add(chart)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return encode(p, size)
}

// =============================================================================
// FORECAST BY DEPARTMENT
// =============================================================================

// ForecastChart draws one Forecast line per department over the forecast
// months.
func ForecastChart(points []models.ForecastPoint, size Size) ([]byte, error) {
	byDept := make(map[string][]models.ForecastPoint)
	monthSet := make(map[int]models.Month)
	for _, pt := range points {
		byDept[pt.Department] = append(byDept[pt.Department], pt)
		monthSet[pt.Month.Index()] = pt.Month
	}
	months := make([]models.Month, 0, len(monthSet))
	for _, m := range monthSet {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	position := make(map[int]int, len(months))
	for i, m := range months {
		position[m.Index()] = i
	}

	depts := make([]string, 0, len(byDept))
	for d := range byDept {
		depts = append(depts, d)
	}
	sort.Strings(depts)

	p := newPlot(ForecastTitle, "Month", "USD")
	p.X.Tick.Marker = monthTicks(months)
	for i, d := range depts {
		rows := byDept[d]
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].Month.Before(rows[b].Month) })
		xys := make(plotter.XYs, 0, len(rows))
		for _, r := range rows {
			if v, ok := r.Forecast.Float(); ok {
				xys = append(xys, plotter.XY{X: float64(position[r.Month.Index()]), Y: v})
			}
		}
		if err := addLine(p, d, xys, i); err != nil {
			return nil, err
		}
	}
	return encode(p, size)
}

// =============================================================================
// HELPERS
// =============================================================================

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func addLine(p *plot.Plot, name string, xys plotter.XYs, i int) error {
	if len(xys) == 0 {
		return nil
	}
	l, s, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("failed to build %s line: %w", name, err)
	}
	l.Color = plotutil.Color(i)
	l.Width = vg.Points(1.5)
	s.Color = plotutil.Color(i)
	s.Shape = plotutil.Shape(i)
	p.Add(l, s)
	p.Legend.Add(name, l, s)
	return nil
}

// monthTicks labels positions 0..len(months)-1, thinning labels so at most
// maxMonthTicks are shown.
func monthTicks(months []models.Month) plot.ConstantTicks {
	step := (len(months) + maxMonthTicks - 1) / maxMonthTicks
	if step < 1 {
		step = 1
	}
	ticks := make(plot.ConstantTicks, 0, len(months))
	for i, m := range months {
		label := ""
		if i%step == 0 {
			label = m.String()
		}
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: label})
	}
	return ticks
}

func encode(p *plot.Plot, size Size) ([]byte, error) {
	wt, err := p.WriterTo(size.Width, size.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create png canvas: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
