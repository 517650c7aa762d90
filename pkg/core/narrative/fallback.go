package narrative

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fpna_dashboard/pkg/models"
)

// rankedDepartments is how many departments each variance line names.
const rankedDepartments = 2

var printer = message.NewPrinter(language.English)

func formatMoney(f models.Figure) string {
	v, ok := f.Float()
	if !ok {
		return "n/a"
	}
	return printer.Sprintf("$%.0f", v)
}

func formatSignedPct(f models.Figure) string {
	v, ok := f.Float()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", v)
}

func formatPct(f models.Figure) string {
	v, ok := f.Float()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v)
}

// rankByVariance splits departments with a defined Variance_Pct into the
// highest (favorable, descending) and lowest (unfavorable, ascending).
func rankByVariance(depts []models.DepartmentSummary) (favorable, unfavorable []models.DepartmentSummary) {
	ranked := make([]models.DepartmentSummary, 0, len(depts))
	for _, d := range depts {
		if d.VariancePct.Valid() {
			ranked = append(ranked, d)
		}
	}
	pct := func(d models.DepartmentSummary) float64 { v, _ := d.VariancePct.Float(); return v }
	sort.SliceStable(ranked, func(i, j int) bool { return pct(ranked[i]) > pct(ranked[j]) })

	n := min(rankedDepartments, len(ranked))
	favorable = append(favorable, ranked[:n]...)
	for i := len(ranked) - 1; i >= len(ranked)-n; i-- {
		unfavorable = append(unfavorable, ranked[i])
	}
	return favorable, unfavorable
}

func departmentList(depts []models.DepartmentSummary) string {
	if len(depts) == 0 {
		return "none"
	}
	parts := make([]string, len(depts))
	for i, d := range depts {
		parts[i] = fmt.Sprintf("%s (%s)", d.Department, formatSignedPct(d.VariancePct))
	}
	return strings.Join(parts, ", ")
}

// Fallback renders the rule-based summary used when no language model is
// available or the call fails.
func Fallback(in *Inputs) string {
	k := in.KPIs
	lines := []string{
		fmt.Sprintf("**Executive Summary – %s**", k.Month),
		fmt.Sprintf("• Revenue was %s vs budget %s (%s variance). Gross margin %s.",
			formatMoney(k.ActualTotal), formatMoney(k.BudgetTotal), formatSignedPct(k.VariancePct), formatPct(k.GrossMarginPct)),
	}

	if v, ok := k.VariancePct.Float(); ok {
		if v >= 0 {
			lines = append(lines, "• Overall performance was **above budget**; monitor sustainability into next month.")
		} else {
			lines = append(lines, "• Overall performance was **below budget**; investigate drivers and corrective actions.")
		}
	}

	favorable, unfavorable := rankByVariance(in.Departments)
	lines = append(lines,
		"• Biggest **favorable variances**: "+departmentList(favorable)+".",
		"• Biggest **unfavorable variances**: "+departmentList(unfavorable)+".",
	)

	if o := ForwardLook(in.Forecast); o != nil {
		summary, details := o.lines()
		lines = append(lines, "• "+summary, "• "+details)
	}

	lines = append(lines, "• Next steps: validate assumptions with department leads; update rolling forecast.")
	return strings.Join(lines, "\n")
}

func (o *Outlook) lines() (summary, details string) {
	summary = fmt.Sprintf("**Forward look (next %d months):** average projected revenue ≈ %s.",
		OutlookMonths, formatMoney(models.FromFloat(o.AvgMonthlyTotal)))
	details = fmt.Sprintf("Upside leader: %s (%+.1f%%) | Downside risk: %s (%+.1f%%)",
		o.Upside.Department, o.Upside.DeltaPct, o.Downside.Department, o.Downside.DeltaPct)
	return summary, details
}
