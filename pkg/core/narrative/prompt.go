package narrative

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"fpna_dashboard/pkg/models"
)

// SystemPrompt frames every summary request.
const SystemPrompt = "You are an FP&A analyst. You write for executives and stay close to the figures you are given."

const userPromptTmpl = `Write a crisp executive summary (4-6 sentences) for {{.Month}}.
Actuals:
- Actual: {{.Actual}}
- Budget: {{.Budget}}
- Variance: {{.Variance}} ({{.VariancePct}}%)
- Gross Margin %: {{.GrossMarginPct}}
Favorable depts: {{.Favorable}}
Unfavorable depts: {{.Unfavorable}}
Forward look (if provided):
- {{.OutlookSummary}}
- {{.OutlookDetails}}
Be specific, neutral, and include 1-2 actionable next steps. Return markdown with a bold title.`

var userPrompt = template.Must(template.New("exec_summary").Parse(userPromptTmpl))

func fixed(v models.Figure) string {
	f, ok := v.Float()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", f)
}

// BuildPrompt renders the user prompt for in.
func BuildPrompt(in *Inputs) (string, error) {
	k := in.KPIs
	favorable, unfavorable := rankByVariance(in.Departments)
	vars := map[string]string{
		"Month":          k.Month.String(),
		"Actual":         fixed(k.ActualTotal),
		"Budget":         fixed(k.BudgetTotal),
		"Variance":       fixed(k.VarianceTotal),
		"VariancePct":    fixed(k.VariancePct),
		"GrossMarginPct": fixed(k.GrossMarginPct),
		"Favorable":      departmentList(favorable),
		"Unfavorable":    departmentList(unfavorable),
		"OutlookSummary": "n/a",
		"OutlookDetails": "n/a",
	}
	if o := ForwardLook(in.Forecast); o != nil {
		vars["OutlookSummary"], vars["OutlookDetails"] = o.lines()
	}

	var buf bytes.Buffer
	if err := userPrompt.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
