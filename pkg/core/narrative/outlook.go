package narrative

import (
	"sort"

	"fpna_dashboard/pkg/models"
)

// OutlookMonths is how many leading forecast months the forward look covers.
const OutlookMonths = 3

// DepartmentOutlook is one department's average over the outlook months and
// its distance from the pool average.
type DepartmentOutlook struct {
	Department string
	Average    float64
	DeltaPct   float64
}

// Outlook summarises the first forecast months across departments.
type Outlook struct {
	Departments []DepartmentOutlook // sorted by department
	PoolAverage float64
	// AvgMonthlyTotal is the mean over outlook months of the summed forecast.
	AvgMonthlyTotal float64
	Upside          *DepartmentOutlook
	Downside        *DepartmentOutlook
}

// ForwardLook averages each department's first OutlookMonths forecast months
// and compares it with the pool. It returns nil when no department has a
// defined forecast in that window.
func ForwardLook(points []models.ForecastPoint) *Outlook {
	byDept := make(map[string][]models.ForecastPoint)
	for _, p := range points {
		byDept[p.Department] = append(byDept[p.Department], p)
	}
	depts := make([]string, 0, len(byDept))
	for d := range byDept {
		depts = append(depts, d)
	}
	sort.Strings(depts)

	out := &Outlook{}
	monthTotals := make(map[int]float64)
	for _, d := range depts {
		rows := byDept[d]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Month.Before(rows[j].Month) })
		if len(rows) > OutlookMonths {
			rows = rows[:OutlookMonths]
		}

		sum, n := 0.0, 0
		for _, r := range rows {
			if f, ok := r.Forecast.Float(); ok {
				sum += f
				n++
				monthTotals[r.Month.Index()] += f
			}
		}
		if n == 0 {
			continue
		}
		out.Departments = append(out.Departments, DepartmentOutlook{Department: d, Average: sum / float64(n)})
	}
	if len(out.Departments) == 0 {
		return nil
	}

	for _, d := range out.Departments {
		out.PoolAverage += d.Average
	}
	out.PoolAverage /= float64(len(out.Departments))

	for i := range out.Departments {
		d := &out.Departments[i]
		if out.PoolAverage != 0 {
			d.DeltaPct = (d.Average/out.PoolAverage - 1) * 100
		}
		if out.Upside == nil || d.DeltaPct > out.Upside.DeltaPct {
			out.Upside = d
		}
		if out.Downside == nil || d.DeltaPct < out.Downside.DeltaPct {
			out.Downside = d
		}
	}

	for _, total := range monthTotals {
		out.AvgMonthlyTotal += total
	}
	out.AvgMonthlyTotal /= float64(len(monthTotals))
	return out
}
