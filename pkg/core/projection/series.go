package projection

import (
	"sort"

	"fpna_dashboard/pkg/models"
)

// Observation is one defined monthly value.
type Observation struct {
	Month models.Month
	Value float64
}

// Point is one projected month.
type Point struct {
	Month    models.Month
	Forecast float64
	Lower    float64
	Upper    float64
}

// Series is one department's monthly revenue, sorted and gap-filled so every
// month between the first and last record is present. Months without a
// record, or with a blank revenue cell, carry an undefined value.
type Series struct {
	Department string
	Months     []models.Month
	Values     []models.Figure
}

// NewSeries builds the gap-filled series for dept from records, ignoring rows
// of other departments.
func NewSeries(dept string, records []models.RevenueRecord) Series {
	byMonth := make(map[int]models.Figure)
	first, last := 0, 0
	for _, r := range records {
		if r.Department != dept {
			continue
		}
		idx := r.Month.Index()
		if len(byMonth) == 0 || idx < first {
			first = idx
		}
		if len(byMonth) == 0 || idx > last {
			last = idx
		}
		byMonth[idx] = r.Revenue
	}

	s := Series{Department: dept}
	if len(byMonth) == 0 {
		return s
	}
	start := models.MonthFromIndex(first)
	for i := 0; i <= last-first; i++ {
		s.Months = append(s.Months, start.AddMonths(i))
		if v, ok := byMonth[first+i]; ok {
			s.Values = append(s.Values, v)
		} else {
			s.Values = append(s.Values, models.Unknown())
		}
	}
	return s
}

// Observed drops undefined values, keeping chronological order.
func (s Series) Observed() []Observation {
	out := make([]Observation, 0, len(s.Values))
	for i, v := range s.Values {
		if f, ok := v.Float(); ok {
			out = append(out, Observation{Month: s.Months[i], Value: f})
		}
	}
	return out
}

// Departments returns the distinct departments of records in sorted order.
func Departments(records []models.RevenueRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if !seen[r.Department] {
			seen[r.Department] = true
			out = append(out, r.Department)
		}
	}
	sort.Strings(out)
	return out
}

// FutureMonths returns horizon consecutive months starting right after last.
func FutureMonths(last models.Month, horizon int) []models.Month {
	out := make([]models.Month, horizon)
	for h := range out {
		out[h] = last.AddMonths(h + 1)
	}
	return out
}
