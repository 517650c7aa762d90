// Package narrative writes the executive summary from the persisted variance
// and forecast tables, through a language model when one is configured and
// with deterministic rule-based text otherwise.
package narrative

import (
	"errors"
	"fmt"

	"fpna_dashboard/pkg/core/store"
	"fpna_dashboard/pkg/models"
)

// Inputs are the tables the summary is written from.
type Inputs struct {
	KPIs        models.LatestKPIs
	Departments []models.DepartmentSummary
	// Forecast is nil when forecast_by_department.csv is absent.
	Forecast []models.ForecastPoint
}

// LoadInputs reads latest_kpis.csv and variance_summary.csv (both required)
// and forecast_by_department.csv when present.
func LoadInputs(s *store.TableStore) (*Inputs, error) {
	var kpis []models.LatestKPIs
	if err := s.ReadTable(models.LatestKPIsFile, models.LatestKPIsColumns, &kpis); err != nil {
		return nil, err
	}
	if len(kpis) == 0 {
		return nil, fmt.Errorf("%s has no rows", models.LatestKPIsFile)
	}

	var depts []models.DepartmentSummary
	if err := s.ReadTable(models.VarianceSummaryFile, models.DepartmentSummaryColumns, &depts); err != nil {
		return nil, err
	}

	in := &Inputs{KPIs: kpis[0], Departments: depts}

	var forecast []models.ForecastPoint
	err := s.ReadTable(models.ForecastFile, models.ForecastColumns, &forecast)
	var missing *store.MissingInputError
	switch {
	case err == nil:
		in.Forecast = forecast
	case errors.As(err, &missing):
		// optional
	default:
		return nil, err
	}
	return in, nil
}
