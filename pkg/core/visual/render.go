package visual

import (
	"errors"

	"github.com/sirupsen/logrus"

	"fpna_dashboard/pkg/core/store"
	"fpna_dashboard/pkg/models"
)

// Render reads monthly_trend.csv, variance_summary.csv and (when present)
// forecast_by_department.csv, and publishes the charts in one atomic write.
// It returns the names of the files written.
func Render(s *store.TableStore, size Size, log logrus.FieldLogger) ([]string, error) {
	var trend []models.MonthlyTrend
	if err := s.ReadTable(models.MonthlyTrendFile, models.MonthlyTrendColumns, &trend); err != nil {
		return nil, err
	}
	var summary []models.DepartmentSummary
	if err := s.ReadTable(models.VarianceSummaryFile, models.DepartmentSummaryColumns, &summary); err != nil {
		return nil, err
	}

	trendPNG, err := TrendChart(trend, size)
	if err != nil {
		return nil, err
	}
	variancePNG, err := VarianceChart(summary, size)
	if err != nil {
		return nil, err
	}
	files := []store.File{
		{Name: models.TrendChartFile, Data: trendPNG},
		{Name: models.VarianceChartFile, Data: variancePNG},
	}

	var forecast []models.ForecastPoint
	err = s.ReadTable(models.ForecastFile, models.ForecastColumns, &forecast)
	var missing *store.MissingInputError
	switch {
	case err == nil:
		png, err := ForecastChart(forecast, size)
		if err != nil {
			return nil, err
		}
		files = append(files, store.File{Name: models.ForecastChartFile, Data: png})
	case errors.As(err, &missing):
		if log != nil {
			log.WithField("file", models.ForecastFile).Warn("no forecast table, skipping forecast chart")
		}
	default:
		return nil, err
	}

	if err := s.WriteFiles(files...); err != nil {
		return nil, err
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names, nil
}
