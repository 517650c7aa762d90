package projection

import (
	"context"
	"fmt"
	"io"

	"fpna_dashboard/pkg/core/store"
	"fpna_dashboard/pkg/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options configures the default strategy chain.
type Options struct {
	Horizon         int
	Window          int
	Z               float64
	SeasonalEnabled bool
	Workers         int
}

// DefaultOptions is a six-month horizon, three-month rolling window and a 95%
// band.
func DefaultOptions() Options {
	return Options{
		Horizon:         6,
		Window:          3,
		Z:               DefaultZ,
		SeasonalEnabled: true,
		Workers:         4,
	}
}

// Engine walks its strategy chain for every department series.
type Engine struct {
	Strategies []Strategy
	Horizon    int
	Workers    int
	Log        logrus.FieldLogger
}

// NewEngine builds the Holt-Winters, rolling mean, empty chain.
func NewEngine(opts Options, log logrus.FieldLogger) *Engine {
	hw := NewHoltWintersStrategy(opts.Window, opts.Z)
	hw.Enabled = opts.SeasonalEnabled
	return &Engine{
		Strategies: []Strategy{
			hw,
			&RollingMeanStrategy{Window: opts.Window, Z: opts.Z},
			&EmptyStrategy{},
		},
		Horizon: opts.Horizon,
		Workers: opts.Workers,
		Log:     log,
	}
}

// SeriesForecast is the outcome for one department.
type SeriesForecast struct {
	Department string
	Tier       string
	Points     []Point
}

// ForecastSeries returns the forecast of the first strategy that accepts the
// observations and fits. Strategy failures are logged and never returned; an
// error means every strategy in the chain failed.
func (e *Engine) ForecastSeries(s Series) (SeriesForecast, error) {
	obs := s.Observed()
	log := e.logger().WithField("department", s.Department)

	for _, strategy := range e.Strategies {
		entry := log.WithField("strategy", strategy.Name())
		if err := strategy.Validate(obs); err != nil {
			entry.WithError(err).Debug("strategy skipped")
			continue
		}
		points, err := strategy.Forecast(obs, e.Horizon)
		if err != nil {
			entry.WithError(err).Debug("strategy failed, falling back")
			continue
		}
		entry.WithField("points", len(points)).Info("forecast tier selected")
		return SeriesForecast{Department: s.Department, Tier: strategy.Name(), Points: points}, nil
	}
	return SeriesForecast{}, fmt.Errorf("no forecasting strategy succeeded for %q", s.Department)
}

// Result is the concatenated forecast of every department, in department
// order, plus the tier chosen for each department.
type Result struct {
	Points []models.ForecastPoint
	Tiers  map[string]string
}

// Table returns the forecast_by_department table.
func (r *Result) Table() store.Table {
	return store.Table{Name: models.ForecastFile, Rows: r.Points}
}

// ForecastAll groups records by department and forecasts every department
// concurrently. Output order follows the sorted department names regardless of
// completion order.
func (e *Engine) ForecastAll(ctx context.Context, records []models.RevenueRecord) (*Result, error) {
	depts := Departments(records)
	results := make([]SeriesForecast, len(depts))

	g, gctx := errgroup.WithContext(ctx)
	if e.Workers > 0 {
		g.SetLimit(e.Workers)
	}
	for i, dept := range depts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.ForecastSeries(NewSeries(dept, records))
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{Tiers: make(map[string]string, len(results))}
	for _, res := range results {
		out.Tiers[res.Department] = res.Tier
		for _, p := range res.Points {
			out.Points = append(out.Points, models.ForecastPoint{
				Month:      p.Month,
				Department: res.Department,
				Forecast:   models.FromFloat(p.Forecast).Round(models.OutputPlaces),
				Lower:      models.FromFloat(p.Lower).Round(models.OutputPlaces),
				Upper:      models.FromFloat(p.Upper).Round(models.OutputPlaces),
			})
		}
	}
	return out, nil
}

func (e *Engine) logger() logrus.FieldLogger {
	if e.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return e.Log
}
