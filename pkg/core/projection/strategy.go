// Package projection forecasts each department's monthly revenue over a fixed
// horizon with a 95% band.
//
// Forecasting is an ordered chain of strategies: the first strategy whose
// Validate accepts the observations and whose Forecast succeeds wins. The
// default chain is Holt-Winters smoothing, then a flat rolling mean, then an
// empty forecast for series without observations.
package projection

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// =============================================================================
// STRATEGY INTERFACE
// =============================================================================

var (
	// ErrNotApplicable means a strategy cannot handle the observations; the
	// engine moves to the next strategy.
	ErrNotApplicable = errors.New("strategy not applicable")

	// ErrModelFit means the model could not be fitted (non-convergence or
	// non-finite output). It never escapes the engine.
	ErrModelFit = errors.New("model fit failed")
)

// Strategy is one forecasting tier.
type Strategy interface {
	// Name identifies the tier in logs and the run manifest.
	Name() string

	// Validate returns an error wrapping ErrNotApplicable when the
	// observations are unsuitable for this strategy.
	Validate(obs []Observation) error

	// Forecast projects horizon months after the last observation.
	Forecast(obs []Observation, horizon int) ([]Point, error)
}

// Tier names.
const (
	TierHoltWinters = "holt_winters"
	TierRollingMean = "rolling_mean"
	TierEmpty       = "empty"
)

// DefaultZ is the two-sided 95% normal quantile.
const DefaultZ = 1.96

// =============================================================================
// ROLLING MEAN
// =============================================================================

// RollingMeanStrategy repeats the mean of the last Window observations for
// every future month, with a band of Z sample standard deviations of the same
// window. With fewer than Window observations it uses the last value and the
// whole-series deviation (zero for a single observation).
type RollingMeanStrategy struct {
	Window int
	Z      float64
}

func (s *RollingMeanStrategy) Name() string { return TierRollingMean }

func (s *RollingMeanStrategy) Validate(obs []Observation) error {
	if len(obs) == 0 {
		return fmt.Errorf("%w: rolling mean needs at least one observation", ErrNotApplicable)
	}
	if s.Window < 1 {
		return fmt.Errorf("%w: rolling window must be positive, got %d", ErrNotApplicable, s.Window)
	}
	return nil
}

func (s *RollingMeanStrategy) Forecast(obs []Observation, horizon int) ([]Point, error) {
	if err := s.Validate(obs); err != nil {
		return nil, err
	}
	values := observationValues(obs)

	var point, std float64
	if len(values) >= s.Window {
		window := values[len(values)-s.Window:]
		point = stat.Mean(window, nil)
		if len(window) > 1 {
			std = stat.StdDev(window, nil)
		}
	} else {
		point = values[len(values)-1]
		if len(values) > 1 {
			std = stat.StdDev(values, nil)
		}
	}

	half := s.Z * std
	last := obs[len(obs)-1].Month
	points := make([]Point, horizon)
	for h, m := range FutureMonths(last, horizon) {
		points[h] = Point{Month: m, Forecast: point, Lower: point - half, Upper: point + half}
	}
	return points, nil
}

// =============================================================================
// EMPTY
// =============================================================================

// EmptyStrategy ends the chain: a series with no observations has no forecast.
type EmptyStrategy struct{}

func (s *EmptyStrategy) Name() string { return TierEmpty }

func (s *EmptyStrategy) Validate(obs []Observation) error { return nil }

func (s *EmptyStrategy) Forecast(obs []Observation, horizon int) ([]Point, error) {
	return nil, nil
}

func observationValues(obs []Observation) []float64 {
	values := make([]float64, len(obs))
	for i, o := range obs {
		values[i] = o.Value
	}
	return values
}
