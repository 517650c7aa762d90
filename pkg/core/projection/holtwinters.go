package projection

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// HoltWintersStrategy fits additive-trend exponential smoothing, adding an
// additive seasonal component when at least SeasonalMinObs observations are
// available. Smoothing weights and the initial level and trend are chosen by
// minimising the one-step-ahead squared error with Nelder-Mead.
type HoltWintersStrategy struct {
	// Enabled gates the tier. A disabled strategy is never applicable.
	Enabled bool
	// Window is the rolling window of the next tier; the model needs at least
	// max(Window+1, 4) observations.
	Window int
	Z      float64
	// Period is the seasonal cycle length in months.
	Period int
	// SeasonalMinObs is the history needed before seasonality is modelled.
	SeasonalMinObs int
}

// NewHoltWintersStrategy returns the monthly configuration: period 12,
// seasonal from 24 observations.
func NewHoltWintersStrategy(window int, z float64) *HoltWintersStrategy {
	return &HoltWintersStrategy{
		Enabled:        true,
		Window:         window,
		Z:              z,
		Period:         12,
		SeasonalMinObs: 24,
	}
}

func (s *HoltWintersStrategy) Name() string { return TierHoltWinters }

// MinObservations is max(Window+1, 4).
func (s *HoltWintersStrategy) MinObservations() int {
	if s.Window+1 > 4 {
		return s.Window + 1
	}
	return 4
}

func (s *HoltWintersStrategy) Validate(obs []Observation) error {
	if !s.Enabled {
		return fmt.Errorf("%w: smoothing disabled", ErrNotApplicable)
	}
	if need := s.MinObservations(); len(obs) < need {
		return fmt.Errorf("%w: smoothing needs %d observations, have %d", ErrNotApplicable, need, len(obs))
	}
	return nil
}

func (s *HoltWintersStrategy) Forecast(obs []Observation, horizon int) ([]Point, error) {
	if err := s.Validate(obs); err != nil {
		return nil, err
	}
	y := observationValues(obs)

	period := 0
	if s.Period > 1 && len(y) >= s.SeasonalMinObs && len(y) >= 2*s.Period {
		period = s.Period
	}

	fit, err := fitHoltWinters(y, period)
	if err != nil {
		return nil, err
	}

	half := 0.0
	if len(fit.residuals) >= 2 {
		half = s.Z * stat.StdDev(fit.residuals, nil)
	}

	last := obs[len(obs)-1].Month
	points := make([]Point, horizon)
	for h, m := range FutureMonths(last, horizon) {
		f := fit.forecast(h + 1)
		points[h] = Point{Month: m, Forecast: f, Lower: f - half, Upper: f + half}
		if !isFinite(f) || !isFinite(half) {
			return nil, fmt.Errorf("%w: non-finite forecast at step %d", ErrModelFit, h+1)
		}
	}
	return points, nil
}

// hwModel is a fitted model in the units of the input series.
type hwModel struct {
	level     float64
	trend     float64
	seasonal  []float64 // nil without seasonality
	n         int
	residuals []float64
}

func (m *hwModel) forecast(h int) float64 {
	f := m.level + float64(h)*m.trend
	if p := len(m.seasonal); p > 0 {
		f += m.seasonal[(m.n+h-1)%p]
	}
	return f
}

// hwParams is the optimiser's view of the model: unconstrained logits for the
// smoothing weights followed by the initial level and trend.
type hwParams struct {
	alpha, beta, gamma float64
	level, trend       float64
}

func decodeParams(x []float64, seasonal bool) hwParams {
	p := hwParams{alpha: logistic(x[0]), beta: logistic(x[1])}
	i := 2
	if seasonal {
		p.gamma = logistic(x[2])
		i = 3
	}
	p.level, p.trend = x[i], x[i+1]
	return p
}

func fitHoltWinters(y []float64, period int) (*hwModel, error) {
	scale := 0.0
	for _, v := range y {
		scale += math.Abs(v)
	}
	scale /= float64(len(y))
	if scale == 0 {
		scale = 1
	}
	z := make([]float64, len(y))
	for i, v := range y {
		z[i] = v / scale
	}

	level0, trend0, season0 := initialState(z, period)
	seasonal := period > 0

	x0 := []float64{logit(0.5), logit(0.1)}
	if seasonal {
		x0 = append(x0, logit(0.1))
	}
	x0 = append(x0, level0, trend0)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			sse, _ := smoothState(z, decodeParams(x, seasonal), season0, nil)
			if !isFinite(sse) {
				return math.Inf(1)
			}
			return sse
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: 5000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-10,
			Iterations: 200,
		},
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	// A reached evaluation or iteration cap still leaves the best simplex vertex.
	if err != nil && (result == nil || !reachedLimit(result.Status)) {
		return nil, fmt.Errorf("%w: %v", ErrModelFit, err)
	}
	if result == nil || !isFinite(result.F) {
		return nil, fmt.Errorf("%w: optimiser returned a non-finite objective", ErrModelFit)
	}

	params := decodeParams(result.X, seasonal)
	residuals := make([]float64, 0, len(z))
	sse, state := smoothState(z, params, season0, &residuals)
	if !isFinite(sse) {
		return nil, fmt.Errorf("%w: non-finite in-sample error", ErrModelFit)
	}

	model := &hwModel{
		level: state.level * scale,
		trend: state.trend * scale,
		n:     len(y),
	}
	if seasonal {
		model.seasonal = make([]float64, period)
		for i, v := range state.seasonal {
			model.seasonal[i] = v * scale
		}
	}
	model.residuals = make([]float64, len(residuals))
	for i, r := range residuals {
		model.residuals[i] = r * scale
	}
	return model, nil
}

// initialState derives the starting level, trend and seasonal indices. The
// level and trend refer to the period just before the first observation so
// that the first one-step prediction is level + trend + seasonal[0].
func initialState(z []float64, period int) (float64, float64, []float64) {
	if period == 0 {
		trend := z[1] - z[0]
		return z[0] - trend, trend, nil
	}
	m := float64(period)
	first := stat.Mean(z[:period], nil)
	second := stat.Mean(z[period:2*period], nil)
	trend := (second - first) / m

	// first is the trend line's value at the centre of the first season
	season := make([]float64, period)
	for i := range season {
		season[i] = z[i] - (first + (float64(i)-(m-1)/2)*trend)
	}
	level := first - (m+1)/2*trend
	return level, trend, season
}

type hwState struct {
	level, trend float64
	seasonal     []float64
}

// smoothState runs the additive recursions over z and returns the sum of
// squared one-step errors and the final state.
func smoothState(z []float64, p hwParams, season0 []float64, residuals *[]float64) (float64, hwState) {
	st := hwState{level: p.level, trend: p.trend}
	if season0 != nil {
		st.seasonal = append([]float64(nil), season0...)
	}
	period := len(st.seasonal)

	sse := 0.0
	for t, v := range z {
		s := 0.0
		if period > 0 {
			s = st.seasonal[t%period]
		}
		pred := st.level + st.trend + s
		e := v - pred
		sse += e * e
		if residuals != nil {
			*residuals = append(*residuals, e)
		}

		level := p.alpha*(v-s) + (1-p.alpha)*(st.level+st.trend)
		st.trend = p.beta*(level-st.level) + (1-p.beta)*st.trend
		st.level = level
		if period > 0 {
			st.seasonal[t%period] = p.gamma*(v-level) + (1-p.gamma)*s
		}
	}
	return sse, st
}

func logistic(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func logit(p float64) float64 { return math.Log(p / (1 - p)) }

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func reachedLimit(s optimize.Status) bool {
	return s == optimize.FunctionEvaluationLimit || s == optimize.IterationLimit
}
