package sarimax

import (
	"time"

	"github.com/sartorproj/gosarimax/stats"
	"github.com/sartorproj/gosarimax/timeseries"
)

// Model is a fitted SARIMAX model. The exported fields report the fit and
// are meant to be read; changing them has no effect on forecasts, which use
// the unexported coefficients and state. Accessors return copies and
// forecasting never re-estimates.
type Model struct {
	Order  Order
	Sigma2 float64 // innovation variance, concentrated out of the likelihood
	LogLik float64
	AIC    float64
	AICc   float64 // Corrected AIC for small sample sizes
	BIC    float64
	NObs   int // observations in the estimation sample
	NEff   int // observations contributing to the likelihood

	Iterations int    // optimizer major iterations
	Status     string // optimizer termination status

	params    params
	stdErr    params
	singular  bool
	exogNames []string

	ss        *stateSpace
	state     []float64 // a_{n|n-1}
	last      time.Time
	residuals *timeseries.Series
	fitted    *timeseries.Series
	diffEndog *timeseries.Series
}

// Params is a copy of the estimated coefficients. Exog follows the column
// order of the regressors the model was fitted with.
type Params struct {
	AR        []float64
	MA        []float64
	SAR       []float64
	SMA       []float64
	Exog      []float64
	ExogNames []string
}

func newModel(d *design, p params, fr *filterResult) *Model {
	n := len(d.y)
	first := n - fr.nEff
	ic := stats.Criteria(fr.logLik, fr.nEff, d.order.NumARMAParams()+d.nExog+1)

	ts := append([]time.Time(nil), d.timestamps[first:]...)
	resid := append([]float64(nil), fr.innovations...)
	fitted := make([]float64, fr.nEff)
	for i, v := range resid {
		fitted[i] = d.y[first+i] - v
	}

	return &Model{
		Order:     d.order,
		Sigma2:    fr.sigma2,
		LogLik:    ic.LogLik,
		AIC:       ic.AIC,
		AICc:      ic.AICc,
		BIC:       ic.BIC,
		NObs:      n,
		NEff:      fr.nEff,
		params:    p,
		exogNames: d.names,
		ss:        newStateSpace(d.order, p),
		state:     fr.state,
		last:      d.timestamps[n-1],
		residuals: &timeseries.Series{Timestamps: ts, Values: resid, Name: "residual"},
		fitted:    &timeseries.Series{Timestamps: append([]time.Time(nil), ts...), Values: fitted, Name: "fitted"},
		diffEndog: differenced(d.order, d.endog()),
	}
}

// Params returns a copy of the estimated coefficients.
func (m *Model) Params() Params {
	return m.params.export(m.exogNames)
}

// StdErrors returns standard errors laid out like Params. Entries are NaN
// when the numerical Hessian of the log-likelihood is not positive definite.
func (m *Model) StdErrors() Params {
	return m.stdErr.export(m.exogNames)
}

func (p params) export(names []string) Params {
	cp := func(x []float64) []float64 { return append([]float64(nil), x...) }
	return Params{
		AR:        cp(p.ar),
		MA:        cp(p.ma),
		SAR:       cp(p.sar),
		SMA:       cp(p.sma),
		Exog:      cp(p.beta),
		ExogNames: append([]string(nil), names...),
	}
}

// CovarianceSingular reports whether the numerical Hessian of the
// log-likelihood was not positive definite at the estimate, in which case
// every standard error is NaN.
func (m *Model) CovarianceSingular() bool {
	return m.singular
}

// differenced applies the model's seasonal and regular differences to s.
func differenced(o Order, s *timeseries.Series) *timeseries.Series {
	out := s
	for i := 0; i < o.SD; i++ {
		out = out.SeasonalDiff(o.M)
	}
	return out.DiffN(o.D)
}

// NumExog returns the number of regressors the model was fitted with.
func (m *Model) NumExog() int {
	return len(m.params.beta)
}

// NumParams returns the number of estimated parameters counted by the
// information criteria, the innovation variance included.
func (m *Model) NumParams() int {
	return m.Order.NumARMAParams() + m.NumExog() + 1
}

// LastObserved returns the month of the last observation.
func (m *Model) LastObserved() time.Time {
	return m.last
}

// Residuals returns the one-step prediction errors of the observations that
// contribute to the likelihood.
func (m *Model) Residuals() *timeseries.Series {
	return m.residuals.Copy()
}

// FittedValues returns the one-step-ahead in-sample predictions.
func (m *Model) FittedValues() *timeseries.Series {
	return m.fitted.Copy()
}

// Summary represents a model summary.
type Summary struct {
	Order      Order
	Params     Params
	StdErrors  Params
	Sigma2     float64
	LogLik     float64
	AIC        float64
	AICc       float64
	BIC        float64
	NObs       int
	NEff       int
	Iterations int
	Status     string

	CovarianceSingular bool
	DiffStd            float64 // standard deviation of the differenced series
	ResidualMean       float64

	LjungBox    *stats.LjungBoxResult // on residuals, nil when too few
	ResidualACF *stats.ACFResult      // nil for constant residuals
	KPSS        *stats.KPSSResult     // on the differenced series, nil when too few
}

// Summary returns a summary of the fitted model with residual diagnostics.
func (m *Model) Summary() *Summary {
	lags := min(10, m.NEff/2)
	return &Summary{
		Order:      m.Order,
		Params:     m.Params(),
		StdErrors:  m.StdErrors(),
		Sigma2:     m.Sigma2,
		LogLik:     m.LogLik,
		AIC:        m.AIC,
		AICc:       m.AICc,
		BIC:        m.BIC,
		NObs:       m.NObs,
		NEff:       m.NEff,
		Iterations: m.Iterations,
		Status:     m.Status,

		CovarianceSingular: m.singular,
		DiffStd:            m.diffEndog.Std(),
		ResidualMean:       m.residuals.Mean(),

		LjungBox:    stats.LjungBox(m.residuals, lags, m.Order.NumARMAParams()),
		ResidualACF: stats.ACFWithConfidence(m.residuals, m.Order.M+1),
		KPSS:        stats.KPSS(m.diffEndog.Values, 0),
	}
}
