package sarimax

import (
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/gosarimax/stats"
	"github.com/sartorproj/gosarimax/timeseries"
)

// maxCondition is the largest condition number accepted for the differenced
// exogenous design.
const maxCondition = 1e10

// params holds model coefficients in their natural parameterization.
type params struct {
	ar, ma, sar, sma []float64
	beta             []float64
}

// vector lays the coefficients out as [ar, ma, sar, sma, beta].
func (p params) vector() []float64 {
	v := make([]float64, 0, len(p.ar)+len(p.ma)+len(p.sar)+len(p.sma)+len(p.beta))
	v = append(v, p.ar...)
	v = append(v, p.ma...)
	v = append(v, p.sar...)
	v = append(v, p.sma...)
	return append(v, p.beta...)
}

func unpackParams(o Order, v []float64) params {
	next := func(n int) []float64 {
		out := append([]float64(nil), v[:n]...)
		v = v[n:]
		return out
	}
	var p params
	p.ar = next(o.P)
	p.ma = next(o.Q)
	p.sar = next(o.SP)
	p.sma = next(o.SQ)
	p.beta = next(len(v))
	return p
}

// design holds the validated inputs of one estimation.
type design struct {
	order      Order
	name       string
	y          []float64
	x          *mat.Dense // nil without regressors
	nExog      int
	names      []string
	timestamps []time.Time
}

func newDesign(o Order, endog *timeseries.Series, exog *timeseries.Matrix) (*design, error) {
	if endog == nil || endog.Len() < o.MinObservations() {
		n := 0
		if endog != nil {
			n = endog.Len()
		}
		return nil, estimationErrorf(ReasonTooShort, nil, "need at least %d observations, got %d", o.MinObservations(), n)
	}
	if err := endog.ValidateMonthly(); err != nil {
		return nil, estimationErrorf(ReasonInvalidInput, err, "endogenous series")
	}

	d := &design{
		order:      o,
		name:       endog.Name,
		y:          append([]float64(nil), endog.Values...),
		timestamps: endog.Timestamps,
	}
	if exog.Len() == 0 && exog.Width() == 0 {
		return d, nil
	}
	if exog.Len() != endog.Len() {
		return nil, estimationErrorf(ReasonExogMismatch, nil, "%d exogenous rows for %d observations", exog.Len(), endog.Len())
	}
	if err := exog.Validate(); err != nil {
		return nil, estimationErrorf(ReasonInvalidInput, err, "exogenous matrix")
	}
	d.x = exog.Dense()
	d.nExog = exog.Width()
	d.names = append([]string(nil), exog.Columns...)
	return d, nil
}

// endog returns the observations as a series.
func (d *design) endog() *timeseries.Series {
	return &timeseries.Series{Timestamps: d.timestamps, Values: d.y, Name: d.name}
}

// regressionErrors returns u = y - Xβ.
func (d *design) regressionErrors(beta []float64) []float64 {
	u := append([]float64(nil), d.y...)
	if d.x == nil {
		return u
	}
	for t := range u {
		for j, b := range beta {
			u[t] -= d.x.At(t, j) * b
		}
	}
	return u
}

// startValues derives starting coefficients and the optimizer scale of each
// regression coefficient. β comes from OLS of the differenced series on the
// differenced regressors, AR terms from the autocorrelation of what is left.
func (d *design) startValues() (params, []float64, error) {
	o := d.order
	poly := diffPoly(o)
	dy := applyPoly(poly, d.y)

	p := params{
		ar:   make([]float64, o.P),
		ma:   make([]float64, o.Q),
		sar:  make([]float64, o.SP),
		sma:  make([]float64, o.SQ),
		beta: make([]float64, d.nExog),
	}
	scales := make([]float64, d.nExog)

	resid := dy
	if d.nExog > 0 {
		dx := mat.NewDense(len(dy), d.nExog, nil)
		sdy := stat.StdDev(dy, nil)
		for j := 0; j < d.nExog; j++ {
			col := applyPoly(poly, mat.Col(nil, j, d.x))
			dx.SetCol(j, col)
			scales[j] = 1
			if sd := stat.StdDev(col, nil); sd > 0 && sdy > 0 {
				scales[j] = sdy / sd
			}
		}

		var svd mat.SVD
		if len(dy) <= d.nExog || !svd.Factorize(dx, mat.SVDNone) || svd.Cond() > maxCondition {
			return params{}, nil, estimationErrorf(ReasonSingular, nil, "differenced regressors are collinear or constant")
		}

		var beta mat.VecDense
		if err := beta.SolveVec(dx, mat.NewVecDense(len(dy), dy)); err != nil {
			return params{}, nil, estimationErrorf(ReasonSingular, err, "least squares start values")
		}
		var fitted mat.VecDense
		fitted.MulVec(dx, &beta)
		resid = make([]float64, len(dy))
		for i := range dy {
			resid[i] = dy[i] - fitted.AtVec(i)
		}
		copy(p.beta, beta.RawVector().Data)
	}

	if acf := stats.Autocorrelation(resid, max(o.P, o.SP*o.M)); acf != nil {
		p.ar = initARCoeffs(acf, o.P)
		for i := range p.sar {
			if idx := (i + 1) * o.M; idx < len(acf) {
				p.sar[i] = acf[idx] * 0.5
			}
		}
	}
	for i := range p.ma {
		p.ma[i] = 0.1
	}
	for i := range p.sma {
		p.sma[i] = 0.1
	}

	return p, scales, nil
}

// estimator maps between the optimizer's unconstrained space and params.
type estimator struct {
	design *design
	scales []float64
}

func (e *estimator) constrain(x []float64) params {
	o := e.design.order
	u := unpackParams(o, x)
	p := params{
		ar:   constrainStationary(u.ar),
		ma:   constrainInvertible(u.ma),
		sar:  constrainStationary(u.sar),
		sma:  constrainInvertible(u.sma),
		beta: make([]float64, len(u.beta)),
	}
	for j, b := range u.beta {
		p.beta[j] = b * e.scales[j]
	}
	return p
}

func (e *estimator) unconstrain(p params) []float64 {
	u := params{
		ar:   unconstrainStationary(p.ar),
		ma:   unconstrainInvertible(p.ma),
		sar:  unconstrainStationary(p.sar),
		sma:  unconstrainInvertible(p.sma),
		beta: make([]float64, len(p.beta)),
	}
	for j, b := range p.beta {
		u.beta[j] = b / e.scales[j]
	}
	return u.vector()
}

func (e *estimator) evaluate(p params) (*filterResult, error) {
	ss := newStateSpace(e.design.order, p)
	return ss.filter(e.design.regressionErrors(p.beta))
}

// objective is the negative mean log-likelihood at unconstrained x.
func (e *estimator) objective(x []float64) float64 {
	res, err := e.evaluate(e.constrain(x))
	if err != nil {
		return math.Inf(1)
	}
	return -res.logLik / float64(res.nEff)
}

// negLogLik is the negative log-likelihood at natural coefficients v.
func (e *estimator) negLogLik(v []float64) float64 {
	res, err := e.evaluate(unpackParams(e.design.order, v))
	if err != nil {
		return math.Inf(1)
	}
	return -res.logLik
}

// minimize runs BFGS from x0 and falls back to a Nelder-Mead polish from the
// BFGS point when the line search stalls.
func (e *estimator) minimize(ctx context.Context, x0 []float64, cfg config) (*optimize.Result, error) {
	status := func() (optimize.Status, error) {
		if err := ctx.Err(); err != nil {
			return optimize.Failure, err
		}
		return optimize.NotTerminated, nil
	}
	problem := optimize.Problem{
		Func: e.objective,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, e.objective, x, &fd.Settings{Formula: fd.Central})
		},
		Status: status,
	}
	settings := &optimize.Settings{
		MajorIterations:   cfg.maxIterations,
		GradientThreshold: cfg.gradientTolerance,
		Converger:         &optimize.FunctionConverge{Absolute: 1e-9, Relative: 1e-9, Iterations: 20},
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.BFGS{})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, estimationErrorf(ReasonCanceled, ctxErr, "estimation abandoned")
	}
	if converged(result, err) {
		return result, nil
	}

	if result == nil || !(errors.Is(err, optimize.ErrNoProgress) || errors.Is(err, optimize.ErrLinesearcherFailure)) {
		return nil, notConverged(result, err)
	}

	cfg.logger.Debug("line search stalled, polishing with Nelder-Mead",
		"status", result.Status.String(), "f", result.F, "error", err)

	polish := optimize.Problem{Func: e.objective, Status: status}
	polishSettings := &optimize.Settings{
		MajorIterations: 10 * cfg.maxIterations,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-9, Relative: 1e-9, Iterations: 50},
	}
	start := result.X
	result, err = optimize.Minimize(polish, start, polishSettings, &optimize.NelderMead{})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, estimationErrorf(ReasonCanceled, ctxErr, "estimation abandoned")
	}
	if converged(result, err) {
		return result, nil
	}
	return nil, notConverged(result, err)
}

func converged(result *optimize.Result, err error) bool {
	return err == nil && result != nil && !result.Status.Early() &&
		!math.IsInf(result.F, 0) && !math.IsNaN(result.F)
}

func notConverged(result *optimize.Result, err error) *EstimationError {
	if result == nil {
		return estimationErrorf(ReasonNotConverged, err, "optimizer failed to start")
	}
	if err == nil {
		err = result.Status.Err()
	}
	return estimationErrorf(ReasonNotConverged, err, "status %s after %d iterations", result.Status, result.MajorIterations)
}

// stdErrors returns standard errors from the inverse numerical Hessian of the
// negative log-likelihood at the natural coefficients. All entries are NaN,
// and ok is false, when the Hessian is not positive definite.
func (e *estimator) stdErrors(p params) (se params, ok bool) {
	v := p.vector()
	out := make([]float64, len(v))
	for i := range out {
		out[i] = math.NaN()
	}

	var h mat.SymDense
	fd.Hessian(&h, e.negLogLik, v, &fd.Settings{Formula: fd.Central})
	finite := true
	for i := range v {
		for j := i; j < len(v); j++ {
			if x := h.At(i, j); math.IsNaN(x) || math.IsInf(x, 0) {
				finite = false
			}
		}
	}

	var chol mat.Cholesky
	if finite && chol.Factorize(&h) {
		var cov mat.SymDense
		if err := chol.InverseTo(&cov); err == nil {
			ok = true
			for i := range out {
				out[i] = math.Sqrt(cov.At(i, i))
			}
		}
	}
	return unpackParams(e.design.order, out), ok
}

// initARCoeffs initializes AR coefficients from ACF.
func initARCoeffs(acf []float64, order int) []float64 {
	coeffs := make([]float64, order)
	for i := 0; i < order && i+1 < len(acf); i++ {
		coeffs[i] = acf[i+1] * 0.5
	}
	return coeffs
}

// Fit estimates a SARIMAX(1,1,1)(1,1,1)[12] model of endog with the columns
// of exog as regressors. exog may be nil; otherwise it must have one row per
// observation.
func Fit(endog *timeseries.Series, exog *timeseries.Matrix, opts ...Option) (*Model, error) {
	return FitContext(context.Background(), endog, exog, opts...)
}

// FitContext is Fit with cancellation. A canceled or expired context
// abandons the optimizer and returns an *EstimationError with
// ReasonCanceled that also matches ctx.Err().
func FitContext(ctx context.Context, endog *timeseries.Series, exog *timeseries.Matrix, opts ...Option) (*Model, error) {
	cfg := newConfig(opts)
	order := ModelOrder

	d, err := newDesign(order, endog, exog)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, estimationErrorf(ReasonCanceled, err, "estimation abandoned")
	}

	start, scales, err := d.startValues()
	if err != nil {
		return nil, err
	}
	est := &estimator{design: d, scales: scales}
	cfg.logger.Debug("start values",
		"order", order.String(), "ar", start.ar, "ma", start.ma,
		"sar", start.sar, "sma", start.sma, "exog", start.beta)

	result, err := est.minimize(ctx, est.unconstrain(start), cfg)
	if err != nil {
		return nil, err
	}

	p := est.constrain(result.X)
	fr, err := est.evaluate(p)
	if err != nil {
		return nil, estimationErrorf(ReasonNotConverged, err, "final likelihood evaluation")
	}

	model := newModel(d, p, fr)
	model.Iterations = result.MajorIterations
	model.Status = result.Status.String()
	var ok bool
	model.stdErr, ok = est.stdErrors(p)
	model.singular = !ok
	if model.singular {
		cfg.logger.Warn("hessian not positive definite, standard errors unavailable",
			"order", order.String(), "loglik", model.LogLik)
	}

	cfg.logger.Info("model fitted",
		"order", order.String(), "nobs", model.NObs, "status", model.Status,
		"iterations", model.Iterations, "loglik", model.LogLik, "aic", model.AIC)

	return model, nil
}
