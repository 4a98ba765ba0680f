package sarimax

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var errDegenerate = errors.New("sarimax: degenerate prediction variance")

// filterResult holds the output of one pass of the Kalman filter.
type filterResult struct {
	logLik float64
	sigma2 float64
	nEff   int

	innovations []float64 // one-step prediction errors v_t for t = d..n-1
	variances   []float64 // F_t, in units of σ²
	state       []float64 // a_{n|n-1}, the predicted state after the last observation
}

// filter runs the Kalman filter over the regression errors u.
//
// The first d values of u fix the lag block exactly, so the filter starts at
// t = d with a = [0; u_{d-1}, ..., u_0] and P = blockdiag(P_stat, 0). The lag
// block is observed without error at every step, which keeps its rows and
// columns of P at zero; only the ARMA block of P is propagated.
//
// The scale is concentrated out of the likelihood.
func (ss *stateSpace) filter(u []float64) (*filterResult, error) {
	n := len(u)
	d := len(ss.diff)
	k := ss.k
	if n <= d {
		return nil, errDegenerate
	}

	pa, err := ss.stationaryCov()
	if err != nil {
		return nil, err
	}

	a := mat.NewVecDense(ss.dim, nil)
	for i := 0; i < d; i++ {
		a.SetVec(k+i, u[d-1-i])
	}

	res := &filterResult{
		nEff:        n - d,
		innovations: make([]float64, 0, n-d),
		variances:   make([]float64, 0, n-d),
	}

	var (
		next       mat.VecDense
		tmp, pNext mat.Dense
		sumLogF    float64
		sumSq      float64
	)
	col := make([]float64, k)
	for t := d; t < n; t++ {
		v := u[t] - mat.Dot(ss.z, a)
		f := pa.At(0, 0)
		if !(f > 0) || math.IsInf(f, 0) || math.IsNaN(v) {
			return nil, errDegenerate
		}

		// Update. Z restricted to the ARMA block is e_0.
		mat.Col(col, 0, pa)
		for i := 0; i < k; i++ {
			a.SetVec(i, a.AtVec(i)+col[i]*v/f)
		}
		kv := mat.NewVecDense(k, col)
		pa.RankOne(pa, -1/f, kv, kv)

		// Predict.
		next.MulVec(ss.trans, a)
		a.CopyVec(&next)
		tmp.Mul(ss.ta, pa)
		pNext.Mul(&tmp, ss.ta.T())
		pNext.Add(&pNext, ss.rrt)
		pa.Copy(&pNext)

		res.innovations = append(res.innovations, v)
		res.variances = append(res.variances, f)
		sumLogF += math.Log(f)
		sumSq += v * v / f
	}

	nEff := float64(res.nEff)
	res.sigma2 = sumSq / nEff
	if !(res.sigma2 > 0) || math.IsInf(res.sigma2, 0) {
		return nil, errDegenerate
	}
	res.logLik = -nEff/2*(math.Log(2*math.Pi)+math.Log(res.sigma2)+1) - sumLogF/2
	res.state = append([]float64(nil), a.RawVector().Data...)

	return res, nil
}
