package sarimax

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	maxDoublings = 64
	lyapunovTol  = 1e-12
)

var errNonStationary = errors.New("sarimax: stationary covariance did not converge")

// stateSpace is the Harvey-form representation of a regression with
// integrated SARMA errors. The state at time t is
//
//	α_t = [ARMA block (k); u_{t-1}, ..., u_{t-d}]
//
// where u_t = y_t - x_tᵀβ and d is the degree of the differencing polynomial.
// The observation is u_t = Zα_t with no measurement noise, so differencing
// lives in the transition matrix rather than in the data.
type stateSpace struct {
	k     int // ARMA block dimension
	dim   int
	trans *mat.Dense    // T, dim×dim
	ta    *mat.Dense    // ARMA block of T
	rrt   *mat.SymDense // RRᵀ restricted to the ARMA block
	z     *mat.VecDense
	diff  []float64 // c_i in u_t = w_t + Σ c_i u_{t-i}
}

func newStateSpace(o Order, p params) *stateSpace {
	arPoly := lagPoly(p.ar, p.sar, o.M, -1)
	maPoly := lagPoly(p.ma, p.sma, o.M, 1)
	dp := diffPoly(o)

	k := o.stateDim()
	d := len(dp) - 1
	dim := k + d

	trans := mat.NewDense(dim, dim, nil)
	for i := 1; i < len(arPoly); i++ {
		trans.Set(i-1, 0, -arPoly[i])
	}
	for i := 0; i < k-1; i++ {
		trans.Set(i, i+1, 1)
	}

	r := make([]float64, k)
	r[0] = 1
	for i := 1; i < len(maPoly) && i < k; i++ {
		r[i] = maPoly[i]
	}
	rrt := mat.NewSymDense(k, nil)
	rrt.SymOuterK(1, mat.NewVecDense(k, r))

	z := make([]float64, dim)
	z[0] = 1
	diff := make([]float64, d)
	for i := 1; i <= d; i++ {
		diff[i-1] = -dp[i]
		z[k+i-1] = diff[i-1]
	}

	// Row k carries u_t into the lag block; the rows below shift it.
	if d > 0 {
		trans.SetRow(k, z)
		for j := 1; j < d; j++ {
			trans.Set(k+j, k+j-1, 1)
		}
	}

	return &stateSpace{
		k:     k,
		dim:   dim,
		trans: trans,
		ta:    trans.Slice(0, k, 0, k).(*mat.Dense),
		rrt:   rrt,
		z:     mat.NewVecDense(dim, z),
		diff:  diff,
	}
}

// stationaryCov solves P = T_a P T_aᵀ + RRᵀ for the ARMA block by doubling:
// P ← P + A P Aᵀ, A ← A², starting from P = RRᵀ, A = T_a.
func (ss *stateSpace) stationaryCov() (*mat.Dense, error) {
	p := mat.DenseCopyOf(ss.rrt)
	a := mat.DenseCopyOf(ss.ta)

	var tmp, inc mat.Dense
	for i := 0; i < maxDoublings; i++ {
		tmp.Mul(a, p)
		inc.Mul(&tmp, a.T())
		p.Add(p, &inc)

		incNorm := mat.Norm(&inc, math.Inf(1))
		pNorm := mat.Norm(p, math.Inf(1))
		if math.IsNaN(pNorm) || math.IsInf(pNorm, 0) {
			return nil, errNonStationary
		}
		if incNorm <= lyapunovTol*pNorm {
			symmetrize(p)
			return p, nil
		}

		var next mat.Dense
		next.Mul(a, a)
		a = &next
	}
	return nil, errNonStationary
}

func symmetrize(p *mat.Dense) {
	n, _ := p.Dims()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := (p.At(i, j) + p.At(j, i)) / 2
			p.Set(i, j, v)
			p.Set(j, i, v)
		}
	}
}
