package sarimax

import "fmt"

// Order represents SARIMAX model order (p, d, q) x (P, D, Q, m).
type Order struct {
	P int // Non-seasonal AR order
	D int // Non-seasonal differencing order
	Q int // Non-seasonal MA order
	// Seasonal components
	SP int // Seasonal AR order
	SD int // Seasonal differencing order
	SQ int // Seasonal MA order
	M  int // Seasonal period
}

// ModelOrder is the fixed order every model in this package is estimated with:
// SARIMAX(1,1,1)(1,1,1)[12].
var ModelOrder = Order{P: 1, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, M: 12}

func (o Order) String() string {
	return fmt.Sprintf("SARIMAX(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
}

// MinObservations returns the shortest series the order can be estimated on:
// two full seasonal cycles plus one observation.
func (o Order) MinObservations() int {
	return 2*o.M + 1
}

// NumARMAParams returns the number of autoregressive and moving average
// coefficients.
func (o Order) NumARMAParams() int {
	return o.P + o.Q + o.SP + o.SQ
}

// diffOrder is the degree of (1-L)^d (1-L^m)^D.
func (o Order) diffOrder() int {
	return o.D + o.SD*o.M
}

// stateDim is the dimension of the ARMA block of the state vector.
func (o Order) stateDim() int {
	return max(o.P+o.SP*o.M, o.Q+o.SQ*o.M+1)
}

// lagPoly returns the coefficients of (1 + c_1 L + ... + c_k L^k)(1 + s_1 L^m + ...)
// as a slice whose element i multiplies L^i.
func lagPoly(coeffs, seasonal []float64, m int, sign float64) []float64 {
	a := make([]float64, len(coeffs)+1)
	a[0] = 1
	for i, c := range coeffs {
		a[i+1] = sign * c
	}
	b := make([]float64, len(seasonal)*m+1)
	b[0] = 1
	for i, c := range seasonal {
		b[(i+1)*m] = sign * c
	}
	return polyMul(a, b)
}

// diffPoly returns the coefficients of (1-L)^d (1-L^m)^D.
func diffPoly(o Order) []float64 {
	poly := []float64{1}
	for i := 0; i < o.D; i++ {
		poly = polyMul(poly, []float64{1, -1})
	}
	seasonal := make([]float64, o.M+1)
	seasonal[0], seasonal[o.M] = 1, -1
	for i := 0; i < o.SD; i++ {
		poly = polyMul(poly, seasonal)
	}
	return poly
}

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

// applyPoly filters x through the lag polynomial poly, dropping the first
// len(poly)-1 values that lack a full history.
func applyPoly(poly, x []float64) []float64 {
	k := len(poly) - 1
	if len(x) <= k {
		return nil
	}
	out := make([]float64, len(x)-k)
	for t := k; t < len(x); t++ {
		v := 0.0
		for i, c := range poly {
			v += c * x[t-i]
		}
		out[t-k] = v
	}
	return out
}
