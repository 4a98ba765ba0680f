package sarimax

import "math"

// maxPartial bounds partial autocorrelations when mapping start values into
// the unconstrained space.
const maxPartial = 0.99

// constrainStationary maps unconstrained reals to the coefficients of a
// stationary polynomial 1 - φ_1 L - ... - φ_p L^p. Each value becomes a
// partial autocorrelation r = x/√(1+x²), and the Durbin-Levinson recursion
// turns the partials into coefficients.
func constrainStationary(x []float64) []float64 {
	p := len(x)
	phi := make([]float64, p)
	prev := make([]float64, p)
	for k := 0; k < p; k++ {
		r := x[k] / math.Sqrt(1+x[k]*x[k])
		copy(prev, phi)
		for i := 0; i < k; i++ {
			phi[i] = prev[i] - r*prev[k-1-i]
		}
		phi[k] = r
	}
	return phi
}

// unconstrainStationary inverts constrainStationary. Partials outside
// (-maxPartial, maxPartial) are clipped.
func unconstrainStationary(phi []float64) []float64 {
	p := len(phi)
	cur := append([]float64(nil), phi...)
	x := make([]float64, p)
	for k := p - 1; k >= 0; k-- {
		r := math.Max(-maxPartial, math.Min(maxPartial, cur[k]))
		x[k] = r / math.Sqrt(1-r*r)
		prev := make([]float64, k)
		for i := 0; i < k; i++ {
			prev[i] = (cur[i] + r*cur[k-1-i]) / (1 - r*r)
		}
		cur = prev
	}
	return x
}

// constrainInvertible maps unconstrained reals to the coefficients of an
// invertible polynomial 1 + θ_1 L + ... + θ_q L^q.
func constrainInvertible(x []float64) []float64 {
	theta := constrainStationary(x)
	for i := range theta {
		theta[i] = -theta[i]
	}
	return theta
}

func unconstrainInvertible(theta []float64) []float64 {
	neg := make([]float64, len(theta))
	for i, v := range theta {
		neg[i] = -v
	}
	return unconstrainStationary(neg)
}
