package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// KPSSResult represents the result of a level-stationarity KPSS test.
type KPSSResult struct {
	Statistic    float64
	PValue       float64 // interpolated from the critical value table, clamped to [0.01, 0.10+]
	Lags         int
	IsStationary bool
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test for level
// stationarity. The null hypothesis is that x is stationary around its mean.
// nlags <= 0 selects the Schwert rule 12·(n/100)^¼. It returns nil for fewer
// than ten observations.
func KPSS(x []float64, nlags int) *KPSSResult {
	n := len(x)
	if n < 10 {
		return nil
	}
	if nlags <= 0 {
		nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if nlags >= n {
		nlags = n - 1
	}

	residuals := make([]float64, n)
	copy(residuals, x)
	floats.AddConst(-stat.Mean(x, nil), residuals)

	cumSum := make([]float64, n)
	floats.CumSum(cumSum, residuals)

	// Newey-West long-run variance with Bartlett weights
	s2 := floats.Dot(residuals, residuals) / float64(n)
	for l := 1; l <= nlags; l++ {
		cov := floats.Dot(residuals[l:], residuals[:n-l]) / float64(n)
		s2 += 2 * (1 - float64(l)/float64(nlags+1)) * cov
	}
	if s2 <= 0 {
		s2 = 1e-10
	}

	statistic := floats.Dot(cumSum, cumSum) / (float64(n) * float64(n) * s2)
	pValue := kpssPValue(statistic)

	return &KPSSResult{
		Statistic:    statistic,
		PValue:       pValue,
		Lags:         nlags,
		IsStationary: pValue >= 0.05,
	}
}

// kpssPValue approximates the p-value from the level-stationarity critical
// values 0.347 (10%), 0.463 (5%) and 0.739 (1%).
func kpssPValue(stat float64) float64 {
	switch {
	case stat > 0.739:
		return 0.01
	case stat > 0.463:
		return 0.05 - (stat-0.463)/(0.739-0.463)*0.04
	case stat > 0.347:
		return 0.10 - (stat-0.347)/(0.463-0.347)*0.05
	default:
		return 0.10 + (0.347-stat)*0.5
	}
}
