package stats

import "math"

// InformationCriteria holds the likelihood-based criteria of a fitted model.
type InformationCriteria struct {
	LogLik float64
	AIC    float64
	AICc   float64
	BIC    float64
}

// Criteria computes AIC, AICc and BIC from a log-likelihood.
// nObs is the number of observations contributing to the likelihood and
// nParams the number of estimated parameters, the scale included.
// AICc is +Inf when nObs-nParams-1 is not positive.
func Criteria(logLik float64, nObs, nParams int) InformationCriteria {
	k := float64(nParams)
	n := float64(nObs)

	ic := InformationCriteria{
		LogLik: logLik,
		AIC:    -2*logLik + 2*k,
		BIC:    -2*logLik + k*math.Log(n),
		AICc:   math.Inf(1),
	}
	if n-k-1 > 0 {
		ic.AICc = ic.AIC + 2*k*(k+1)/(n-k-1)
	}
	return ic
}
