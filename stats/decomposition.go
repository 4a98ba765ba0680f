package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sartorproj/gosarimax/timeseries"
)

// DefaultPeriod is the seasonal period of monthly data.
const DefaultPeriod = 12

// DecompositionResult represents the additive decomposition of a time series.
// Trend, Seasonal and Residual share the timestamps of Observed.
type DecompositionResult struct {
	Observed *timeseries.Series
	Trend    *timeseries.Series
	Seasonal *timeseries.Series
	Residual *timeseries.Series

	// Pattern holds one seasonal value per position in the cycle; it sums to zero.
	Pattern []float64
	// TrendDefined marks the indexes where the centered moving average had a
	// full window, before any edge filling.
	TrendDefined []bool
	Period       int
}

// DecomposeOptions controls the decomposition policy.
type DecomposeOptions struct {
	// FillTrendEdges replaces the undefined trend at both ends of the series
	// so the returned trend has no gaps. Interior gaps are interpolated
	// linearly; the ends are held flat at the nearest defined value.
	FillTrendEdges bool
}

// Decompose performs classical additive decomposition (Y = T + S + R) with
// trend edges filled.
func Decompose(series *timeseries.Series, period int) (*DecompositionResult, error) {
	return DecomposeWithOptions(series, period, DecomposeOptions{FillTrendEdges: true})
}

// DecomposeWithOptions performs classical additive decomposition. The trend
// is a centered moving average (2×m for even m), the seasonal component is
// the centered per-position mean of the detrended series, and the residual is
// what remains.
func DecomposeWithOptions(series *timeseries.Series, period int, opts DecomposeOptions) (*DecompositionResult, error) {
	n := series.Len()
	if period < 2 {
		return nil, &DecompositionError{Length: n, Period: period, Reason: "period must be at least 2"}
	}
	if n < 2*period {
		return nil, &DecompositionError{Length: n, Period: period, Reason: "series shorter than two full periods"}
	}
	if err := series.ValidateMonthly(); err != nil {
		return nil, &DecompositionError{Length: n, Period: period, Reason: "invalid series", Err: err}
	}

	// Step 1: centered moving average
	trend := centeredMovingAverage(series, period)
	defined := make([]bool, n)
	for i, v := range trend {
		defined[i] = !math.IsNaN(v)
	}

	// Step 2: detrend where the moving average exists and average per slot
	pattern := make([]float64, period)
	counts := make([]int, period)
	for i := 0; i < n; i++ {
		if defined[i] {
			pattern[i%period] += series.Values[i] - trend[i]
			counts[i%period]++
		}
	}
	for i := range pattern {
		if counts[i] > 0 {
			pattern[i] /= float64(counts[i])
		}
	}

	// Step 3: center the pattern so it sums to zero
	mean := floats.Sum(pattern) / float64(period)
	floats.AddConst(-mean, pattern)

	seasonal := make([]float64, n)
	for i := range seasonal {
		seasonal[i] = pattern[i%period]
	}

	if opts.FillTrendEdges {
		fillGaps(trend)
	}

	// Step 4: residual
	residual := make([]float64, n)
	for i := range residual {
		residual[i] = series.Values[i] - trend[i] - seasonal[i]
	}

	return &DecompositionResult{
		Observed:     series,
		Trend:        series.WithValues("trend", trend),
		Seasonal:     series.WithValues("seasonal", seasonal),
		Residual:     series.WithValues("residual", residual),
		Pattern:      pattern,
		TrendDefined: defined,
		Period:       period,
	}, nil
}

// centeredMovingAverage returns the centered moving average of the series
// with NaN where no full window exists. An even period uses a simple moving
// average of length period followed by a 2-term average.
func centeredMovingAverage(series *timeseries.Series, period int) []float64 {
	n := series.Len()
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}

	ma := series.MovingAverage(period)
	offset := (period - 1) / 2
	if period%2 == 0 {
		ma = ma.MovingAverage(2)
		offset = period / 2
	}

	for k, v := range ma.Values {
		trend[k+offset] = v
	}

	return trend
}

// fillGaps interpolates NaN runs linearly between defined neighbours and
// holds the ends flat at the nearest defined value.
func fillGaps(values []float64) {
	first, last := -1, -1
	for i, v := range values {
		if !math.IsNaN(v) {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		return
	}

	for i := 0; i < first; i++ {
		values[i] = values[first]
	}
	for i := last + 1; i < len(values); i++ {
		values[i] = values[last]
	}

	prev := first
	for i := first + 1; i <= last; i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		if i-prev > 1 {
			step := (values[i] - values[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				values[j] = values[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
}
