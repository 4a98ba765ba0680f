package stats

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/gosarimax/timeseries"
)

// SeasonalIndexResult holds the percentage deviation of each calendar
// month's mean from the overall mean. Arrays are indexed by time.Month-1.
type SeasonalIndexResult struct {
	Index       [12]float64 // NaN for months with no observations
	MonthlyMean [12]float64
	Counts      [12]int
	OverallMean float64
}

// SeasonalIndex computes the seasonal strength index of a monthly series:
// (mean of month m − overall mean) / overall mean × 100.
// Months with no observations are left undefined; use Require to turn them
// into an error.
func SeasonalIndex(series *timeseries.Series) (*SeasonalIndexResult, error) {
	if series.Len() == 0 {
		return nil, &IndexError{Reason: "empty series"}
	}
	if len(series.Timestamps) != series.Len() {
		return nil, &IndexError{Reason: "series has no timestamp for every value"}
	}

	var buckets [12][]float64
	for i, v := range series.Values {
		m := series.Timestamps[i].Month()
		buckets[m-1] = append(buckets[m-1], v)
	}

	result := &SeasonalIndexResult{
		OverallMean: stat.Mean(series.Values, nil),
	}
	if result.OverallMean == 0 || math.IsNaN(result.OverallMean) {
		return nil, &IndexError{Reason: "overall mean is zero or undefined"}
	}

	for m := range buckets {
		result.Counts[m] = len(buckets[m])
		if len(buckets[m]) == 0 {
			result.MonthlyMean[m] = math.NaN()
			result.Index[m] = math.NaN()
			continue
		}
		result.MonthlyMean[m] = stat.Mean(buckets[m], nil)
		result.Index[m] = (result.MonthlyMean[m] - result.OverallMean) / result.OverallMean * 100
	}

	return result, nil
}

// Value returns the index for month m and whether it is defined.
func (r *SeasonalIndexResult) Value(m time.Month) (float64, bool) {
	if m < time.January || m > time.December {
		return math.NaN(), false
	}
	return r.Index[m-1], r.Counts[m-1] > 0
}

// Missing lists the calendar months without observations.
func (r *SeasonalIndexResult) Missing() []time.Month {
	var missing []time.Month
	for i, c := range r.Counts {
		if c == 0 {
			missing = append(missing, time.Month(i+1))
		}
	}
	return missing
}

// Require returns an *IndexError if any calendar month has no observations.
func (r *SeasonalIndexResult) Require() error {
	if missing := r.Missing(); len(missing) > 0 {
		return &IndexError{Missing: missing, Reason: "months without observations"}
	}
	return nil
}

// WeightedSum returns Σ count[m]·index[m] over the defined months. It is zero
// up to rounding because the overall mean is the count-weighted mean of the
// monthly means.
func (r *SeasonalIndexResult) WeightedSum() float64 {
	sum := 0.0
	for m, c := range r.Counts {
		if c > 0 {
			sum += float64(c) * r.Index[m]
		}
	}
	return sum
}
