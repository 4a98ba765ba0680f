// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Epoch is the first month used by New when no start month is given.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Series represents a monthly time series with timestamps and values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a new monthly time series from values, starting at Epoch.
func New(values []float64) *Series {
	return NewMonthly(Epoch, values)
}

// NewMonthly creates a monthly series whose first observation falls in the
// month of start.
func NewMonthly(start time.Time, values []float64) *Series {
	return &Series{
		Timestamps: MonthRange(start, len(values)),
		Values:     values,
	}
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Last returns the timestamp of the last observation.
func (s *Series) Last() (time.Time, bool) {
	if len(s.Timestamps) == 0 {
		return time.Time{}, false
	}
	return s.Timestamps[len(s.Timestamps)-1], true
}

// ValidateMonthly checks that the series is a gap-free, strictly ascending
// monthly sequence of finite values.
func (s *Series) ValidateMonthly() error {
	if len(s.Timestamps) != len(s.Values) {
		return fmt.Errorf("series %q: %d timestamps for %d values", s.Name, len(s.Timestamps), len(s.Values))
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("series %q: non-finite value at index %d", s.Name, i)
		}
	}
	for i := 1; i < len(s.Timestamps); i++ {
		want := AddMonths(s.Timestamps[i-1], 1)
		if !MonthStart(s.Timestamps[i]).Equal(want) {
			return fmt.Errorf("series %q: expected %s at index %d, got %s",
				s.Name, want.Format("2006-01"), i, s.Timestamps[i].Format("2006-01"))
		}
	}
	return nil
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// Std calculates the standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Diff calculates the first difference of the series (d=1).
func (s *Series) Diff() *Series {
	return s.lagDiff(1, "_diff")
}

// DiffN applies the first difference n times.
func (s *Series) DiffN(n int) *Series {
	out := s
	for i := 0; i < n; i++ {
		out = out.Diff()
	}
	return out
}

// SeasonalDiff calculates the seasonal difference with period m.
func (s *Series) SeasonalDiff(m int) *Series {
	return s.lagDiff(m, "_seasonal_diff")
}

func (s *Series) lagDiff(lag int, suffix string) *Series {
	if lag <= 0 || len(s.Values) <= lag {
		return &Series{Values: []float64{}, Name: s.Name + suffix}
	}

	result := make([]float64, len(s.Values)-lag)
	for i := lag; i < len(s.Values); i++ {
		result[i-lag] = s.Values[i] - s.Values[i-lag]
	}

	timestamps := make([]time.Time, len(result))
	if len(s.Timestamps) > lag {
		copy(timestamps, s.Timestamps[lag:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + suffix,
	}
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}, Name: s.Name}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= end {
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// WithValues returns a series sharing the receiver's timestamps but holding
// the given values.
func (s *Series) WithValues(name string, values []float64) *Series {
	return &Series{
		Timestamps: s.Timestamps,
		Values:     values,
		Name:       name,
	}
}

// MovingAverage calculates a trailing simple moving average with window size.
// The i-th output averages Values[i : i+window].
func (s *Series) MovingAverage(window int) *Series {
	if window <= 0 || window > len(s.Values) {
		return &Series{Values: []float64{}}
	}

	result := make([]float64, len(s.Values)-window+1)
	sum := floats.Sum(s.Values[:window])
	result[0] = sum / float64(window)

	for i := window; i < len(s.Values); i++ {
		sum = sum - s.Values[i-window] + s.Values[i]
		result[i-window+1] = sum / float64(window)
	}

	timestamps := make([]time.Time, len(result))
	if len(s.Timestamps) >= window {
		copy(timestamps, s.Timestamps[window-1:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + "_ma",
	}
}
