// Package report builds the comparison tables printed next to a forecast.
package report

import (
	"time"

	"github.com/sartorproj/gosarimax/timeseries"
)

// Row compares one forecast month with the same month one year earlier.
type Row struct {
	Time      time.Time `json:"time"`
	Predicted float64   `json:"predicted"`
	Previous  *float64  `json:"previous"`      // observed value 12 months earlier, nil when not observed
	Variation *float64  `json:"variation_pct"` // (predicted − previous) / previous × 100, nil when undefined
}

// HasPrevious reports whether the year-ago month was observed.
func (r Row) HasPrevious() bool {
	return r.Previous != nil
}

// YearOverYear pairs every forecast month with the history value twelve
// months earlier. Months missing from history, or forecasts more than a year
// past it, get no previous value.
func YearOverYear(history, forecast *timeseries.Series) []Row {
	observed := byMonth(history)
	rows := make([]Row, forecast.Len())
	for i, v := range forecast.Values {
		t := forecast.Timestamps[i]
		rows[i] = Row{Time: t, Predicted: v}
		prev, ok := observed[timeseries.AddMonths(t, -12)]
		if !ok {
			continue
		}
		rows[i].Previous = &prev
		rows[i].Variation = percentChange(v, prev)
	}
	return rows
}

// Check compares a predicted month with its observed value.
type Check struct {
	Time       time.Time `json:"time"`
	Observed   float64   `json:"observed"`
	Predicted  float64   `json:"predicted"`
	Difference float64   `json:"difference"`   // observed − predicted
	Relative   *float64  `json:"relative_pct"` // (predicted − observed) / observed × 100, nil when observed is zero
}

// Compare lines predicted up with observed by month and returns one Check per
// month present in both, in forecast order.
func Compare(observed, predicted *timeseries.Series) []Check {
	values := byMonth(observed)
	var checks []Check
	for i, p := range predicted.Values {
		t := predicted.Timestamps[i]
		o, ok := values[timeseries.MonthStart(t)]
		if !ok {
			continue
		}
		checks = append(checks, Check{
			Time:       t,
			Observed:   o,
			Predicted:  p,
			Difference: o - p,
			Relative:   percentChange(p, o),
		})
	}
	return checks
}

func byMonth(s *timeseries.Series) map[time.Time]float64 {
	out := make(map[time.Time]float64, s.Len())
	for i, v := range s.Values {
		out[timeseries.MonthStart(s.Timestamps[i])] = v
	}
	return out
}

func percentChange(value, base float64) *float64 {
	if base == 0 {
		return nil
	}
	pct := (value - base) / base * 100
	return &pct
}
