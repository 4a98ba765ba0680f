package sarimax

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/gosarimax/timeseries"
)

// ForecastPoint is one forecast month.
type ForecastPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Forecast holds point forecasts for consecutive months following the last
// observation.
type Forecast struct {
	Points []ForecastPoint `json:"points"`
}

// Len returns the number of forecast steps.
func (f *Forecast) Len() int {
	return len(f.Points)
}

// Values returns the forecast values in order.
func (f *Forecast) Values() []float64 {
	out := make([]float64, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.Value
	}
	return out
}

// Series returns the forecast as a time series named "forecast".
func (f *Forecast) Series() *timeseries.Series {
	ts := make([]time.Time, len(f.Points))
	for i, p := range f.Points {
		ts[i] = p.Time
	}
	return &timeseries.Series{Timestamps: ts, Values: f.Values(), Name: "forecast"}
}

// Forecast produces steps point forecasts starting one month after the last
// observation. When the model has regressors, exogFuture must hold exactly
// steps rows with the fitted column count; otherwise it must be nil or empty.
// Future innovations are set to zero, so the forecast is the conditional mean.
func (m *Model) Forecast(exogFuture *timeseries.Matrix, steps int) (*Forecast, error) {
	if err := m.checkFuture(exogFuture, steps); err != nil {
		return nil, err
	}

	a := mat.NewVecDense(len(m.state), append([]float64(nil), m.state...))
	var next mat.VecDense
	points := make([]ForecastPoint, steps)
	for h := 0; h < steps; h++ {
		value := mat.Dot(m.ss.z, a)
		if m.NumExog() > 0 {
			value += floats.Dot(exogFuture.Rows[h], m.params.beta)
		}
		points[h] = ForecastPoint{
			Time:  timeseries.AddMonths(m.last, h+1),
			Value: value,
		}

		next.MulVec(m.ss.trans, a)
		a.CopyVec(&next)
	}

	return &Forecast{Points: points}, nil
}

func (m *Model) checkFuture(exogFuture *timeseries.Matrix, steps int) error {
	if steps < 1 {
		return &ForecastError{Steps: steps, Detail: "steps must be at least 1"}
	}

	k := m.NumExog()
	if k == 0 {
		if exogFuture.Len() > 0 {
			return &ForecastError{Steps: steps, Detail: fmt.Sprintf("model has no regressors but %d future rows were given", exogFuture.Len())}
		}
		return nil
	}

	if exogFuture.Len() != steps {
		return &ForecastError{Steps: steps, Detail: fmt.Sprintf("need %d future regressor rows, got %d", steps, exogFuture.Len())}
	}
	if exogFuture.Width() != k {
		return &ForecastError{Steps: steps, Detail: fmt.Sprintf("need %d regressor columns, got %d", k, exogFuture.Width())}
	}
	if err := exogFuture.Validate(); err != nil {
		return &ForecastError{Steps: steps, Detail: err.Error()}
	}
	return nil
}
