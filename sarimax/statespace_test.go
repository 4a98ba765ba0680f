package sarimax

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/gosarimax/timeseries"
)

func zeroParams() params {
	return params{
		ar:  []float64{0},
		ma:  []float64{0},
		sar: []float64{0},
		sma: []float64{0},
	}
}

func testSeries(n int) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = 50 + float64(i) + 8*math.Sin(2*math.Pi*float64(i)/12) + float64((i*7)%5)
	}
	return y
}

func TestDiffPoly(t *testing.T) {
	poly := diffPoly(ModelOrder)
	require.Len(t, poly, 14)

	expected := make([]float64, 14)
	expected[0], expected[1], expected[12], expected[13] = 1, -1, -1, 1
	assert.Equal(t, expected, poly)
}

func TestLagPoly(t *testing.T) {
	ar := lagPoly([]float64{0.5}, []float64{0.4}, 12, -1)
	require.Len(t, ar, 14)
	assert.InDelta(t, -0.5, ar[1], 1e-12)
	assert.InDelta(t, -0.4, ar[12], 1e-12)
	assert.InDelta(t, 0.2, ar[13], 1e-12)

	ma := lagPoly([]float64{0.3}, []float64{-0.6}, 12, 1)
	assert.InDelta(t, 0.3, ma[1], 1e-12)
	assert.InDelta(t, -0.6, ma[12], 1e-12)
	assert.InDelta(t, -0.18, ma[13], 1e-12)
}

func TestStateSpaceLayout(t *testing.T) {
	ss := newStateSpace(ModelOrder, params{
		ar:  []float64{0.5},
		ma:  []float64{0.3},
		sar: []float64{0.4},
		sma: []float64{-0.6},
	})

	assert.Equal(t, 14, ss.k)
	assert.Equal(t, 27, ss.dim)

	// Z = e0 + e14 + e25 - e26
	z := ss.z.RawVector().Data
	for i, v := range z {
		switch i {
		case 0, 14, 25:
			assert.Equal(t, 1.0, v, "Z[%d]", i)
		case 26:
			assert.Equal(t, -1.0, v, "Z[%d]", i)
		default:
			assert.Equal(t, 0.0, v, "Z[%d]", i)
		}
	}

	assert.InDelta(t, 0.5, ss.trans.At(0, 0), 1e-12)
	assert.InDelta(t, 0.4, ss.trans.At(11, 0), 1e-12)
	assert.InDelta(t, -0.2, ss.trans.At(12, 0), 1e-12)
	assert.Equal(t, 1.0, ss.trans.At(0, 1))
	assert.Equal(t, 1.0, ss.trans.At(15, 14))
	assert.Equal(t, 1.0, ss.trans.At(26, 25))

	// RRᵀ carries R = [1, θ, 0, ..., Θ, θΘ]
	assert.InDelta(t, 0.3, ss.rrt.At(0, 1), 1e-12)
	assert.InDelta(t, -0.6, ss.rrt.At(0, 12), 1e-12)
	assert.InDelta(t, -0.18, ss.rrt.At(0, 13), 1e-12)
}

func TestStationaryCovAR1(t *testing.T) {
	p := zeroParams()
	p.ar[0] = 0.5
	ss := newStateSpace(ModelOrder, p)

	cov, err := ss.stationaryCov()
	require.NoError(t, err)
	assert.InDelta(t, 1/(1-0.25), cov.At(0, 0), 1e-10)
}

func TestFilterWhiteNoiseErrors(t *testing.T) {
	// With every coefficient at zero the innovations are the twice
	// differenced series and every prediction variance is one.
	u := testSeries(40)
	ss := newStateSpace(ModelOrder, zeroParams())

	res, err := ss.filter(u)
	require.NoError(t, err)

	w := applyPoly(diffPoly(ModelOrder), u)
	require.Len(t, res.innovations, len(w))
	assert.Equal(t, 27, res.nEff)
	assert.InDeltaSlice(t, w, res.innovations, 1e-9)
	for _, f := range res.variances {
		assert.InDelta(t, 1.0, f, 1e-12)
	}

	sumSq := 0.0
	for _, v := range w {
		sumSq += v * v
	}
	sigma2 := sumSq / float64(len(w))
	assert.InDelta(t, sigma2, res.sigma2, 1e-9)
	expected := -float64(len(w)) / 2 * (math.Log(2*math.Pi) + math.Log(sigma2) + 1)
	assert.InDelta(t, expected, res.logLik, 1e-9)
}

func TestFilterTooShort(t *testing.T) {
	ss := newStateSpace(ModelOrder, zeroParams())
	_, err := ss.filter(testSeries(13))
	assert.Error(t, err)
}

func TestForecastRecursion(t *testing.T) {
	// With zero coefficients the forecast continues y_t = y_{t-1} + y_{t-12} - y_{t-13}.
	y := testSeries(40)
	series := timeseries.New(y)

	d, err := newDesign(ModelOrder, series, nil)
	require.NoError(t, err)
	p := zeroParams()
	fr, err := newStateSpace(ModelOrder, p).filter(d.regressionErrors(nil))
	require.NoError(t, err)
	model := newModel(d, p, fr)

	fc, err := model.Forecast(nil, 14)
	require.NoError(t, err)
	require.Equal(t, 14, fc.Len())

	ext := append([]float64(nil), y...)
	for h := 0; h < 14; h++ {
		n := len(ext)
		next := ext[n-1] + ext[n-12] - ext[n-13]
		assert.InDelta(t, next, fc.Points[h].Value, 1e-6, "step %d", h+1)
		ext = append(ext, next)
	}
}
