package sarimax

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstrainStationary(t *testing.T) {
	phi := constrainStationary([]float64{0})
	assert.Equal(t, []float64{0}, phi)

	phi = constrainStationary([]float64{1})
	assert.InDelta(t, 1/math.Sqrt2, phi[0], 1e-12)

	// Large inputs approach but never reach the unit circle.
	phi = constrainStationary([]float64{1e6})
	assert.Less(t, phi[0], 1.0)
	phi = constrainStationary([]float64{-1e6})
	assert.Greater(t, phi[0], -1.0)
}

func TestConstrainStationaryAR2(t *testing.T) {
	// Partials r1, r2 give φ2 = r2 and φ1 = r1(1 - r2).
	x := []float64{0.5, -0.3}
	r1 := x[0] / math.Sqrt(1+x[0]*x[0])
	r2 := x[1] / math.Sqrt(1+x[1]*x[1])

	phi := constrainStationary(x)
	require.Len(t, phi, 2)
	assert.InDelta(t, r1*(1-r2), phi[0], 1e-12)
	assert.InDelta(t, r2, phi[1], 1e-12)

	// Stationarity triangle for AR(2).
	assert.Less(t, phi[0]+phi[1], 1.0)
	assert.Less(t, phi[1]-phi[0], 1.0)
	assert.Less(t, math.Abs(phi[1]), 1.0)
}

func TestTransformRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
	}{
		{"single", []float64{0.7}},
		{"negative", []float64{-1.3}},
		{"two", []float64{0.4, -0.8}},
		{"three", []float64{1.2, 0.3, -0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			back := unconstrainStationary(constrainStationary(tt.x))
			assert.InDeltaSlice(t, tt.x, back, 1e-9)

			back = unconstrainInvertible(constrainInvertible(tt.x))
			assert.InDeltaSlice(t, tt.x, back, 1e-9)
		})
	}
}

func TestConstrainInvertibleSign(t *testing.T) {
	theta := constrainInvertible([]float64{1})
	assert.InDelta(t, -1/math.Sqrt2, theta[0], 1e-12)
}

func TestUnconstrainClipsPartials(t *testing.T) {
	x := unconstrainStationary([]float64{1.5})
	assert.False(t, math.IsInf(x[0], 0))
	assert.InDelta(t, maxPartial, constrainStationary(x)[0], 1e-12)
}
