package sarimax

import (
	"io"
	"log/slog"
)

const (
	defaultMaxIterations     = 500
	defaultGradientTolerance = 1e-5
)

type config struct {
	maxIterations     int
	gradientTolerance float64
	logger            *slog.Logger
}

// Option configures an estimation.
type Option func(*config)

// WithMaxIterations bounds the number of major optimizer iterations.
// Non-positive values are ignored.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithGradientTolerance sets the infinity-norm gradient threshold at which
// the optimizer stops. Non-positive values are ignored.
func WithGradientTolerance(tol float64) Option {
	return func(c *config) {
		if tol > 0 {
			c.gradientTolerance = tol
		}
	}
}

// WithLogger routes estimation progress to logger. The default discards it.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newConfig(opts []Option) config {
	c := config{
		maxIterations:     defaultMaxIterations,
		gradientTolerance: defaultGradientTolerance,
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
