package sarimax

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by *EstimationError through errors.Is.
var (
	ErrTooShort        = errors.New("sarimax: series too short")
	ErrExogMismatch    = errors.New("sarimax: exogenous rows do not match the series")
	ErrInvalidInput    = errors.New("sarimax: invalid input")
	ErrNotConverged    = errors.New("sarimax: optimizer did not converge")
	ErrSingular        = errors.New("sarimax: singular exogenous design")
	ErrInvalidForecast = errors.New("sarimax: invalid forecast request")
)

// Reason classifies an estimation failure.
type Reason int

const (
	ReasonTooShort Reason = iota + 1
	ReasonExogMismatch
	ReasonInvalidInput
	ReasonNotConverged
	ReasonSingular
	ReasonCanceled
)

func (r Reason) String() string {
	switch r {
	case ReasonTooShort:
		return "too short"
	case ReasonExogMismatch:
		return "exog mismatch"
	case ReasonInvalidInput:
		return "invalid input"
	case ReasonNotConverged:
		return "not converged"
	case ReasonSingular:
		return "singular"
	case ReasonCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// sentinel returns the error matched by errors.Is for the reason. A canceled
// fit is reported as a fit that did not converge.
func (r Reason) sentinel() error {
	switch r {
	case ReasonTooShort:
		return ErrTooShort
	case ReasonExogMismatch:
		return ErrExogMismatch
	case ReasonInvalidInput:
		return ErrInvalidInput
	case ReasonSingular:
		return ErrSingular
	default:
		return ErrNotConverged
	}
}

// EstimationError is returned by Fit when no model can be produced.
type EstimationError struct {
	Reason Reason
	Detail string
	Err    error // underlying cause, may be nil
}

func (e *EstimationError) Error() string {
	msg := "sarimax: estimation failed (" + e.Reason.String() + ")"
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EstimationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason.sentinel()}
	}
	return []error{e.Reason.sentinel(), e.Err}
}

func estimationErrorf(reason Reason, cause error, format string, args ...any) *EstimationError {
	return &EstimationError{Reason: reason, Detail: fmt.Sprintf(format, args...), Err: cause}
}

// ForecastError is returned by Forecast when the request does not match the
// fitted model.
type ForecastError struct {
	Steps  int
	Detail string
}

func (e *ForecastError) Error() string {
	return fmt.Sprintf("sarimax: forecast of %d steps: %s", e.Steps, e.Detail)
}

func (e *ForecastError) Unwrap() error {
	return ErrInvalidForecast
}
