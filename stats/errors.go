package stats

import (
	"fmt"
	"strings"
	"time"
)

// DecompositionError is returned when a series cannot be decomposed.
type DecompositionError struct {
	Length int
	Period int
	Reason string
	Err    error // validation failure, if any
}

func (e *DecompositionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decomposition: %s (length %d, period %d): %v", e.Reason, e.Length, e.Period, e.Err)
	}
	return fmt.Sprintf("decomposition: %s (length %d, period %d)", e.Reason, e.Length, e.Period)
}

func (e *DecompositionError) Unwrap() error {
	return e.Err
}

// IndexError is returned when a seasonal index cannot be computed, or when a
// caller requires all twelve months and some are missing.
type IndexError struct {
	Missing []time.Month
	Reason  string
}

func (e *IndexError) Error() string {
	if len(e.Missing) == 0 {
		return "seasonal index: " + e.Reason
	}
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = m.String()
	}
	return fmt.Sprintf("seasonal index: %s: %s", e.Reason, strings.Join(names, ", "))
}
