package calculation

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonFinite marks a NaN or infinite value produced inside the pipeline.
// It always indicates a gap in validation and is never clamped.
var ErrNonFinite = errors.New("non-finite value")

// ErrNonPositiveNetPower is returned when the power balance leaves no net output
var ErrNonPositiveNetPower = errors.New("net electric power is not positive")

// AccountError identifies the cost account that failed
type AccountError struct {
	Account string
	Item    string
	Err     error
}

func (e *AccountError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("%s (%s): %v", e.Account, e.Item, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Account, e.Err)
}

func (e *AccountError) Unwrap() error {
	return e.Err
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// checkFinite returns an AccountError wrapping ErrNonFinite when v is NaN or infinite
func checkFinite(account, item string, v float64) error {
	if isFinite(v) {
		return nil
	}
	return &AccountError{Account: account, Item: item, Err: fmt.Errorf("%w: %v", ErrNonFinite, v)}
}
