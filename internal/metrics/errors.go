package metrics

import (
	"errors"
	"fmt"
)

// ErrInsufficientInput reports text too short for a metric to be defined.
var ErrInsufficientInput = errors.New("insufficient input")

// InsufficientInputError names the metric that could not be computed.
type InsufficientInputError struct {
	Metric string
	Need   int
	Got    int
}

func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("%s needs at least %d letters, got %d", e.Metric, e.Need, e.Got)
}

// Is matches ErrInsufficientInput.
func (e *InsufficientInputError) Is(target error) bool {
	return target == ErrInsufficientInput
}

func require(metric string, need, got int) error {
	if got < need {
		return &InsufficientInputError{Metric: metric, Need: need, Got: got}
	}
	return nil
}
