package amortization

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports a violated numeric precondition.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

// NewInvalidInputError reports that field held value, which fails reason.
func NewInvalidInputError(field string, value float64, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s, got %v", e.Field, e.Reason, e.Value)
}

// Is lets errors.Is(err, ErrInvalidInput) match.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IsInvalidInput reports whether err carries an InvalidInputError.
func IsInvalidInput(err error) bool {
	var invalid *InvalidInputError
	return errors.As(err, &invalid)
}
