package model

import (
	"errors"
	"strings"
)

// ErrNotFound signals that no visible record matched the requested id.
var ErrNotFound = errors.New("item not found")

// ValidationError reports every rule an input payload violated, not just
// the first one.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
