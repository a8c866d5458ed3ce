package itinerary

import (
	"errors"
	"strings"
)

var ErrSchemaInvalid = errors.New("json_schema_invalid")

const maxViolations = 5

// ValidationError lists at most five schema violations.
type ValidationError struct {
	Violations []string
}

func newValidationError(violations ...string) *ValidationError {
	if len(violations) > maxViolations {
		violations = violations[:maxViolations]
	}
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrSchemaInvalid.Error()
	}
	return ErrSchemaInvalid.Error() + ": " + strings.Join(e.Violations, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrSchemaInvalid }
