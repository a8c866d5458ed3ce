package utils

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTodoStatus = errors.New("status must be one of PENDING, DONE, SKIPPED")
	ErrTripNotFound      = errors.New("trip not found")
	ErrTodoNotFound      = errors.New("todo not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrDatabaseError     = errors.New("database error")
	ErrTripPersistFailed = errors.New("trip_persist_failed")
	ErrCacheUnavailable  = errors.New("cache unavailable")
)

// Reason codes carried in error responses and in best-effort failure logs.
const (
	ReasonBadRequest          = "bad_request"
	ReasonNoJSONFound         = "no_json_found"
	ReasonSchemaInvalid       = "json_schema_invalid"
	ReasonNoProvider          = "no_provider_available"
	ReasonTripPersistFailed   = "trip_persist_failed"
	ReasonTripNotFound        = "trip_not_found"
	ReasonTodoNotFound        = "todo_not_found"
	ReasonTodoBootstrapFailed = "todo_bootstrap_failed"
	ReasonCacheWriteFailed    = "companion_cache_write_failed"
	ReasonEnqueueFailed       = "companion_enqueue_failed"
	ReasonInternal            = "internal_error"
)

// ProviderFailure is implemented by errors meaning no language model backend
// produced a completion.
type ProviderFailure interface {
	error
	NoProviderAvailable() bool
}

// GenerationError is the terminal failure of itinerary generation after every
// prompt variant and fallback attempt has been spent.
type GenerationError struct {
	Reason   string
	Details  []string
	Attempts int
}

func (e *GenerationError) Error() string {
	if len(e.Details) == 0 {
		return e.Reason
	}
	return e.Reason + ": " + strings.Join(e.Details, "; ")
}

// DetailedError attaches a bounded list of human-readable details to a
// sentinel error.
type DetailedError struct {
	Err     error
	Details []string
}

func NewDetailedError(err error, details ...string) *DetailedError {
	if len(details) > 5 {
		details = details[:5]
	}
	return &DetailedError{Err: err, Details: details}
}

func (e *DetailedError) Error() string {
	if len(e.Details) == 0 {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + strings.Join(e.Details, "; ")
}

func (e *DetailedError) Unwrap() error { return e.Err }
