package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no birthday has the requested id.
	ErrNotFound = errors.New("birthday not found")
	// ErrUnauthorized is returned when the session check or login fails.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrStoreUnavailable wraps every connectivity, config or driver failure of the store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Unavailable wraps a driver error so callers can match ErrStoreUnavailable
// while the cause stays reachable for logging.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// Reason classifies why a field failed validation.
type Reason string

const (
	ReasonEmptyField          Reason = "EmptyField"
	ReasonBadFormat           Reason = "BadFormat"
	ReasonInvalidCalendarDate Reason = "InvalidCalendarDate"
	ReasonBadURL              Reason = "BadURL"
	ReasonMissingOrInvalidID  Reason = "MissingOrInvalidId"
)

// FieldError is one human-readable problem with one input field.
type FieldError struct {
	Field   string `json:"field"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// ValidationError carries every field problem found in a candidate record.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a field problem.
func (e *ValidationError) Add(field string, reason Reason, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Reason: reason, Message: message})
}

// Has reports whether any field problem was recorded for field.
func (e *ValidationError) Has(field string, reason Reason) bool {
	for _, fe := range e.Errors {
		if fe.Field == field && fe.Reason == reason {
			return true
		}
	}
	return false
}

// ByField groups the messages by field name, keeping their order.
func (e *ValidationError) ByField() map[string][]string {
	out := make(map[string][]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}
