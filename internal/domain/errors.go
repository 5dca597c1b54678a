package domain

import (
	"errors"
	"fmt"
)

// MaxActiveReminders caps active reminders per owner.
const MaxActiveReminders = 20

var (
	// ErrLimitExceeded is returned when an owner already holds the maximum
	// number of active reminders.
	ErrLimitExceeded = errors.New("active reminder limit reached")

	// ErrStoreUnavailable marks persistence failures surfaced to users as
	// "try again later".
	ErrStoreUnavailable = errors.New("reminder store unavailable")
)

// ValidationError reports malformed user input in explicit commands.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError formats a ValidationError for field.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
