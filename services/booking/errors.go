package booking

import (
	"fmt"

	"sajilosewa/models"
)

// ValidationError is a precondition failure on the draft itself. It is never
// forwarded to a payment provider.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ConflictError means the requested action lost a race: the slot was taken,
// or another initiation for the same session is still in flight.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Message)
}

// StateError means the session is not in a state that accepts the action.
type StateError struct {
	State   models.SessionState
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invalid in state %q: %s", e.State, e.Message)
}
