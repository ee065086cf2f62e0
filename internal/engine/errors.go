package engine

import "fmt"

// IllegalTransitionError is returned when a completed life task is toggled
// back: the boost it minted is an irreversible grant.
type IllegalTransitionError struct {
	TaskID string
}

func (e IllegalTransitionError) Error() string {
	return fmt.Sprintf("life task %s is already completed; its boost was granted and cannot be taken back", e.TaskID)
}

// ValidationError rejects user input before any mutation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}
