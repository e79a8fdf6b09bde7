package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when an action is not permitted
	// in the report's current status
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus is returned when a status is not a valid report status
	ErrInvalidStatus = errors.New("invalid status")

	// ErrGuardFailed is returned when every candidate transition for an
	// action is blocked by its guard condition
	ErrGuardFailed = errors.New("guard condition failed")
)
