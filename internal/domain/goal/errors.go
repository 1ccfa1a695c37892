package goal

import "errors"

var (
	// ErrGoalNotFound indicates the goal doesn't exist.
	ErrGoalNotFound = errors.New("goal not found")
	// ErrKeyResultNotFound indicates the key result doesn't exist.
	ErrKeyResultNotFound = errors.New("key result not found")
	// ErrOwnershipViolation indicates a fact's user does not own the goal or
	// key result being evaluated. This never happens in correct operation and
	// points at a data integrity defect, not a user error.
	ErrOwnershipViolation = errors.New("key result owned by another user")
	// ErrUnknownKeyResultType indicates a key result type with no strategy.
	ErrUnknownKeyResultType = errors.New("unknown key result type")
	// ErrInvalidTransition indicates an invalid goal status transition.
	ErrInvalidTransition = errors.New("invalid goal status transition")
	// ErrInvalidInput indicates invalid input for goal operations.
	ErrInvalidInput = errors.New("invalid goal input")
)
