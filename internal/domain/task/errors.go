package task

import "errors"

var (
	// ErrTaskNotFound indicates the task doesn't exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrAlreadyCompleted indicates the task was completed before. Completion
	// is one-way so that TaskCompleted facts stay one-to-one with real
	// completions.
	ErrAlreadyCompleted = errors.New("task already completed")
	// ErrInvalidInput indicates invalid input for task operations.
	ErrInvalidInput = errors.New("invalid task input")
)
