package plan

import "errors"

var (
	// ErrPlanNotFound indicates no daily plan exists for the user and day.
	ErrPlanNotFound = errors.New("daily plan not found")
	// ErrWeekPlanNotFound indicates no weekly plan exists for the week.
	ErrWeekPlanNotFound = errors.New("weekly plan not found")
	// ErrPlanClosed indicates a mutation was attempted against a closed plan.
	// A closed plan is execution truth and is permanently immutable.
	ErrPlanClosed = errors.New("daily plan is closed")
	// ErrDuplicatePlan indicates a plan already exists for the user and day.
	ErrDuplicatePlan = errors.New("daily plan already exists for day")
	// ErrDuplicateEntry indicates the task is already planned for the day.
	ErrDuplicateEntry = errors.New("task already planned for day")
	// ErrEntryNotFound indicates the task is not planned for the day.
	ErrEntryNotFound = errors.New("task not planned for day")
	// ErrInvalidTransition indicates an invalid entry status transition.
	ErrInvalidTransition = errors.New("invalid entry status transition")
	// ErrInvalidInput indicates invalid input for plan operations.
	ErrInvalidInput = errors.New("invalid plan input")
)
