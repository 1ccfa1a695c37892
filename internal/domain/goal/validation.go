package goal

import (
	"strings"

	"github.com/avollmer/daykeep/internal/clock"
)

// ValidateCreateInput validates fields required to create a goal.
func ValidateCreateInput(req CreateRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return ErrInvalidInput
	}
	switch req.Horizon {
	case HorizonMonth, HorizonQuarter, HorizonYear:
	default:
		return ErrInvalidInput
	}
	start, err := clock.ParseDay(req.StartDate)
	if err != nil {
		return ErrInvalidInput
	}
	end, err := clock.ParseDay(req.EndDate)
	if err != nil {
		return ErrInvalidInput
	}
	if !end.After(start) {
		return ErrInvalidInput
	}
	return nil
}

// ValidateKeyResultInput validates fields required to add a key result.
func ValidateKeyResultInput(req AddKeyResultRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return ErrInvalidInput
	}
	switch req.Type {
	case TypeAccumulative, TypeHabit, TypeMilestone:
	default:
		return ErrInvalidInput
	}
	if req.TargetValue <= 0 {
		return ErrInvalidInput
	}
	if req.Weight < 0 {
		return ErrInvalidInput
	}
	return nil
}

// ValidateStatusTransition validates a goal status change. Goals only leave
// ACTIVE; there is no path back.
func ValidateStatusTransition(from, to Status) error {
	if from == StatusActive && (to == StatusCompleted || to == StatusArchived) {
		return nil
	}
	return ErrInvalidTransition
}
