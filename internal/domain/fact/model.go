package fact

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies what happened.
type Kind string

const (
	KindTaskCreated       Kind = "TaskCreated"
	KindTaskCompleted     Kind = "TaskCompleted"
	KindDayClosed         Kind = "DayClosed"
	KindWeeklyPlanUpdated Kind = "WeeklyPlanUpdated"
	KindUserCreated       Kind = "UserCreated"
)

// Known reports whether the kind is part of the fact taxonomy.
func (k Kind) Known() bool {
	switch k {
	case KindTaskCreated, KindTaskCompleted, KindDayClosed, KindWeeklyPlanUpdated, KindUserCreated:
		return true
	}
	return false
}

// Fact is an immutable record that something happened. Facts are created once
// by an originating collaborator and are never mutated or deleted.
type Fact struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Kind       Kind      `json:"kind"`
	Payload    Payload   `json:"payload"`
}

// Payload carries the kind-specific fields of a fact. Only the fields relevant
// to the fact's kind are populated.
type Payload struct {
	TaskID       string  `json:"task_id,omitempty"`
	GoalID       *string `json:"goal_id,omitempty"`
	KeyResultID  *string `json:"key_result_id,omitempty"`
	Contribution float64 `json:"contribution,omitempty"`
	Day          string  `json:"day,omitempty"`
}

// Validate checks that the fact carries the envelope fields every consumer
// relies on. A kind outside the known taxonomy is deliberately allowed
// through: facts are replayable, and a stored fact may carry a kind this
// build no longer (or does not yet) recognize. The audit consumer decides
// what to do with those.
func (f Fact) Validate() error {
	if f.ID == "" || f.UserID == "" || f.Kind == "" {
		return ErrInvalidFact
	}
	if f.OccurredAt.IsZero() {
		return ErrInvalidFact
	}
	return nil
}

// NewTaskCreated builds a TaskCreated fact.
func NewTaskCreated(userID, taskID string, at time.Time) Fact {
	return Fact{
		ID:         uuid.NewString(),
		UserID:     userID,
		OccurredAt: at,
		Kind:       KindTaskCreated,
		Payload:    Payload{TaskID: taskID},
	}
}

// NewTaskCompleted builds a TaskCompleted fact. goalID and keyResultID are nil
// for tasks not linked to a goal.
func NewTaskCompleted(userID, taskID string, goalID, keyResultID *string, contribution float64, at time.Time) Fact {
	return Fact{
		ID:         uuid.NewString(),
		UserID:     userID,
		OccurredAt: at,
		Kind:       KindTaskCompleted,
		Payload: Payload{
			TaskID:       taskID,
			GoalID:       goalID,
			KeyResultID:  keyResultID,
			Contribution: contribution,
		},
	}
}

// NewDayClosed builds a DayClosed fact for a civil day ("2006-01-02").
func NewDayClosed(userID, day string, at time.Time) Fact {
	return Fact{
		ID:         uuid.NewString(),
		UserID:     userID,
		OccurredAt: at,
		Kind:       KindDayClosed,
		Payload:    Payload{Day: day},
	}
}

// NewWeeklyPlanUpdated builds a WeeklyPlanUpdated fact. The payload day holds
// the week's start date.
func NewWeeklyPlanUpdated(userID, weekStart string, at time.Time) Fact {
	return Fact{
		ID:         uuid.NewString(),
		UserID:     userID,
		OccurredAt: at,
		Kind:       KindWeeklyPlanUpdated,
		Payload:    Payload{Day: weekStart},
	}
}

// NewUserCreated builds a UserCreated fact.
func NewUserCreated(userID string, at time.Time) Fact {
	return Fact{
		ID:         uuid.NewString(),
		UserID:     userID,
		OccurredAt: at,
		Kind:       KindUserCreated,
	}
}
