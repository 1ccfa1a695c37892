package goal

import (
	"context"
	"time"

	"github.com/avollmer/daykeep/internal/domain/plan"
	"github.com/avollmer/daykeep/internal/domain/task"
)

// Repository provides persistence for goals.
type Repository interface {
	Create(ctx context.Context, g *Goal) error
	Get(ctx context.Context, userID, id string) (*Goal, error)
	UpdateStatus(ctx context.Context, userID, id string, status Status) error
	ListByUser(ctx context.Context, userID string) ([]Goal, error)
}

// KeyResultRepository provides the read side of key result persistence. The
// user-facing service holds only this interface, so nothing outside the
// evaluator can write CurrentValue.
type KeyResultRepository interface {
	Create(ctx context.Context, kr *KeyResult) error
	Get(ctx context.Context, id string) (*KeyResult, error)
	ListByGoal(ctx context.Context, goalID string) ([]KeyResult, error)
}

// EvaluationStore is the evaluator-only write path for derived key result
// state.
type EvaluationStore interface {
	SetCurrentValue(ctx context.Context, id string, value float64) error
}

// PlanReader loads a user's daily plan, used by the habit strategy.
type PlanReader interface {
	GetByDay(ctx context.Context, userID, day string) (*plan.DailyPlan, error)
}

// TaskReader loads tasks, used by the habit strategy to resolve entry links.
type TaskReader interface {
	Get(ctx context.Context, userID, id string) (*task.Task, error)
}

// Ledger answers and records idempotency receipts for the evaluator.
type Ledger interface {
	HasProcessed(ctx context.Context, factID, consumerName string) (bool, error)
	MarkProcessed(ctx context.Context, factID, consumerName string, at time.Time) error
}
