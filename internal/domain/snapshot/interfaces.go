package snapshot

import (
	"context"
	"time"

	"github.com/avollmer/daykeep/internal/domain/goal"
)

// Repository provides append-only persistence for snapshots. ListByGoal
// returns snapshots ordered most-recent-first.
type Repository interface {
	Append(ctx context.Context, s *GoalSnapshot) error
	ListByGoal(ctx context.Context, goalID string) ([]GoalSnapshot, error)
}

// GoalReader lists a user's goals, used to find the active ones at closure.
type GoalReader interface {
	ListByUser(ctx context.Context, userID string) ([]goal.Goal, error)
}

// KeyResultReader lists a goal's key results for the actual-progress mean.
type KeyResultReader interface {
	ListByGoal(ctx context.Context, goalID string) ([]goal.KeyResult, error)
}

// Ledger answers and records idempotency receipts.
type Ledger interface {
	HasProcessed(ctx context.Context, factID, consumerName string) (bool, error)
	MarkProcessed(ctx context.Context, factID, consumerName string, at time.Time) error
}
