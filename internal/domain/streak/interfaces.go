package streak

import (
	"context"
	"time"

	"github.com/avollmer/daykeep/internal/domain/plan"
)

// Repository provides persistence for streak state, one row per user.
type Repository interface {
	Get(ctx context.Context, userID string) (*State, error)
	Save(ctx context.Context, s *State) error
}

// PlanReader loads the closed day's plan.
type PlanReader interface {
	GetByDay(ctx context.Context, userID, day string) (*plan.DailyPlan, error)
}

// Ledger answers and records idempotency receipts.
type Ledger interface {
	HasProcessed(ctx context.Context, factID, consumerName string) (bool, error)
	MarkProcessed(ctx context.Context, factID, consumerName string, at time.Time) error
}
