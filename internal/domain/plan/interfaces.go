package plan

import (
	"context"

	"github.com/avollmer/daykeep/internal/domain/fact"
	"github.com/avollmer/daykeep/internal/domain/task"
)

// Repository provides persistence for daily plans. Save persists the plan's
// entries and closed flag together.
type Repository interface {
	Create(ctx context.Context, p *DailyPlan) error
	GetByDay(ctx context.Context, userID, day string) (*DailyPlan, error)
	Save(ctx context.Context, p *DailyPlan) error
}

// WeekRepository provides persistence for weekly plans.
type WeekRepository interface {
	Upsert(ctx context.Context, p *WeeklyPlan) error
	GetByWeek(ctx context.Context, userID, weekStart string) (*WeeklyPlan, error)
}

// TaskReader resolves planned task IDs, used to reject planning of unknown
// tasks.
type TaskReader interface {
	Get(ctx context.Context, userID, id string) (*task.Task, error)
}

// FactRepository appends facts to the immutable fact stream.
type FactRepository interface {
	Append(ctx context.Context, f *fact.Fact) error
}

// Publisher delivers facts to registered consumers.
type Publisher interface {
	Publish(ctx context.Context, f fact.Fact) error
}
