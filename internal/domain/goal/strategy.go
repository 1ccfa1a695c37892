package goal

import (
	"context"
	"fmt"

	"github.com/avollmer/daykeep/internal/domain/fact"
	"github.com/avollmer/daykeep/internal/domain/plan"
)

// Strategy evaluates a single key result against a fact. It returns the new
// current value and whether the fact applies to this key result at all;
// callers persist only applied, changed values.
type Strategy interface {
	Evaluate(ctx context.Context, kr KeyResult, f fact.Fact) (float64, bool, error)
}

// accumulative adds a completed task's contribution when the task references
// the key result.
type accumulative struct{}

func (accumulative) Evaluate(_ context.Context, kr KeyResult, f fact.Fact) (float64, bool, error) {
	if f.Kind != fact.KindTaskCompleted {
		return kr.CurrentValue, false, nil
	}
	if f.Payload.KeyResultID == nil || *f.Payload.KeyResultID != kr.ID {
		return kr.CurrentValue, false, nil
	}
	return kr.CurrentValue + f.Payload.Contribution, true, nil
}

// habit adds exactly 1.0 when the closed day's plan holds at least one
// COMPLETED entry whose task is linked to the key result. At most one
// increment per closed day, however many entries qualify.
type habit struct {
	plans PlanReader
	tasks TaskReader
}

func (h habit) Evaluate(ctx context.Context, kr KeyResult, f fact.Fact) (float64, bool, error) {
	if f.Kind != fact.KindDayClosed {
		return kr.CurrentValue, false, nil
	}

	p, err := h.plans.GetByDay(ctx, f.UserID, f.Payload.Day)
	if err != nil {
		return 0, false, fmt.Errorf("loading daily plan: %w", err)
	}

	for _, entry := range p.Entries {
		if entry.Status != plan.EntryCompleted {
			continue
		}
		t, err := h.tasks.Get(ctx, f.UserID, entry.TaskID)
		if err != nil {
			return 0, false, fmt.Errorf("loading task %s: %w", entry.TaskID, err)
		}
		if t.KeyResultID != nil && *t.KeyResultID == kr.ID {
			return kr.CurrentValue + 1.0, true, nil
		}
	}

	return kr.CurrentValue, false, nil
}

// milestone sets the key result to its target when a completed task
// references it. Binary and not reversible through this path.
type milestone struct{}

func (milestone) Evaluate(_ context.Context, kr KeyResult, f fact.Fact) (float64, bool, error) {
	if f.Kind != fact.KindTaskCompleted {
		return kr.CurrentValue, false, nil
	}
	if f.Payload.KeyResultID == nil || *f.Payload.KeyResultID != kr.ID {
		return kr.CurrentValue, false, nil
	}
	return kr.TargetValue, true, nil
}
