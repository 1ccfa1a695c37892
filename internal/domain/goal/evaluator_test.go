package goal_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avollmer/daykeep/internal/clock"
	"github.com/avollmer/daykeep/internal/domain/fact"
	"github.com/avollmer/daykeep/internal/domain/goal"
	"github.com/avollmer/daykeep/internal/domain/plan"
	"github.com/avollmer/daykeep/internal/domain/task"
	"github.com/avollmer/daykeep/internal/repository/mocks"
)

var evalAt = time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type evalFixture struct {
	goals      *mocks.GoalRepository
	keyResults *mocks.KeyResultRepository
	store      *mocks.EvaluationStore
	plans      *mocks.PlanRepository
	tasks      *mocks.TaskRepository
	ledger     *mocks.Ledger
	evaluator  *goal.Evaluator
}

func newEvalFixture() *evalFixture {
	f := &evalFixture{
		goals:      &mocks.GoalRepository{},
		keyResults: &mocks.KeyResultRepository{},
		store:      &mocks.EvaluationStore{},
		plans:      &mocks.PlanRepository{},
		tasks:      &mocks.TaskRepository{},
		ledger:     &mocks.Ledger{},
	}
	f.evaluator = goal.NewEvaluator(
		f.goals, f.keyResults, f.store, f.plans, f.tasks,
		f.ledger, clock.Fixed{Instant: evalAt}, testLogger(),
	)
	return f
}

func activeGoal(id, userID string) goal.Goal {
	return goal.Goal{
		ID:        id,
		UserID:    userID,
		Title:     "Goal",
		Horizon:   goal.HorizonQuarter,
		StartDate: "2026-01-01",
		EndDate:   "2026-03-31",
		Status:    goal.StatusActive,
	}
}

func TestEvaluator_AccumulativeAddsContribution(t *testing.T) {
	ctx := context.Background()
	f := newEvalFixture()

	krID := "kr1"
	goalID := "g1"
	f.ledger.On("HasProcessed", ctx, mock.Anything, "GOAL").Return(false, nil)
	f.goals.On("ListByUser", ctx, "u1").Return([]goal.Goal{activeGoal("g1", "u1")}, nil)
	f.keyResults.On("ListByGoal", ctx, "g1").Return([]goal.KeyResult{{
		ID: krID, GoalID: "g1", Type: goal.TypeAccumulative,
		TargetValue: 100, CurrentValue: 10, Weight: 1,
	}}, nil)
	f.store.On("SetCurrentValue", ctx, krID, 15.0).Return(nil)
	f.ledger.On("MarkProcessed", ctx, mock.Anything, "GOAL", evalAt).Return(nil)

	completed := fact.NewTaskCompleted("u1", "t1", &goalID, &krID, 5, evalAt)
	require.NoError(t, f.evaluator.Handle(ctx, completed))

	f.store.AssertCalled(t, "SetCurrentValue", ctx, krID, 15.0)
	f.ledger.AssertCalled(t, "MarkProcessed", ctx, completed.ID, "GOAL", evalAt)
}

func TestEvaluator_MilestoneJumpsToTarget(t *testing.T) {
	ctx := context.Background()
	f := newEvalFixture()

	krID := "kr1"
	goalID := "g1"
	f.ledger.On("HasProcessed", ctx, mock.Anything, "GOAL").Return(false, nil)
	f.goals.On("ListByUser", ctx, "u1").Return([]goal.Goal{activeGoal("g1", "u1")}, nil)
	f.keyResults.On("ListByGoal", ctx, "g1").Return([]goal.KeyResult{{
		ID: krID, GoalID: "g1", Type: goal.TypeMilestone,
		TargetValue: 1, CurrentValue: 0, Weight: 1,
	}}, nil)
	f.store.On("SetCurrentValue", ctx, krID, 1.0).Return(nil)
	f.ledger.On("MarkProcessed", ctx, mock.Anything, "GOAL", evalAt).Return(nil)

	completed := fact.NewTaskCompleted("u1", "t1", &goalID, &krID, 0, evalAt)
	require.NoError(t, f.evaluator.Handle(ctx, completed))

	f.store.AssertCalled(t, "SetCurrentValue", ctx, krID, 1.0)
}

func TestEvaluator_HabitIncrementsOncePerClosedDay(t *testing.T) {
	ctx := context.Background()
	f := newEvalFixture()

	krID := "kr1"
	f.ledger.On("HasProcessed", ctx, mock.Anything, "GOAL").Return(false, nil).Once()
	f.goals.On("ListByUser", ctx, "u1").Return([]goal.Goal{activeGoal("g1", "u1")}, nil)
	f.keyResults.On("ListByGoal", ctx, "g1").Return([]goal.KeyResult{{
		ID: krID, GoalID: "g1", Type: goal.TypeHabit,
		TargetValue: 30, CurrentValue: 2, Weight: 1,
	}}, nil)
	// Two qualifying completed entries; the habit still adds exactly 1.0.
	f.plans.On("GetByDay", ctx, "u1", "2026-03-01").Return(&plan.DailyPlan{
		ID: "p1", UserID: "u1", Day: "2026-03-01", Closed: true,
		Entries: []plan.Entry{
			{TaskID: "t1", Status: plan.EntryCompleted},
			{TaskID: "t2", Status: plan.EntryCompleted},
		},
	}, nil)
	f.tasks.On("Get", ctx, "u1", "t1").Return(&task.Task{ID: "t1", UserID: "u1", KeyResultID: &krID}, nil)
	f.tasks.On("Get", ctx, "u1", "t2").Return(&task.Task{ID: "t2", UserID: "u1", KeyResultID: &krID}, nil)
	f.store.On("SetCurrentValue", ctx, krID, 3.0).Return(nil)
	f.ledger.On("MarkProcessed", ctx, mock.Anything, "GOAL", evalAt).Return(nil)

	closed := fact.NewDayClosed("u1", "2026-03-01", evalAt)
	require.NoError(t, f.evaluator.Handle(ctx, closed))

	f.store.AssertNumberOfCalls(t, "SetCurrentValue", 1)
	f.store.AssertCalled(t, "SetCurrentValue", ctx, krID, 3.0)

	// Redelivery: receipt exists, nothing runs again.
	f.ledger.On("HasProcessed", ctx, closed.ID, "GOAL").Return(true, nil).Once()
	require.NoError(t, f.evaluator.Handle(ctx, closed))
	f.store.AssertNumberOfCalls(t, "SetCurrentValue", 1)
}

func TestEvaluator_SkipsAlreadyProcessedFact(t *testing.T) {
	ctx := context.Background()
	f := newEvalFixture()

	f.ledger.On("HasProcessed", ctx, mock.Anything, "GOAL").Return(true, nil)

	closed := fact.NewDayClosed("u1", "2026-03-01", evalAt)
	require.NoError(t, f.evaluator.Handle(ctx, closed))

	f.goals.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluator_IgnoresUnrelatedKinds(t *testing.T) {
	ctx := context.Background()
	f := newEvalFixture()

	created := fact.NewTaskCreated("u1", "t1", evalAt)
	require.NoError(t, f.evaluator.Handle(ctx, created))

	f.ledger.AssertNotCalled(t, "HasProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluator_OwnershipViolationFailsLoudly(t *testing.T) {
	ctx := context.Background()
	f := newEvalFixture()

	krID := "kr1"
	goalID := "g1"
	f.ledger.On("HasProcessed", ctx, mock.Anything, "GOAL").Return(false, nil)
	// Integrity bug: listing u1's goals returned a goal owned by u2.
	f.goals.On("ListByUser", ctx, "u1").Return([]goal.Goal{activeGoal("g1", "u2")}, nil)

	completed := fact.NewTaskCompleted("u1", "t1", &goalID, &krID, 5, evalAt)
	err := f.evaluator.Handle(ctx, completed)
	require.ErrorIs(t, err, goal.ErrOwnershipViolation)

	f.store.AssertNotCalled(t, "SetCurrentValue", mock.Anything, mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluator_UnchangedValueIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	f := newEvalFixture()

	otherKR := "other"
	goalID := "g1"
	f.ledger.On("HasProcessed", ctx, mock.Anything, "GOAL").Return(false, nil)
	f.goals.On("ListByUser", ctx, "u1").Return([]goal.Goal{activeGoal("g1", "u1")}, nil)
	f.keyResults.On("ListByGoal", ctx, "g1").Return([]goal.KeyResult{{
		ID: "kr1", GoalID: "g1", Type: goal.TypeAccumulative,
		TargetValue: 100, CurrentValue: 10, Weight: 1,
	}}, nil)
	f.ledger.On("MarkProcessed", ctx, mock.Anything, "GOAL", evalAt).Return(nil)

	// Completed task references a different key result.
	completed := fact.NewTaskCompleted("u1", "t1", &goalID, &otherKR, 5, evalAt)
	require.NoError(t, f.evaluator.Handle(ctx, completed))

	f.store.AssertNotCalled(t, "SetCurrentValue", mock.Anything, mock.Anything, mock.Anything)
}
