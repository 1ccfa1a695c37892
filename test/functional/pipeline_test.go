package functional_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avollmer/daykeep/internal/clock"
	"github.com/avollmer/daykeep/internal/domain/audit"
	"github.com/avollmer/daykeep/internal/domain/fact"
	"github.com/avollmer/daykeep/internal/domain/goal"
	"github.com/avollmer/daykeep/internal/domain/plan"
	"github.com/avollmer/daykeep/internal/domain/snapshot"
	"github.com/avollmer/daykeep/internal/domain/streak"
	"github.com/avollmer/daykeep/internal/domain/task"
	"github.com/avollmer/daykeep/internal/domain/user"
	"github.com/avollmer/daykeep/internal/sqlite"
)

// harness wires real repositories, the bus, and all four consumers over an
// in-memory database, the same way the binary does.
type harness struct {
	clk clock.Fixed

	bus       *fact.Bus
	facts     *sqlite.FactRepository
	streaks   *sqlite.StreakRepository
	snapshots *sqlite.SnapshotRepository
	auditLog  *sqlite.AuditRepository

	users *user.Service
	goals *goal.Service
	tasks *task.Service
	plans *plan.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.Fixed{Instant: time.Date(2026, 3, 11, 21, 0, 0, 0, time.UTC)}

	users := sqlite.NewUserRepository(db)
	tasks := sqlite.NewTaskRepository(db)
	goals := sqlite.NewGoalRepository(db)
	keyResults := sqlite.NewKeyResultRepository(db)
	plans := sqlite.NewPlanRepository(db)
	weeks := sqlite.NewWeekPlanRepository(db)
	streaks := sqlite.NewStreakRepository(db)
	snapshots := sqlite.NewSnapshotRepository(db)
	auditLog := sqlite.NewAuditRepository(db)
	facts := sqlite.NewFactRepository(db)
	receipts := sqlite.NewReceiptRepository(db)

	ledger := fact.NewLedger(receipts)
	bus := fact.NewBus(logger)
	bus.Register(goal.NewEvaluator(goals, keyResults, keyResults, plans, tasks, ledger, clk, logger))
	bus.Register(streak.NewConsumer(streaks, plans, ledger, clk, logger))
	bus.Register(snapshot.NewConsumer(snapshots, goals, keyResults, ledger, clk, logger))
	bus.Register(audit.NewConsumer(auditLog, ledger, clk, logger))

	return &harness{
		clk:       clk,
		bus:       bus,
		facts:     facts,
		streaks:   streaks,
		snapshots: snapshots,
		auditLog:  auditLog,
		users:     user.NewService(users, facts, bus, clk, logger),
		goals:     goal.NewService(goals, keyResults, clk, logger),
		tasks:     task.NewService(tasks, facts, bus, clk, logger),
		plans:     plan.NewService(plans, weeks, tasks, facts, bus, clk, logger),
	}
}

func strPtr(s string) *string { return &s }

// TestPipeline_DayInLife drives a full day through the real stack: one goal
// with all three key result types, a planned day of linked tasks, completion,
// close, and the derived state every consumer is responsible for.
func TestPipeline_DayInLife(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.users.Create(ctx, "Avery")
	require.NoError(t, err)

	g, err := h.goals.Create(ctx, u.ID, goal.CreateRequest{
		Title:     "Ship the reading habit",
		Horizon:   goal.HorizonMonth,
		StartDate: "2026-03-01",
		EndDate:   "2026-03-21",
	})
	require.NoError(t, err)

	krAcc, err := h.goals.AddKeyResult(ctx, u.ID, goal.AddKeyResultRequest{
		GoalID: g.ID, Title: "Pages read", Type: goal.TypeAccumulative, TargetValue: 100,
	})
	require.NoError(t, err)
	krHabit, err := h.goals.AddKeyResult(ctx, u.ID, goal.AddKeyResultRequest{
		GoalID: g.ID, Title: "Reading days", Type: goal.TypeHabit, TargetValue: 10,
	})
	require.NoError(t, err)
	krMil, err := h.goals.AddKeyResult(ctx, u.ID, goal.AddKeyResultRequest{
		GoalID: g.ID, Title: "Pick next book", Type: goal.TypeMilestone, TargetValue: 1,
	})
	require.NoError(t, err)

	taskAcc, err := h.tasks.Create(ctx, u.ID, task.CreateRequest{
		Title: "Read chapter 3", GoalID: &g.ID, KeyResultID: strPtr(krAcc.ID), Contribution: 40,
	})
	require.NoError(t, err)
	taskHabit, err := h.tasks.Create(ctx, u.ID, task.CreateRequest{
		Title: "Evening reading", GoalID: &g.ID, KeyResultID: strPtr(krHabit.ID),
	})
	require.NoError(t, err)
	taskMil, err := h.tasks.Create(ctx, u.ID, task.CreateRequest{
		Title: "Choose next book", GoalID: &g.ID, KeyResultID: strPtr(krMil.ID),
	})
	require.NoError(t, err)

	const day = "2026-03-11"
	_, err = h.plans.PlanDay(ctx, u.ID, day)
	require.NoError(t, err)
	for _, id := range []string{taskAcc.ID, taskHabit.ID, taskMil.ID} {
		_, err = h.plans.AddEntry(ctx, u.ID, day, id)
		require.NoError(t, err)
	}

	_, err = h.plans.UpsertWeekPlan(ctx, u.ID, "2026-03-09", "finish part one", []string{taskAcc.ID})
	require.NoError(t, err)

	for _, id := range []string{taskAcc.ID, taskHabit.ID, taskMil.ID} {
		_, err = h.tasks.Complete(ctx, u.ID, id)
		require.NoError(t, err)
		_, err = h.plans.MarkCompleted(ctx, u.ID, day, id)
		require.NoError(t, err)
	}

	closed, err := h.plans.CloseDay(ctx, u.ID, day)
	require.NoError(t, err)
	require.True(t, closed.Closed)

	// Evaluation: contribution added, habit +1 for the closed day, milestone
	// snapped to target.
	krs, err := h.goals.KeyResults(ctx, u.ID, g.ID)
	require.NoError(t, err)
	byID := map[string]goal.KeyResult{}
	for _, kr := range krs {
		byID[kr.ID] = kr
	}
	assert.Equal(t, 40.0, byID[krAcc.ID].CurrentValue)
	assert.Equal(t, 1.0, byID[krHabit.ID].CurrentValue)
	assert.Equal(t, 1.0, byID[krMil.ID].CurrentValue)

	// A fully completed day extends the streak.
	state, err := h.streaks.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentStreak)

	// One snapshot, taken after evaluation: mean progress (0.4+0.1+1.0)/3
	// against the elapsed share of the 20-day range.
	snaps, err := h.snapshots.ListByGoal(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, day, snaps[0].Date)
	assert.InDelta(t, 0.5, snaps[0].Actual, 1e-9)
	assert.InDelta(t, 0.5, snaps[0].Expected, 1e-9)

	// Every published fact left an audit entry.
	entries, err := h.auditLog.ListByUser(ctx, u.ID, 0)
	require.NoError(t, err)
	counts := map[audit.RecordType]int{}
	for _, e := range entries {
		counts[e.Type]++
	}
	assert.Equal(t, 1, counts[audit.RecordUserCreated])
	assert.Equal(t, 3, counts[audit.RecordTaskCreated])
	assert.Equal(t, 3, counts[audit.RecordTaskCompleted])
	assert.Equal(t, 1, counts[audit.RecordWeekPlanUpdated])
	assert.Equal(t, 1, counts[audit.RecordDayClosed])

	// Closed means closed: no entry path may mutate the day again.
	_, err = h.plans.AddEntry(ctx, u.ID, day, taskAcc.ID)
	assert.ErrorIs(t, err, plan.ErrPlanClosed)
	_, err = h.plans.MarkMissed(ctx, u.ID, day, taskAcc.ID)
	assert.ErrorIs(t, err, plan.ErrPlanClosed)
	_, err = h.plans.CloseDay(ctx, u.ID, day)
	assert.ErrorIs(t, err, plan.ErrPlanClosed)
}

// TestPipeline_ReplayIsIdempotent republishes every stored fact and asserts
// no derived state moves: receipts make redelivery a no-op.
func TestPipeline_ReplayIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.users.Create(ctx, "Avery")
	require.NoError(t, err)
	g, err := h.goals.Create(ctx, u.ID, goal.CreateRequest{
		Title:     "Write more",
		Horizon:   goal.HorizonMonth,
		StartDate: "2026-03-01",
		EndDate:   "2026-03-31",
	})
	require.NoError(t, err)
	kr, err := h.goals.AddKeyResult(ctx, u.ID, goal.AddKeyResultRequest{
		GoalID: g.ID, Title: "Words", Type: goal.TypeAccumulative, TargetValue: 5000,
	})
	require.NoError(t, err)
	tk, err := h.tasks.Create(ctx, u.ID, task.CreateRequest{
		Title: "Draft intro", GoalID: &g.ID, KeyResultID: strPtr(kr.ID), Contribution: 800,
	})
	require.NoError(t, err)

	const day = "2026-03-11"
	_, err = h.plans.PlanDay(ctx, u.ID, day)
	require.NoError(t, err)
	_, err = h.plans.AddEntry(ctx, u.ID, day, tk.ID)
	require.NoError(t, err)
	_, err = h.tasks.Complete(ctx, u.ID, tk.ID)
	require.NoError(t, err)
	_, err = h.plans.MarkCompleted(ctx, u.ID, day, tk.ID)
	require.NoError(t, err)
	_, err = h.plans.CloseDay(ctx, u.ID, day)
	require.NoError(t, err)

	snapsBefore, err := h.snapshots.ListByGoal(ctx, g.ID)
	require.NoError(t, err)
	entriesBefore, err := h.auditLog.ListByUser(ctx, u.ID, 0)
	require.NoError(t, err)

	stored, err := h.facts.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored)
	for _, f := range stored {
		require.NoError(t, h.bus.Publish(ctx, f))
	}

	krs, err := h.goals.KeyResults(ctx, u.ID, g.ID)
	require.NoError(t, err)
	require.Len(t, krs, 1)
	assert.Equal(t, 800.0, krs[0].CurrentValue)

	state, err := h.streaks.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentStreak)

	snapsAfter, err := h.snapshots.ListByGoal(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, snapsAfter, len(snapsBefore))

	entriesAfter, err := h.auditLog.ListByUser(ctx, u.ID, 0)
	require.NoError(t, err)
	assert.Len(t, entriesAfter, len(entriesBefore))
}

// TestPipeline_TrendAcrossDays closes several days and reads the trend the
// way the status view does.
func TestPipeline_TrendAcrossDays(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.users.Create(ctx, "Avery")
	require.NoError(t, err)
	g, err := h.goals.Create(ctx, u.ID, goal.CreateRequest{
		Title:     "Run a 10k",
		Horizon:   goal.HorizonQuarter,
		StartDate: "2026-03-01",
		EndDate:   "2026-05-30",
	})
	require.NoError(t, err)
	kr, err := h.goals.AddKeyResult(ctx, u.ID, goal.AddKeyResultRequest{
		GoalID: g.ID, Title: "Kilometers", Type: goal.TypeAccumulative, TargetValue: 100,
	})
	require.NoError(t, err)
	tk, err := h.tasks.Create(ctx, u.ID, task.CreateRequest{
		Title: "Morning run", GoalID: &g.ID, KeyResultID: strPtr(kr.ID), Contribution: 5,
	})
	require.NoError(t, err)

	// Day one: nothing done. Day two: the run happens before close, so the
	// second snapshot sits above the first.
	_, err = h.plans.PlanDay(ctx, u.ID, "2026-03-10")
	require.NoError(t, err)
	_, err = h.plans.CloseDay(ctx, u.ID, "2026-03-10")
	require.NoError(t, err)

	_, err = h.plans.PlanDay(ctx, u.ID, "2026-03-11")
	require.NoError(t, err)
	_, err = h.plans.AddEntry(ctx, u.ID, "2026-03-11", tk.ID)
	require.NoError(t, err)
	_, err = h.tasks.Complete(ctx, u.ID, tk.ID)
	require.NoError(t, err)
	_, err = h.plans.MarkCompleted(ctx, u.ID, "2026-03-11", tk.ID)
	require.NoError(t, err)
	_, err = h.plans.CloseDay(ctx, u.ID, "2026-03-11")
	require.NoError(t, err)

	trend, err := snapshot.TrendForGoal(ctx, h.snapshots, g.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, snapshot.TrendUp, trend)

	// The empty first day broke the streak, the full second day restarted it.
	state, err := h.streaks.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentStreak)
}
