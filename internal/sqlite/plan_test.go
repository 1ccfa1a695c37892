package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avollmer/daykeep/internal/domain/plan"
	"github.com/avollmer/daykeep/internal/domain/task"
	"github.com/avollmer/daykeep/internal/repository"
)

func seedTask(t *testing.T, db *DB, userID, id string) {
	t.Helper()
	tasks := NewTaskRepository(db)
	err := tasks.Create(context.Background(), &task.Task{
		ID:        id,
		UserID:    userID,
		Title:     "Write a page",
		Status:    task.StatusTodo,
		CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestPlanRepository_OnePlanPerUserDay(t *testing.T) {
	db := NewTestDB(t)
	plans := NewPlanRepository(db)
	ctx := context.Background()

	seedUser(t, db, "u1")

	p := &plan.DailyPlan{
		ID:        "p1",
		UserID:    "u1",
		Day:       "2026-03-01",
		CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, plans.Create(ctx, p))

	dup := &plan.DailyPlan{
		ID:        "p2",
		UserID:    "u1",
		Day:       "2026-03-01",
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	require.ErrorIs(t, plans.Create(ctx, dup), repository.ErrDuplicate)
}

func TestPlanRepository_SaveRoundTrip(t *testing.T) {
	db := NewTestDB(t)
	plans := NewPlanRepository(db)
	ctx := context.Background()

	seedUser(t, db, "u1")
	seedTask(t, db, "u1", "t1")
	seedTask(t, db, "u1", "t2")

	p := &plan.DailyPlan{
		ID:        "p1",
		UserID:    "u1",
		Day:       "2026-03-01",
		CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, plans.Create(ctx, p))

	p.Entries = []plan.Entry{
		{TaskID: "t1", Status: plan.EntryPending},
		{TaskID: "t2", Status: plan.EntryPending},
	}
	require.NoError(t, plans.Save(ctx, p))

	p.Entries[0].Status = plan.EntryCompleted
	p.Closed = true
	require.NoError(t, plans.Save(ctx, p))

	got, err := plans.GetByDay(ctx, "u1", "2026-03-01")
	require.NoError(t, err)
	require.True(t, got.Closed)
	require.Len(t, got.Entries, 2)
	require.Equal(t, "t1", got.Entries[0].TaskID)
	require.Equal(t, plan.EntryCompleted, got.Entries[0].Status)
	require.Equal(t, plan.EntryPending, got.Entries[1].Status)

	_, err = plans.GetByDay(ctx, "u1", "2026-03-02")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWeekPlanRepository_Upsert(t *testing.T) {
	db := NewTestDB(t)
	weeks := NewWeekPlanRepository(db)
	ctx := context.Background()

	seedUser(t, db, "u1")
	seedTask(t, db, "u1", "t1")
	seedTask(t, db, "u1", "t2")

	w := &plan.WeeklyPlan{
		ID:        "w1",
		UserID:    "u1",
		WeekStart: "2026-03-02",
		Focus:     "Deep work",
		TaskIDs:   []string{"t1"},
		UpdatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, weeks.Upsert(ctx, w))

	// Replanning the same week replaces focus and tasks.
	w2 := &plan.WeeklyPlan{
		ID:        "w2",
		UserID:    "u1",
		WeekStart: "2026-03-02",
		Focus:     "Ship it",
		TaskIDs:   []string{"t2", "t1"},
		UpdatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, weeks.Upsert(ctx, w2))

	got, err := weeks.GetByWeek(ctx, "u1", "2026-03-02")
	require.NoError(t, err)
	require.Equal(t, "w1", got.ID, "week keeps its original plan ID")
	require.Equal(t, "Ship it", got.Focus)
	require.Equal(t, []string{"t2", "t1"}, got.TaskIDs)
}
