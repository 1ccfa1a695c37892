package streak_test

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
	"github.com/avollmer/daykeep/internal/domain/plan"
	"github.com/avollmer/daykeep/internal/domain/streak"
	"github.com/avollmer/daykeep/internal/repository"
	"github.com/avollmer/daykeep/internal/repository/mocks"
)

var streakAt = time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)

type streakFixture struct {
	streaks  *mocks.StreakRepository
	plans    *mocks.PlanRepository
	ledger   *mocks.Ledger
	consumer *streak.Consumer
}

func newStreakFixture() *streakFixture {
	f := &streakFixture{
		streaks: &mocks.StreakRepository{},
		plans:   &mocks.PlanRepository{},
		ledger:  &mocks.Ledger{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.consumer = streak.NewConsumer(f.streaks, f.plans, f.ledger, clock.Fixed{Instant: streakAt}, logger)
	return f
}

func closedPlan(entries ...plan.Entry) *plan.DailyPlan {
	return &plan.DailyPlan{
		ID: "p1", UserID: "u1", Day: "2026-03-01",
		Entries: entries, Closed: true,
	}
}

func TestStreakConsumer_FullDayExtendsStreak(t *testing.T) {
	ctx := context.Background()
	f := newStreakFixture()

	f.ledger.On("HasProcessed", ctx, mock.Anything, "STREAK").Return(false, nil)
	f.plans.On("GetByDay", ctx, "u1", "2026-03-01").Return(closedPlan(
		plan.Entry{TaskID: "t1", Status: plan.EntryCompleted},
		plan.Entry{TaskID: "t2", Status: plan.EntryCompleted},
	), nil)
	f.streaks.On("Get", ctx, "u1").Return(&streak.State{UserID: "u1", CurrentStreak: 4}, nil)
	f.streaks.On("Save", ctx, mock.MatchedBy(func(s *streak.State) bool {
		return s.CurrentStreak == 5
	})).Return(nil)
	f.ledger.On("MarkProcessed", ctx, mock.Anything, "STREAK", streakAt).Return(nil)

	require.NoError(t, f.consumer.Handle(ctx, fact.NewDayClosed("u1", "2026-03-01", streakAt)))
	f.streaks.AssertExpectations(t)
}

func TestStreakConsumer_PartialDayResets(t *testing.T) {
	ctx := context.Background()
	f := newStreakFixture()

	f.ledger.On("HasProcessed", ctx, mock.Anything, "STREAK").Return(false, nil)
	f.plans.On("GetByDay", ctx, "u1", "2026-03-01").Return(closedPlan(
		plan.Entry{TaskID: "t1", Status: plan.EntryCompleted},
		plan.Entry{TaskID: "t2", Status: plan.EntryCompleted},
		plan.Entry{TaskID: "t3", Status: plan.EntryMissed},
	), nil)
	f.streaks.On("Get", ctx, "u1").Return(&streak.State{UserID: "u1", CurrentStreak: 12}, nil)
	f.streaks.On("Save", ctx, mock.MatchedBy(func(s *streak.State) bool {
		return s.CurrentStreak == 0
	})).Return(nil)
	f.ledger.On("MarkProcessed", ctx, mock.Anything, "STREAK", streakAt).Return(nil)

	require.NoError(t, f.consumer.Handle(ctx, fact.NewDayClosed("u1", "2026-03-01", streakAt)))
	f.streaks.AssertExpectations(t)
}

func TestStreakConsumer_EmptyDayResets(t *testing.T) {
	ctx := context.Background()
	f := newStreakFixture()

	f.ledger.On("HasProcessed", ctx, mock.Anything, "STREAK").Return(false, nil)
	f.plans.On("GetByDay", ctx, "u1", "2026-03-01").Return(closedPlan(), nil)
	f.streaks.On("Get", ctx, "u1").Return(&streak.State{UserID: "u1", CurrentStreak: 3}, nil)
	f.streaks.On("Save", ctx, mock.MatchedBy(func(s *streak.State) bool {
		return s.CurrentStreak == 0
	})).Return(nil)
	f.ledger.On("MarkProcessed", ctx, mock.Anything, "STREAK", streakAt).Return(nil)

	require.NoError(t, f.consumer.Handle(ctx, fact.NewDayClosed("u1", "2026-03-01", streakAt)))
	f.streaks.AssertExpectations(t)
}

func TestStreakConsumer_FirstDayStartsFromZero(t *testing.T) {
	ctx := context.Background()
	f := newStreakFixture()

	f.ledger.On("HasProcessed", ctx, mock.Anything, "STREAK").Return(false, nil)
	f.plans.On("GetByDay", ctx, "u1", "2026-03-01").Return(closedPlan(
		plan.Entry{TaskID: "t1", Status: plan.EntryCompleted},
	), nil)
	f.streaks.On("Get", ctx, "u1").Return(nil, repository.ErrNotFound)
	f.streaks.On("Save", ctx, mock.MatchedBy(func(s *streak.State) bool {
		return s.UserID == "u1" && s.CurrentStreak == 1
	})).Return(nil)
	f.ledger.On("MarkProcessed", ctx, mock.Anything, "STREAK", streakAt).Return(nil)

	require.NoError(t, f.consumer.Handle(ctx, fact.NewDayClosed("u1", "2026-03-01", streakAt)))
	f.streaks.AssertExpectations(t)
}

func TestStreakConsumer_RedeliveryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newStreakFixture()

	f.ledger.On("HasProcessed", ctx, mock.Anything, "STREAK").Return(true, nil)

	require.NoError(t, f.consumer.Handle(ctx, fact.NewDayClosed("u1", "2026-03-01", streakAt)))
	f.streaks.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestStreakConsumer_IgnoresOtherKinds(t *testing.T) {
	ctx := context.Background()
	f := newStreakFixture()

	require.NoError(t, f.consumer.Handle(ctx, fact.NewTaskCreated("u1", "t1", streakAt)))
	f.ledger.AssertNotCalled(t, "HasProcessed", mock.Anything, mock.Anything, mock.Anything)
}
