package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avollmer/daykeep/internal/clock"
	"github.com/avollmer/daykeep/internal/domain/fact"
	"github.com/avollmer/daykeep/internal/domain/goal"
	"github.com/avollmer/daykeep/internal/metrics"
)

// ConsumerName keys the snapshot consumer's idempotency receipts.
const ConsumerName = "SNAPSHOT"

// Consumer reacts to DayClosed by appending one progress snapshot per
// active goal the user owns.
type Consumer struct {
	snapshots  Repository
	goals      GoalReader
	keyResults KeyResultReader
	ledger     Ledger
	clk        clock.Clock
	logger     *slog.Logger
}

// NewConsumer creates the snapshot consumer.
func NewConsumer(snapshots Repository, goals GoalReader, keyResults KeyResultReader, ledger Ledger, clk clock.Clock, logger *slog.Logger) *Consumer {
	return &Consumer{
		snapshots:  snapshots,
		goals:      goals,
		keyResults: keyResults,
		ledger:     ledger,
		clk:        clk,
		logger:     logger,
	}
}

// Name returns the consumer name used for ledger receipts.
func (c *Consumer) Name() string {
	return ConsumerName
}

// Handle appends a snapshot for every active goal, then marks the fact
// processed.
func (c *Consumer) Handle(ctx context.Context, f fact.Fact) error {
	if f.Kind != fact.KindDayClosed {
		return nil
	}

	done, err := c.ledger.HasProcessed(ctx, f.ID, ConsumerName)
	if err != nil {
		return err
	}
	if done {
		metrics.DuplicateSkip(ConsumerName)
		return nil
	}

	goals, err := c.goals.ListByUser(ctx, f.UserID)
	if err != nil {
		return fmt.Errorf("listing goals: %w", err)
	}

	for _, g := range goals {
		if g.Status != goal.StatusActive {
			continue
		}
		if err := c.snapshotGoal(ctx, g, f.Payload.Day); err != nil {
			return err
		}
	}

	return c.ledger.MarkProcessed(ctx, f.ID, ConsumerName, c.clk.Now())
}

func (c *Consumer) snapshotGoal(ctx context.Context, g goal.Goal, day string) error {
	krs, err := c.keyResults.ListByGoal(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("listing key results: %w", err)
	}

	expected, err := ExpectedProgress(day, g.StartDate, g.EndDate)
	if err != nil {
		return fmt.Errorf("computing expected progress for goal %s: %w", g.ID, err)
	}

	snap := &GoalSnapshot{
		ID:       uuid.NewString(),
		GoalID:   g.ID,
		Date:     day,
		Actual:   goal.MeanProgress(krs),
		Expected: expected,
		TakenAt:  c.clk.Now(),
	}

	if err := c.snapshots.Append(ctx, snap); err != nil {
		return fmt.Errorf("appending snapshot for goal %s: %w", g.ID, err)
	}

	c.logger.Info("snapshot taken",
		"goal_id", g.ID,
		"date", day,
		"actual", snap.Actual,
		"expected", snap.Expected,
	)
	return nil
}

// ExpectedProgress is where a goal should be on the closed day: the elapsed
// share of the goal's date range, clamped to [0, 1].
func ExpectedProgress(day, startDate, endDate string) (float64, error) {
	d, err := clock.ParseDay(day)
	if err != nil {
		return 0, err
	}
	start, err := clock.ParseDay(startDate)
	if err != nil {
		return 0, err
	}
	end, err := clock.ParseDay(endDate)
	if err != nil {
		return 0, err
	}

	if !d.After(start) {
		return 0, nil
	}
	if !d.Before(end) {
		return 1, nil
	}
	return d.Sub(start).Hours() / end.Sub(start).Hours(), nil
}

// TrendForGoal computes the trend for a goal's snapshot history on read.
func TrendForGoal(ctx context.Context, snapshots Repository, goalID string, window int) (Trend, error) {
	history, err := snapshots.ListByGoal(ctx, goalID)
	if err != nil {
		return TrendFlat, fmt.Errorf("listing snapshots: %w", err)
	}
	return ComputeTrend(history, window), nil
}
