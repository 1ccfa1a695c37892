package streak

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/avollmer/daykeep/internal/clock"
	"github.com/avollmer/daykeep/internal/domain/fact"
	"github.com/avollmer/daykeep/internal/metrics"
	"github.com/avollmer/daykeep/internal/repository"
)

// ConsumerName keys the streak consumer's idempotency receipts.
const ConsumerName = "STREAK"

// Consumer reacts to DayClosed by extending or resetting the user's streak.
// A day counts only when every planned entry completed; a day with zero
// planned entries resets, same as a partial day.
type Consumer struct {
	streaks Repository
	plans   PlanReader
	ledger  Ledger
	clk     clock.Clock
	logger  *slog.Logger
}

// NewConsumer creates the streak consumer.
func NewConsumer(streaks Repository, plans PlanReader, ledger Ledger, clk clock.Clock, logger *slog.Logger) *Consumer {
	return &Consumer{
		streaks: streaks,
		plans:   plans,
		ledger:  ledger,
		clk:     clk,
		logger:  logger,
	}
}

// Name returns the consumer name used for ledger receipts.
func (c *Consumer) Name() string {
	return ConsumerName
}

// Handle recomputes the streak from the closed day's plan, persists it, then
// marks the fact processed.
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

	p, err := c.plans.GetByDay(ctx, f.UserID, f.Payload.Day)
	if err != nil {
		return fmt.Errorf("loading daily plan: %w", err)
	}

	state, err := c.streaks.Get(ctx, f.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("loading streak: %w", err)
		}
		state = &State{UserID: f.UserID}
	}

	total, completed := p.Totals()
	if total > 0 && completed == total {
		state.CurrentStreak++
	} else {
		state.CurrentStreak = 0
	}
	state.UpdatedAt = c.clk.Now()

	if err := c.streaks.Save(ctx, state); err != nil {
		return fmt.Errorf("saving streak: %w", err)
	}

	c.logger.Info("streak updated",
		"user_id", f.UserID,
		"day", f.Payload.Day,
		"streak", state.CurrentStreak,
	)

	return c.ledger.MarkProcessed(ctx, f.ID, ConsumerName, c.clk.Now())
}
