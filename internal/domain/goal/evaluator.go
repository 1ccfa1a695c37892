package goal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avollmer/daykeep/internal/clock"
	"github.com/avollmer/daykeep/internal/domain/fact"
	"github.com/avollmer/daykeep/internal/metrics"
)

// ConsumerName keys the goal evaluator's idempotency receipts.
const ConsumerName = "GOAL"

// Evaluator reacts to facts by re-evaluating the key results of every goal
// owned by the fact's user, dispatching to the strategy matching each key
// result's type. It registers on the bus as the GOAL consumer.
type Evaluator struct {
	goals      Repository
	keyResults KeyResultRepository
	store      EvaluationStore
	ledger     Ledger
	strategies map[KeyResultType]Strategy
	clk        clock.Clock
	logger     *slog.Logger
}

// NewEvaluator creates the goal evaluation consumer.
func NewEvaluator(
	goals Repository,
	keyResults KeyResultRepository,
	store EvaluationStore,
	plans PlanReader,
	tasks TaskReader,
	ledger Ledger,
	clk clock.Clock,
	logger *slog.Logger,
) *Evaluator {
	return &Evaluator{
		goals:      goals,
		keyResults: keyResults,
		store:      store,
		ledger:     ledger,
		strategies: map[KeyResultType]Strategy{
			TypeAccumulative: accumulative{},
			TypeHabit:        habit{plans: plans, tasks: tasks},
			TypeMilestone:    milestone{},
		},
		clk:    clk,
		logger: logger,
	}
}

// Name returns the consumer name used for ledger receipts.
func (e *Evaluator) Name() string {
	return ConsumerName
}

// Handle evaluates all of the user's key results against the fact, persists
// the changed values, then marks the fact processed.
func (e *Evaluator) Handle(ctx context.Context, f fact.Fact) error {
	if f.Kind != fact.KindTaskCompleted && f.Kind != fact.KindDayClosed {
		return nil
	}

	done, err := e.ledger.HasProcessed(ctx, f.ID, ConsumerName)
	if err != nil {
		return err
	}
	if done {
		metrics.DuplicateSkip(ConsumerName)
		return nil
	}

	goals, err := e.goals.ListByUser(ctx, f.UserID)
	if err != nil {
		return fmt.Errorf("listing goals: %w", err)
	}

	for _, g := range goals {
		if err := e.evaluateGoal(ctx, g, f); err != nil {
			return err
		}
	}

	return e.ledger.MarkProcessed(ctx, f.ID, ConsumerName, e.clk.Now())
}

func (e *Evaluator) evaluateGoal(ctx context.Context, g Goal, f fact.Fact) error {
	if g.UserID != f.UserID {
		e.logger.Error("ownership violation during evaluation",
			"fact_id", f.ID,
			"fact_user_id", f.UserID,
			"goal_id", g.ID,
			"goal_user_id", g.UserID,
		)
		return ErrOwnershipViolation
	}

	krs, err := e.keyResults.ListByGoal(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("listing key results: %w", err)
	}

	for _, kr := range krs {
		if kr.GoalID != g.ID {
			e.logger.Error("ownership violation during evaluation",
				"fact_id", f.ID,
				"key_result_id", kr.ID,
				"goal_id", g.ID,
			)
			return ErrOwnershipViolation
		}

		strat, err := e.strategyFor(kr.Type)
		if err != nil {
			return err
		}

		newValue, applies, err := strat.Evaluate(ctx, kr, f)
		if err != nil {
			return fmt.Errorf("evaluating key result %s: %w", kr.ID, err)
		}
		if !applies || newValue == kr.CurrentValue {
			continue
		}

		if err := e.store.SetCurrentValue(ctx, kr.ID, newValue); err != nil {
			return fmt.Errorf("persisting key result %s: %w", kr.ID, err)
		}

		e.logger.Info("key result evaluated",
			"key_result_id", kr.ID,
			"type", kr.Type,
			"value", newValue,
		)
	}

	return nil
}

func (e *Evaluator) strategyFor(t KeyResultType) (Strategy, error) {
	s, ok := e.strategies[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeyResultType, t)
	}
	return s, nil
}
