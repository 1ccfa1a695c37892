package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avollmer/daykeep/internal/clock"
	"github.com/avollmer/daykeep/internal/domain/fact"
	"github.com/avollmer/daykeep/internal/metrics"
)

// ConsumerName keys the audit consumer's idempotency receipts.
const ConsumerName = "AUDIT"

// recordTypes is the closed mapping from fact kinds to audit record types.
var recordTypes = map[fact.Kind]RecordType{
	fact.KindTaskCreated:       RecordTaskCreated,
	fact.KindTaskCompleted:     RecordTaskCompleted,
	fact.KindDayClosed:         RecordDayClosed,
	fact.KindWeeklyPlanUpdated: RecordWeekPlanUpdated,
	fact.KindUserCreated:       RecordUserCreated,
}

// Consumer appends an audit entry for every fact it can map. An unmapped
// kind is logged at warn level, skipped, and still marked processed so it
// is never redelivered forever.
type Consumer struct {
	entries Repository
	ledger  Ledger
	clk     clock.Clock
	logger  *slog.Logger
}

// NewConsumer creates the audit consumer.
func NewConsumer(entries Repository, ledger Ledger, clk clock.Clock, logger *slog.Logger) *Consumer {
	return &Consumer{
		entries: entries,
		ledger:  ledger,
		clk:     clk,
		logger:  logger,
	}
}

// Name returns the consumer name used for ledger receipts.
func (c *Consumer) Name() string {
	return ConsumerName
}

// Handle appends the fact's audit entry, then marks the fact processed.
func (c *Consumer) Handle(ctx context.Context, f fact.Fact) error {
	done, err := c.ledger.HasProcessed(ctx, f.ID, ConsumerName)
	if err != nil {
		return err
	}
	if done {
		metrics.DuplicateSkip(ConsumerName)
		return nil
	}

	if recordType, ok := recordTypes[f.Kind]; ok {
		entry := &Entry{
			ID:         uuid.NewString(),
			UserID:     f.UserID,
			FactID:     f.ID,
			Type:       recordType,
			Summary:    summarize(f),
			OccurredAt: f.OccurredAt,
			RecordedAt: c.clk.Now(),
		}
		if err := c.entries.Append(ctx, entry); err != nil {
			return fmt.Errorf("appending audit entry: %w", err)
		}
	} else {
		c.logger.Warn("unmapped fact kind, skipping audit record",
			"fact_id", f.ID,
			"kind", f.Kind,
		)
	}

	return c.ledger.MarkProcessed(ctx, f.ID, ConsumerName, c.clk.Now())
}

func summarize(f fact.Fact) string {
	switch f.Kind {
	case fact.KindTaskCreated:
		return fmt.Sprintf("task %s created", f.Payload.TaskID)
	case fact.KindTaskCompleted:
		return fmt.Sprintf("task %s completed", f.Payload.TaskID)
	case fact.KindDayClosed:
		return fmt.Sprintf("day %s closed", f.Payload.Day)
	case fact.KindWeeklyPlanUpdated:
		return fmt.Sprintf("week of %s replanned", f.Payload.Day)
	case fact.KindUserCreated:
		return "user created"
	default:
		return string(f.Kind)
	}
}
