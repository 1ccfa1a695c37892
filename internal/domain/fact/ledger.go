package fact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avollmer/daykeep/internal/repository"
)

// Receipt records that a named consumer finished acting on a fact. Receipts
// are unique per (fact, consumer) pair and are never mutated.
type Receipt struct {
	FactID       string    `json:"fact_id"`
	ConsumerName string    `json:"consumer_name"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// ReceiptRepository persists processing receipts. Insert must be atomic
// insert-if-absent: inserting an existing (fact, consumer) pair returns
// repository.ErrDuplicate rather than overwriting.
type ReceiptRepository interface {
	Insert(ctx context.Context, r *Receipt) error
	Exists(ctx context.Context, factID, consumerName string) (bool, error)
}

// Ledger is the idempotency ledger consulted by every consumer. The absence
// of a receipt is the only permission to act; its presence is a permanent
// skip signal.
type Ledger struct {
	receipts ReceiptRepository
}

// NewLedger creates a ledger over a receipt store.
func NewLedger(receipts ReceiptRepository) *Ledger {
	return &Ledger{receipts: receipts}
}

// HasProcessed reports whether the consumer already processed the fact.
func (l *Ledger) HasProcessed(ctx context.Context, factID, consumerName string) (bool, error) {
	ok, err := l.receipts.Exists(ctx, factID, consumerName)
	if err != nil {
		return false, fmt.Errorf("checking receipt: %w", err)
	}
	return ok, nil
}

// MarkProcessed records a receipt for the (fact, consumer) pair. A duplicate
// mark is benign: races between redeliveries are expected, so losing the
// insert race is treated as success.
func (l *Ledger) MarkProcessed(ctx context.Context, factID, consumerName string, at time.Time) error {
	err := l.receipts.Insert(ctx, &Receipt{
		FactID:       factID,
		ConsumerName: consumerName,
		ProcessedAt:  at,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("recording receipt: %w", err)
	}
	return nil
}
