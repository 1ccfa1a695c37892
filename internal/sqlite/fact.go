package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avollmer/daykeep/internal/domain/fact"
	"github.com/avollmer/daykeep/internal/repository"
)

// FactRepository implements the fact stream for SQLite. Facts are appended
// by the publishing services before the bus fans them out; the stored rows
// are what redelivery replays.
type FactRepository struct {
	db *DB
}

// NewFactRepository creates a new FactRepository.
func NewFactRepository(db *DB) *FactRepository {
	return &FactRepository{db: db}
}

// Append inserts a fact. Appending the same fact ID twice is a duplicate.
func (r *FactRepository) Append(ctx context.Context, f *fact.Fact) error {
	payload, err := json.Marshal(f.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode fact payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO facts (id, user_id, kind, occurred_at, payload)
		VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.Kind, f.OccurredAt, string(payload),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to append fact: %w", err)
	}
	return nil
}

// ListByUser returns a user's facts in occurrence order, for replay.
func (r *FactRepository) ListByUser(ctx context.Context, userID string) ([]fact.Fact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, kind, occurred_at, payload
		FROM facts WHERE user_id = ? ORDER BY occurred_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts: %w", err)
	}
	defer rows.Close()

	var facts []fact.Fact
	for rows.Next() {
		var f fact.Fact
		var payload string
		if err := rows.Scan(&f.ID, &f.UserID, &f.Kind, &f.OccurredAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &f.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode fact payload: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// ReceiptRepository implements fact.ReceiptRepository for SQLite. The
// primary key on (fact_id, consumer) makes Insert an atomic
// insert-if-absent: losing the race surfaces as repository.ErrDuplicate,
// which the ledger treats as already processed.
type ReceiptRepository struct {
	db *DB
}

// NewReceiptRepository creates a new ReceiptRepository.
func NewReceiptRepository(db *DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

var _ fact.ReceiptRepository = (*ReceiptRepository)(nil)

// Insert records a receipt, failing with repository.ErrDuplicate if the
// (fact, consumer) pair already holds one.
func (r *ReceiptRepository) Insert(ctx context.Context, receipt *fact.Receipt) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO receipts (fact_id, consumer, processed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(fact_id, consumer) DO NOTHING`,
		receipt.FactID, receipt.ConsumerName, receipt.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	if affected == 0 {
		return repository.ErrDuplicate
	}
	return nil
}

// Exists reports whether a receipt exists for the (fact, consumer) pair.
func (r *ReceiptRepository) Exists(ctx context.Context, factID, consumerName string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM receipts WHERE fact_id = ? AND consumer = ?`,
		factID, consumerName,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check receipt: %w", err)
	}
	return count > 0, nil
}
