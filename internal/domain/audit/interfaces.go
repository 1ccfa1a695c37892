package audit

import (
	"context"
	"time"
)

// Repository provides append-only persistence for audit entries. List
// returns entries ordered most-recent-first.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
}

// Ledger answers and records idempotency receipts.
type Ledger interface {
	HasProcessed(ctx context.Context, factID, consumerName string) (bool, error)
	MarkProcessed(ctx context.Context, factID, consumerName string, at time.Time) error
}
