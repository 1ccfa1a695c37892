package sqlite

import (
	"context"
	"fmt"

	"github.com/avollmer/daykeep/internal/domain/audit"
	"github.com/avollmer/daykeep/internal/repository"
)

// AuditRepository implements audit.Repository for SQLite. Append-only.
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

var _ audit.Repository = (*AuditRepository)(nil)

// Append inserts a new audit entry.
func (r *AuditRepository) Append(ctx context.Context, e *audit.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, user_id, fact_id, type, summary, occurred_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.FactID, e.Type, e.Summary, e.OccurredAt, e.RecordedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListByUser returns a user's audit entries, most recent first.
func (r *AuditRepository) ListByUser(ctx context.Context, userID string, limit int) ([]audit.Entry, error) {
	query := `
		SELECT id, user_id, fact_id, type, summary, occurred_at, recorded_at
		FROM audit_log WHERE user_id = ?
		ORDER BY recorded_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.FactID, &e.Type, &e.Summary, &e.OccurredAt, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
