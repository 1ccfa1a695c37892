package sqlite

import (
	"context"
	"fmt"

	"github.com/avollmer/daykeep/internal/domain/snapshot"
	"github.com/avollmer/daykeep/internal/repository"
)

// SnapshotRepository implements snapshot.Repository for SQLite. The table is
// append-only: there is no update or delete path here.
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

var _ snapshot.Repository = (*SnapshotRepository)(nil)

// Append inserts a new snapshot row.
func (r *SnapshotRepository) Append(ctx context.Context, s *snapshot.GoalSnapshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goal_snapshots (id, goal_id, date, actual, expected, taken_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.GoalID, s.Date, s.Actual, s.Expected, s.TakenAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	return nil
}

// ListByGoal returns a goal's snapshots ordered most-recent-first, the
// ordering the trend computation expects.
func (r *SnapshotRepository) ListByGoal(ctx context.Context, goalID string) ([]snapshot.GoalSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, goal_id, date, actual, expected, taken_at
		FROM goal_snapshots WHERE goal_id = ?
		ORDER BY taken_at DESC, date DESC`,
		goalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []snapshot.GoalSnapshot
	for rows.Next() {
		var s snapshot.GoalSnapshot
		if err := rows.Scan(&s.ID, &s.GoalID, &s.Date, &s.Actual, &s.Expected, &s.TakenAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
