package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avollmer/daykeep/internal/domain/streak"
	"github.com/avollmer/daykeep/internal/repository"
)

// StreakRepository implements streak.Repository for SQLite.
type StreakRepository struct {
	db *DB
}

// NewStreakRepository creates a new StreakRepository.
func NewStreakRepository(db *DB) *StreakRepository {
	return &StreakRepository{db: db}
}

var _ streak.Repository = (*StreakRepository)(nil)

// Get retrieves a user's streak state.
func (r *StreakRepository) Get(ctx context.Context, userID string) (*streak.State, error) {
	var s streak.State
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, current_streak, updated_at FROM streaks WHERE user_id = ?`,
		userID,
	).Scan(&s.UserID, &s.CurrentStreak, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	return &s, nil
}

// Save upserts a user's streak state.
func (r *StreakRepository) Save(ctx context.Context, s *streak.State) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO streaks (user_id, current_streak, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			updated_at = excluded.updated_at`,
		s.UserID, s.CurrentStreak, s.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to save streak: %w", err)
	}
	return nil
}
