package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avollmer/daykeep/internal/domain/goal"
	"github.com/avollmer/daykeep/internal/repository"
)

// GoalRepository implements goal.Repository for SQLite.
type GoalRepository struct {
	db *DB
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(db *DB) *GoalRepository {
	return &GoalRepository{db: db}
}

var _ goal.Repository = (*GoalRepository)(nil)

// Create inserts a new goal.
func (r *GoalRepository) Create(ctx context.Context, g *goal.Goal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, title, horizon, start_date, end_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Title, g.Horizon, g.StartDate, g.EndDate, g.Status, g.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// Get retrieves a goal owned by the user.
func (r *GoalRepository) Get(ctx context.Context, userID, id string) (*goal.Goal, error) {
	var g goal.Goal
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, horizon, start_date, end_date, status, created_at
		FROM goals WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&g.ID, &g.UserID, &g.Title, &g.Horizon, &g.StartDate, &g.EndDate, &g.Status, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return &g, nil
}

// UpdateStatus changes a goal's status.
func (r *GoalRepository) UpdateStatus(ctx context.Context, userID, id string, status goal.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET status = ? WHERE id = ? AND user_id = ?`,
		status, id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update goal status: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByUser returns a user's goals ordered by creation time.
func (r *GoalRepository) ListByUser(ctx context.Context, userID string) ([]goal.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, horizon, start_date, end_date, status, created_at
		FROM goals WHERE user_id = ? ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []goal.Goal
	for rows.Next() {
		var g goal.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Horizon, &g.StartDate, &g.EndDate, &g.Status, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// KeyResultRepository implements goal.KeyResultRepository and, through
// SetCurrentValue, goal.EvaluationStore. The wiring hands the evaluation
// store only to the evaluator: nothing else holds a write path to
// current_value.
type KeyResultRepository struct {
	db *DB
}

// NewKeyResultRepository creates a new KeyResultRepository.
func NewKeyResultRepository(db *DB) *KeyResultRepository {
	return &KeyResultRepository{db: db}
}

var (
	_ goal.KeyResultRepository = (*KeyResultRepository)(nil)
	_ goal.EvaluationStore     = (*KeyResultRepository)(nil)
)

// Create inserts a new key result.
func (r *KeyResultRepository) Create(ctx context.Context, kr *goal.KeyResult) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO key_results (
			id, goal_id, title, type, start_value, target_value,
			current_value, weight, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		kr.ID, kr.GoalID, kr.Title, kr.Type, kr.StartValue, kr.TargetValue,
		kr.CurrentValue, kr.Weight, kr.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create key result: %w", err)
	}
	return nil
}

// Get retrieves a key result by ID.
func (r *KeyResultRepository) Get(ctx context.Context, id string) (*goal.KeyResult, error) {
	var kr goal.KeyResult
	err := r.db.QueryRowContext(ctx, `
		SELECT id, goal_id, title, type, start_value, target_value,
		       current_value, weight, created_at
		FROM key_results WHERE id = ?`,
		id,
	).Scan(
		&kr.ID, &kr.GoalID, &kr.Title, &kr.Type, &kr.StartValue, &kr.TargetValue,
		&kr.CurrentValue, &kr.Weight, &kr.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key result: %w", err)
	}
	return &kr, nil
}

// ListByGoal returns a goal's key results ordered by creation time.
func (r *KeyResultRepository) ListByGoal(ctx context.Context, goalID string) ([]goal.KeyResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, goal_id, title, type, start_value, target_value,
		       current_value, weight, created_at
		FROM key_results WHERE goal_id = ? ORDER BY created_at`,
		goalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list key results: %w", err)
	}
	defer rows.Close()

	var krs []goal.KeyResult
	for rows.Next() {
		var kr goal.KeyResult
		if err := rows.Scan(
			&kr.ID, &kr.GoalID, &kr.Title, &kr.Type, &kr.StartValue, &kr.TargetValue,
			&kr.CurrentValue, &kr.Weight, &kr.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan key result: %w", err)
		}
		krs = append(krs, kr)
	}
	return krs, rows.Err()
}

// SetCurrentValue writes a key result's derived current value.
func (r *KeyResultRepository) SetCurrentValue(ctx context.Context, id string, value float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE key_results SET current_value = ? WHERE id = ?`,
		value, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set current value: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set current value: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
