package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avollmer/daykeep/internal/domain/plan"
	"github.com/avollmer/daykeep/internal/repository"
)

// PlanRepository implements plan.Repository for SQLite. Save rewrites the
// plan's entries and closed flag in one transaction so the closed-plan
// guard's decision and the entry state land together.
type PlanRepository struct {
	db *DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(db *DB) *PlanRepository {
	return &PlanRepository{db: db}
}

var _ plan.Repository = (*PlanRepository)(nil)

// Create inserts a new open daily plan with its entries.
func (r *PlanRepository) Create(ctx context.Context, p *plan.DailyPlan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO daily_plans (id, user_id, day, closed, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Day, p.Closed, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create daily plan: %w", err)
	}

	if err := insertEntries(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByDay retrieves the daily plan for a user and day, entries included.
func (r *PlanRepository) GetByDay(ctx context.Context, userID, day string) (*plan.DailyPlan, error) {
	var p plan.DailyPlan
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, day, closed, created_at
		FROM daily_plans WHERE user_id = ? AND day = ?`,
		userID, day,
	).Scan(&p.ID, &p.UserID, &p.Day, &p.Closed, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily plan: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, status FROM plan_entries
		WHERE plan_id = ? ORDER BY position`,
		p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e plan.Entry
		if err := rows.Scan(&e.TaskID, &e.Status); err != nil {
			return nil, fmt.Errorf("failed to scan plan entry: %w", err)
		}
		p.Entries = append(p.Entries, e)
	}
	return &p, rows.Err()
}

// Save persists the plan's closed flag and entry list.
func (r *PlanRepository) Save(ctx context.Context, p *plan.DailyPlan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE daily_plans SET closed = ? WHERE id = ?`,
		p.Closed, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save daily plan: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save daily plan: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_entries WHERE plan_id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to clear plan entries: %w", err)
	}
	if err := insertEntries(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func insertEntries(ctx context.Context, tx *sql.Tx, p *plan.DailyPlan) error {
	for i, e := range p.Entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO plan_entries (plan_id, task_id, status, position)
			VALUES (?, ?, ?, ?)`,
			p.ID, e.TaskID, e.Status, i,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return repository.ErrForeignKeyViolation
			}
			return fmt.Errorf("failed to insert plan entry: %w", err)
		}
	}
	return nil
}

// WeekPlanRepository implements plan.WeekRepository for SQLite.
type WeekPlanRepository struct {
	db *DB
}

// NewWeekPlanRepository creates a new WeekPlanRepository.
func NewWeekPlanRepository(db *DB) *WeekPlanRepository {
	return &WeekPlanRepository{db: db}
}

var _ plan.WeekRepository = (*WeekPlanRepository)(nil)

// Upsert replaces the weekly plan for the plan's (user, week start).
func (r *WeekPlanRepository) Upsert(ctx context.Context, p *plan.WeeklyPlan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Reuse the existing row's ID so task links stay attached to one plan ID
	// per (user, week).
	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM week_plans WHERE user_id = ? AND week_start = ?`,
		p.UserID, p.WeekStart,
	).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to look up weekly plan: %w", err)
	default:
		p.ID = existingID
		if _, err := tx.ExecContext(ctx, `DELETE FROM week_plan_tasks WHERE plan_id = ?`, p.ID); err != nil {
			return fmt.Errorf("failed to clear weekly plan tasks: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO week_plans (id, user_id, week_start, focus, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, week_start) DO UPDATE SET
			focus = excluded.focus,
			updated_at = excluded.updated_at`,
		p.ID, p.UserID, p.WeekStart, p.Focus, p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to save weekly plan: %w", err)
	}

	for i, taskID := range p.TaskIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO week_plan_tasks (plan_id, task_id, position)
			VALUES (?, ?, ?)`,
			p.ID, taskID, i,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return repository.ErrForeignKeyViolation
			}
			return fmt.Errorf("failed to insert weekly plan task: %w", err)
		}
	}
	return tx.Commit()
}

// GetByWeek retrieves the weekly plan starting at weekStart.
func (r *WeekPlanRepository) GetByWeek(ctx context.Context, userID, weekStart string) (*plan.WeeklyPlan, error) {
	var p plan.WeeklyPlan
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, week_start, focus, updated_at
		FROM week_plans WHERE user_id = ? AND week_start = ?`,
		userID, weekStart,
	).Scan(&p.ID, &p.UserID, &p.WeekStart, &p.Focus, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly plan: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id FROM week_plan_tasks
		WHERE plan_id = ? ORDER BY position`,
		p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly plan tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID string
		if err := rows.Scan(&taskID); err != nil {
			return nil, fmt.Errorf("failed to scan weekly plan task: %w", err)
		}
		p.TaskIDs = append(p.TaskIDs, taskID)
	}
	return &p, rows.Err()
}
