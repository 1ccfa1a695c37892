package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avollmer/daykeep/internal/domain/task"
	"github.com/avollmer/daykeep/internal/repository"
)

// TaskRepository implements task.Repository for SQLite.
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

var _ task.Repository = (*TaskRepository)(nil)

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, user_id, title, goal_id, key_result_id,
			contribution, status, created_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.GoalID, t.KeyResultID,
		t.Contribution, t.Status, t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Get retrieves a task owned by the user.
func (r *TaskRepository) Get(ctx context.Context, userID, id string) (*task.Task, error) {
	var t task.Task
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, goal_id, key_result_id,
		       contribution, status, created_at, completed_at
		FROM tasks WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&t.ID, &t.UserID, &t.Title, &t.GoalID, &t.KeyResultID,
		&t.Contribution, &t.Status, &t.CreatedAt, &t.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// Update persists a task's mutable fields.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, status = ?, completed_at = ?
		WHERE id = ? AND user_id = ?`,
		t.Title, t.Status, t.CompletedAt, t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns a user's tasks, newest first, honoring the filters.
func (r *TaskRepository) List(ctx context.Context, userID string, opts task.ListOptions) ([]task.Task, error) {
	query := `
		SELECT id, user_id, title, goal_id, key_result_id,
		       contribution, status, created_at, completed_at
		FROM tasks WHERE user_id = ?`
	args := []any{userID}

	var filters []string
	if opts.Status != "" {
		filters = append(filters, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.GoalID != "" {
		filters = append(filters, "goal_id = ?")
		args = append(args, opts.GoalID)
	}
	if len(filters) > 0 {
		query += " AND " + strings.Join(filters, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.GoalID, &t.KeyResultID,
			&t.Contribution, &t.Status, &t.CreatedAt, &t.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
