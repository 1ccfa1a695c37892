package task

import "time"

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusTodo Status = "TODO"
	StatusDone Status = "DONE"
)

// Task is a unit of intended work. Tasks may be linked to a goal and one of
// its key results; completing a linked task is what drives goal evaluation.
type Task struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	GoalID       *string    `json:"goal_id,omitempty"`
	KeyResultID  *string    `json:"key_result_id,omitempty"`
	Contribution float64    `json:"contribution"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// ListOptions provides filtering options for listing tasks.
type ListOptions struct {
	Status Status
	GoalID string
	Limit  int
}
