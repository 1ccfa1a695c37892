package plan

import "time"

// EntryStatus is the execution outcome of a planned task within a day.
type EntryStatus string

const (
	EntryPending   EntryStatus = "PENDING"
	EntryCompleted EntryStatus = "COMPLETED"
	EntryMissed    EntryStatus = "MISSED"
)

// Entry links a planned task to its day-level outcome.
type Entry struct {
	TaskID string      `json:"task_id"`
	Status EntryStatus `json:"status"`
}

// DailyPlan is the execution truth for one user day. Entries mutate freely
// while the plan is open; once Closed flips to true the plan is terminal and
// every further mutation is rejected. One plan exists per (user, day).
type DailyPlan struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Day       string    `json:"day"`
	Entries   []Entry   `json:"entries"`
	Closed    bool      `json:"closed"`
	CreatedAt time.Time `json:"created_at"`
}

// EnsureOpen is the execution-truth guard. It is checked before every
// mutation entry point; a closed plan rejects all of them.
func (p *DailyPlan) EnsureOpen() error {
	if p.Closed {
		return ErrPlanClosed
	}
	return nil
}

// Entry returns the entry for a task, or nil if the task is not planned.
func (p *DailyPlan) Entry(taskID string) *Entry {
	for i := range p.Entries {
		if p.Entries[i].TaskID == taskID {
			return &p.Entries[i]
		}
	}
	return nil
}

// Totals returns the entry count and the completed count.
func (p *DailyPlan) Totals() (total, completed int) {
	total = len(p.Entries)
	for _, e := range p.Entries {
		if e.Status == EntryCompleted {
			completed++
		}
	}
	return total, completed
}

// WeeklyPlan captures intent for a week: a focus line and the tasks meant to
// happen. Weekly plans are freely mutable and never become execution truth.
type WeeklyPlan struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	WeekStart string    `json:"week_start"`
	Focus     string    `json:"focus"`
	TaskIDs   []string  `json:"task_ids"`
	UpdatedAt time.Time `json:"updated_at"`
}
