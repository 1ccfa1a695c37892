// Package audit appends every published fact to an immutable historical
// log, whether or not the other consumers understand it.
package audit

import "time"

// RecordType classifies an audit entry. Types come from a closed mapping of
// fact kinds; facts with no mapping are logged and skipped, never retried.
type RecordType string

const (
	RecordTaskCreated     RecordType = "TASK_CREATED"
	RecordTaskCompleted   RecordType = "TASK_COMPLETED"
	RecordDayClosed       RecordType = "DAY_CLOSED"
	RecordWeekPlanUpdated RecordType = "WEEK_PLAN_UPDATED"
	RecordUserCreated     RecordType = "USER_CREATED"
)

// Entry is one row in the audit log. Entries are never mutated or deleted.
type Entry struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	FactID     string     `json:"fact_id"`
	Type       RecordType `json:"type"`
	Summary    string     `json:"summary"`
	OccurredAt time.Time  `json:"occurred_at"`
	RecordedAt time.Time  `json:"recorded_at"`
}
