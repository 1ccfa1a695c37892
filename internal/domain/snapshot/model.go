// Package snapshot appends per-goal progress snapshots on day closure and
// derives trend direction from the snapshot history.
package snapshot

import "time"

// GoalSnapshot is a permanent, dated record of a goal's actual vs expected
// progress. Snapshots are append-only: each day closure produces a new row,
// and no row is ever updated or deleted, even where re-derivation would be
// possible.
type GoalSnapshot struct {
	ID       string    `json:"id"`
	GoalID   string    `json:"goal_id"`
	Date     string    `json:"date"`
	Actual   float64   `json:"actual"`
	Expected float64   `json:"expected"`
	TakenAt  time.Time `json:"taken_at"`
}

// Trend is the directional signal derived from snapshot history. It is
// computed on read and never stored.
type Trend string

const (
	TrendUp   Trend = "UP"
	TrendFlat Trend = "FLAT"
	TrendDown Trend = "DOWN"
)
