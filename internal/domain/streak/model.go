// Package streak derives day-level behavioral continuity from day closures.
package streak

import "time"

// State is a user's current streak. It is derived interpretation, mutated
// only by the consumer in this package, never by direct user action.
type State struct {
	UserID        string    `json:"user_id"`
	CurrentStreak int       `json:"current_streak"`
	UpdatedAt     time.Time `json:"updated_at"`
}
