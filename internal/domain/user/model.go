package user

import "time"

// User owns goals, tasks, plans, and all state derived from them.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
