package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema. Idempotent: every statement is
// CREATE ... IF NOT EXISTS.
func (db *DB) RunMigrations() error {
	migration := `
-- Users
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

-- Goals
CREATE TABLE IF NOT EXISTS goals (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    horizon TEXT NOT NULL CHECK(horizon IN ('MONTH', 'QUARTER', 'YEAR')),
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('ACTIVE', 'COMPLETED', 'ARCHIVED')),
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_user_goals ON goals(user_id);

-- Key results. current_value is derived state: only the evaluation store
-- method writes it after creation.
CREATE TABLE IF NOT EXISTS key_results (
    id TEXT PRIMARY KEY,
    goal_id TEXT NOT NULL,
    title TEXT NOT NULL,
    type TEXT NOT NULL CHECK(type IN ('ACCUMULATIVE', 'HABIT', 'MILESTONE')),
    start_value REAL NOT NULL,
    target_value REAL NOT NULL,
    current_value REAL NOT NULL,
    weight REAL NOT NULL,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (goal_id) REFERENCES goals(id)
);
CREATE INDEX IF NOT EXISTS idx_goal_key_results ON key_results(goal_id);

-- Tasks
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    goal_id TEXT,
    key_result_id TEXT,
    contribution REAL NOT NULL DEFAULT 0,
    status TEXT NOT NULL CHECK(status IN ('TODO', 'DONE')),
    created_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users(id),
    FOREIGN KEY (goal_id) REFERENCES goals(id),
    FOREIGN KEY (key_result_id) REFERENCES key_results(id)
);
CREATE INDEX IF NOT EXISTS idx_user_tasks ON tasks(user_id);

-- Daily plans (execution truth)
CREATE TABLE IF NOT EXISTS daily_plans (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    day TEXT NOT NULL,
    closed INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    UNIQUE(user_id, day),
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS plan_entries (
    plan_id TEXT NOT NULL,
    task_id TEXT NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('PENDING', 'COMPLETED', 'MISSED')),
    position INTEGER NOT NULL,
    PRIMARY KEY (plan_id, task_id),
    FOREIGN KEY (plan_id) REFERENCES daily_plans(id),
    FOREIGN KEY (task_id) REFERENCES tasks(id)
);

-- Weekly plans (intent, freely mutable)
CREATE TABLE IF NOT EXISTS week_plans (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    week_start TEXT NOT NULL,
    focus TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    UNIQUE(user_id, week_start),
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS week_plan_tasks (
    plan_id TEXT NOT NULL,
    task_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (plan_id, task_id),
    FOREIGN KEY (plan_id) REFERENCES week_plans(id),
    FOREIGN KEY (task_id) REFERENCES tasks(id)
);

-- Streak state, one row per user
CREATE TABLE IF NOT EXISTS streaks (
    user_id TEXT PRIMARY KEY,
    current_streak INTEGER NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id)
);

-- Goal snapshots, append-only
CREATE TABLE IF NOT EXISTS goal_snapshots (
    id TEXT PRIMARY KEY,
    goal_id TEXT NOT NULL,
    date TEXT NOT NULL,
    actual REAL NOT NULL,
    expected REAL NOT NULL,
    taken_at TIMESTAMP NOT NULL,
    FOREIGN KEY (goal_id) REFERENCES goals(id)
);
CREATE INDEX IF NOT EXISTS idx_goal_snapshots ON goal_snapshots(goal_id, taken_at);

-- Audit log, append-only
CREATE TABLE IF NOT EXISTS audit_log (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    fact_id TEXT NOT NULL,
    type TEXT NOT NULL,
    summary TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL,
    recorded_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_audit ON audit_log(user_id);

-- Fact stream, append-only
CREATE TABLE IF NOT EXISTS facts (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL,
    payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_facts ON facts(user_id);

-- Processing receipts: the idempotency ledger. The primary key makes the
-- insert an atomic insert-if-absent.
CREATE TABLE IF NOT EXISTS receipts (
    fact_id TEXT NOT NULL,
    consumer TEXT NOT NULL,
    processed_at TIMESTAMP NOT NULL,
    PRIMARY KEY (fact_id, consumer)
);
`

	if _, err := db.Exec(migration); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
