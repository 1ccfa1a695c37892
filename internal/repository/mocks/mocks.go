// Package mocks provides testify mocks for the store interfaces the domain
// packages consume. Each mock satisfies the narrow interfaces of every
// package that reads the same entity.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/avollmer/daykeep/internal/domain/audit"
	"github.com/avollmer/daykeep/internal/domain/fact"
	"github.com/avollmer/daykeep/internal/domain/goal"
	"github.com/avollmer/daykeep/internal/domain/plan"
	"github.com/avollmer/daykeep/internal/domain/snapshot"
	"github.com/avollmer/daykeep/internal/domain/streak"
	"github.com/avollmer/daykeep/internal/domain/task"
	"github.com/avollmer/daykeep/internal/domain/user"
)

// UserRepository is a mock for user.Repository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) List(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]user.User); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// TaskRepository is a mock for task.Repository and the task readers of the
// goal and plan packages.
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) Get(ctx context.Context, userID, id string) (*task.Task, error) {
	args := m.Called(ctx, userID, id)
	if t, ok := args.Get(0).(*task.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) List(ctx context.Context, userID string, opts task.ListOptions) ([]task.Task, error) {
	args := m.Called(ctx, userID, opts)
	if list, ok := args.Get(0).([]task.Task); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// GoalRepository is a mock for goal.Repository and snapshot.GoalReader.
type GoalRepository struct {
	mock.Mock
}

func (m *GoalRepository) Create(ctx context.Context, g *goal.Goal) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *GoalRepository) Get(ctx context.Context, userID, id string) (*goal.Goal, error) {
	args := m.Called(ctx, userID, id)
	if g, ok := args.Get(0).(*goal.Goal); ok {
		return g, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GoalRepository) UpdateStatus(ctx context.Context, userID, id string, status goal.Status) error {
	args := m.Called(ctx, userID, id, status)
	return args.Error(0)
}

func (m *GoalRepository) ListByUser(ctx context.Context, userID string) ([]goal.Goal, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]goal.Goal); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// KeyResultRepository is a mock for goal.KeyResultRepository and
// snapshot.KeyResultReader.
type KeyResultRepository struct {
	mock.Mock
}

func (m *KeyResultRepository) Create(ctx context.Context, kr *goal.KeyResult) error {
	args := m.Called(ctx, kr)
	return args.Error(0)
}

func (m *KeyResultRepository) Get(ctx context.Context, id string) (*goal.KeyResult, error) {
	args := m.Called(ctx, id)
	if kr, ok := args.Get(0).(*goal.KeyResult); ok {
		return kr, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *KeyResultRepository) ListByGoal(ctx context.Context, goalID string) ([]goal.KeyResult, error) {
	args := m.Called(ctx, goalID)
	if list, ok := args.Get(0).([]goal.KeyResult); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// EvaluationStore is a mock for goal.EvaluationStore, the evaluator-only
// write path for derived key result state.
type EvaluationStore struct {
	mock.Mock
}

func (m *EvaluationStore) SetCurrentValue(ctx context.Context, id string, value float64) error {
	args := m.Called(ctx, id, value)
	return args.Error(0)
}

// PlanRepository is a mock for plan.Repository and the plan readers of the
// goal and streak packages.
type PlanRepository struct {
	mock.Mock
}

func (m *PlanRepository) Create(ctx context.Context, p *plan.DailyPlan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PlanRepository) GetByDay(ctx context.Context, userID, day string) (*plan.DailyPlan, error) {
	args := m.Called(ctx, userID, day)
	if p, ok := args.Get(0).(*plan.DailyPlan); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PlanRepository) Save(ctx context.Context, p *plan.DailyPlan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// WeekPlanRepository is a mock for plan.WeekRepository.
type WeekPlanRepository struct {
	mock.Mock
}

func (m *WeekPlanRepository) Upsert(ctx context.Context, p *plan.WeeklyPlan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *WeekPlanRepository) GetByWeek(ctx context.Context, userID, weekStart string) (*plan.WeeklyPlan, error) {
	args := m.Called(ctx, userID, weekStart)
	if p, ok := args.Get(0).(*plan.WeeklyPlan); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// StreakRepository is a mock for streak.Repository.
type StreakRepository struct {
	mock.Mock
}

func (m *StreakRepository) Get(ctx context.Context, userID string) (*streak.State, error) {
	args := m.Called(ctx, userID)
	if s, ok := args.Get(0).(*streak.State); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StreakRepository) Save(ctx context.Context, s *streak.State) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// SnapshotRepository is a mock for snapshot.Repository.
type SnapshotRepository struct {
	mock.Mock
}

func (m *SnapshotRepository) Append(ctx context.Context, s *snapshot.GoalSnapshot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *SnapshotRepository) ListByGoal(ctx context.Context, goalID string) ([]snapshot.GoalSnapshot, error) {
	args := m.Called(ctx, goalID)
	if list, ok := args.Get(0).([]snapshot.GoalSnapshot); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditRepository is a mock for audit.Repository.
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Append(ctx context.Context, e *audit.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *AuditRepository) ListByUser(ctx context.Context, userID string, limit int) ([]audit.Entry, error) {
	args := m.Called(ctx, userID, limit)
	if list, ok := args.Get(0).([]audit.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// FactRepository is a mock for the fact stream appenders.
type FactRepository struct {
	mock.Mock
}

func (m *FactRepository) Append(ctx context.Context, f *fact.Fact) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *FactRepository) ListByUser(ctx context.Context, userID string) ([]fact.Fact, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]fact.Fact); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ReceiptRepository is a mock for fact.ReceiptRepository.
type ReceiptRepository struct {
	mock.Mock
}

func (m *ReceiptRepository) Insert(ctx context.Context, r *fact.Receipt) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *ReceiptRepository) Exists(ctx context.Context, factID, consumerName string) (bool, error) {
	args := m.Called(ctx, factID, consumerName)
	return args.Bool(0), args.Error(1)
}

// Ledger is a mock for the consumers' idempotency ledger interface.
type Ledger struct {
	mock.Mock
}

func (m *Ledger) HasProcessed(ctx context.Context, factID, consumerName string) (bool, error) {
	args := m.Called(ctx, factID, consumerName)
	return args.Bool(0), args.Error(1)
}

func (m *Ledger) MarkProcessed(ctx context.Context, factID, consumerName string, at time.Time) error {
	args := m.Called(ctx, factID, consumerName, at)
	return args.Error(0)
}

// Publisher is a mock for the services' fact publisher interface.
type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, f fact.Fact) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}
