package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/avollmer/daykeep/internal/clock"
	"github.com/avollmer/daykeep/internal/domain/fact"
	"github.com/avollmer/daykeep/internal/repository"
)

// Service handles daily and weekly plan management. Daily plans are
// execution truth: every mutation runs through the closed-plan guard, and
// closing a day is the one-way transition that publishes DayClosed. Weekly
// plans are intent and stay freely mutable.
type Service struct {
	plans  Repository
	weeks  WeekRepository
	tasks  TaskReader
	facts  FactRepository
	bus    Publisher
	clk    clock.Clock
	logger *slog.Logger
}

// NewService creates a new plan service.
func NewService(plans Repository, weeks WeekRepository, tasks TaskReader, facts FactRepository, bus Publisher, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		plans:  plans,
		weeks:  weeks,
		tasks:  tasks,
		facts:  facts,
		bus:    bus,
		clk:    clk,
		logger: logger,
	}
}

// PlanDay creates the open daily plan for a user and day. One plan exists
// per (user, day).
func (s *Service) PlanDay(ctx context.Context, userID, day string) (*DailyPlan, error) {
	if _, err := clock.ParseDay(day); err != nil {
		return nil, ErrInvalidInput
	}

	p := &DailyPlan{
		ID:        uuid.NewString(),
		UserID:    userID,
		Day:       day,
		Closed:    false,
		CreatedAt: s.clk.Now(),
	}

	if err := s.plans.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicatePlan
		}
		return nil, fmt.Errorf("creating daily plan: %w", err)
	}

	return p, nil
}

// Get returns the daily plan for a user and day.
func (s *Service) Get(ctx context.Context, userID, day string) (*DailyPlan, error) {
	p, err := s.plans.GetByDay(ctx, userID, day)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("getting daily plan: %w", err)
	}
	return p, nil
}

// AddEntry plans a task for the day with status PENDING.
func (s *Service) AddEntry(ctx context.Context, userID, day, taskID string) (*DailyPlan, error) {
	p, err := s.Get(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if err := p.EnsureOpen(); err != nil {
		return nil, err
	}

	if _, err := s.tasks.Get(ctx, userID, taskID); err != nil {
		return nil, fmt.Errorf("resolving planned task: %w", err)
	}
	if p.Entry(taskID) != nil {
		return nil, ErrDuplicateEntry
	}

	p.Entries = append(p.Entries, Entry{TaskID: taskID, Status: EntryPending})

	if err := s.plans.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("saving daily plan: %w", err)
	}
	return p, nil
}

// MarkCompleted records that a planned task was done that day.
func (s *Service) MarkCompleted(ctx context.Context, userID, day, taskID string) (*DailyPlan, error) {
	return s.markEntry(ctx, userID, day, taskID, EntryCompleted)
}

// MarkMissed records that a planned task did not happen that day.
func (s *Service) MarkMissed(ctx context.Context, userID, day, taskID string) (*DailyPlan, error) {
	return s.markEntry(ctx, userID, day, taskID, EntryMissed)
}

func (s *Service) markEntry(ctx context.Context, userID, day, taskID string, to EntryStatus) (*DailyPlan, error) {
	p, err := s.Get(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if err := p.EnsureOpen(); err != nil {
		return nil, err
	}

	entry := p.Entry(taskID)
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	if err := ValidateEntryTransition(entry.Status, to); err != nil {
		return nil, err
	}
	entry.Status = to

	if err := s.plans.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("saving daily plan: %w", err)
	}
	return p, nil
}

// CloseDay flips the plan to closed and publishes DayClosed. The transition
// is one-way: there is no reopen, and every later mutation is rejected by
// the guard.
func (s *Service) CloseDay(ctx context.Context, userID, day string) (*DailyPlan, error) {
	p, err := s.Get(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if err := p.EnsureOpen(); err != nil {
		return nil, err
	}

	p.Closed = true
	if err := s.plans.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("closing daily plan: %w", err)
	}

	s.publish(ctx, fact.NewDayClosed(userID, day, s.clk.Now()))

	return p, nil
}

// UpsertWeekPlan records or replaces the intent for an ISO week. Weekly
// plans never become execution truth, so there is no closed state here.
func (s *Service) UpsertWeekPlan(ctx context.Context, userID, weekStart, focus string, taskIDs []string) (*WeeklyPlan, error) {
	if _, err := clock.ParseDay(weekStart); err != nil {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(focus) == "" && len(taskIDs) == 0 {
		return nil, ErrInvalidInput
	}

	for _, id := range taskIDs {
		if _, err := s.tasks.Get(ctx, userID, id); err != nil {
			return nil, fmt.Errorf("resolving intended task: %w", err)
		}
	}

	w := &WeeklyPlan{
		ID:        uuid.NewString(),
		UserID:    userID,
		WeekStart: weekStart,
		Focus:     focus,
		TaskIDs:   taskIDs,
		UpdatedAt: s.clk.Now(),
	}

	if err := s.weeks.Upsert(ctx, w); err != nil {
		return nil, fmt.Errorf("saving weekly plan: %w", err)
	}

	s.publish(ctx, fact.NewWeeklyPlanUpdated(userID, weekStart, s.clk.Now()))

	return w, nil
}

// GetWeekPlan returns the weekly plan starting at weekStart.
func (s *Service) GetWeekPlan(ctx context.Context, userID, weekStart string) (*WeeklyPlan, error) {
	w, err := s.weeks.GetByWeek(ctx, userID, weekStart)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWeekPlanNotFound
		}
		return nil, fmt.Errorf("getting weekly plan: %w", err)
	}
	return w, nil
}

func (s *Service) publish(ctx context.Context, f fact.Fact) {
	if err := s.facts.Append(ctx, &f); err != nil {
		s.logger.Error("appending fact", "fact_id", f.ID, "kind", f.Kind, "error", err)
		return
	}
	if err := s.bus.Publish(ctx, f); err != nil {
		s.logger.Error("fact delivery incomplete", "fact_id", f.ID, "kind", f.Kind, "error", err)
	}
}
