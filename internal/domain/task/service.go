package task

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

// Service handles task management and publishes TaskCreated and TaskCompleted
// facts after committing its mutations.
type Service struct {
	tasks  Repository
	facts  FactRepository
	bus    Publisher
	clk    clock.Clock
	logger *slog.Logger
}

// NewService creates a new task service.
func NewService(tasks Repository, facts FactRepository, bus Publisher, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		tasks:  tasks,
		facts:  facts,
		bus:    bus,
		clk:    clk,
		logger: logger,
	}
}

// CreateRequest describes a task creation request.
type CreateRequest struct {
	Title        string
	GoalID       *string
	KeyResultID  *string
	Contribution float64
}

// Create creates a task and publishes a TaskCreated fact. A key-result link
// requires the goal link as well.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrInvalidInput
	}
	if req.KeyResultID != nil && req.GoalID == nil {
		return nil, ErrInvalidInput
	}

	t := &Task{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        req.Title,
		GoalID:       req.GoalID,
		KeyResultID:  req.KeyResultID,
		Contribution: req.Contribution,
		Status:       StatusTodo,
		CreatedAt:    s.clk.Now(),
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.publish(ctx, fact.NewTaskCreated(userID, t.ID, s.clk.Now()))

	return t, nil
}

// Complete transitions a task TODO to DONE and publishes a TaskCompleted fact
// carrying the goal link and contribution. Completing a DONE task fails.
func (s *Service) Complete(ctx context.Context, userID, id string) (*Task, error) {
	t, err := s.tasks.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("loading task: %w", err)
	}

	if t.Status == StatusDone {
		return nil, ErrAlreadyCompleted
	}

	now := s.clk.Now()
	t.Status = StatusDone
	t.CompletedAt = &now

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("completing task: %w", err)
	}

	s.publish(ctx, fact.NewTaskCompleted(userID, t.ID, t.GoalID, t.KeyResultID, t.Contribution, now))

	return t, nil
}

// Get returns a task by ID.
func (s *Service) Get(ctx context.Context, userID, id string) (*Task, error) {
	t, err := s.tasks.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return t, nil
}

// List returns tasks for a user.
func (s *Service) List(ctx context.Context, userID string, opts ListOptions) ([]Task, error) {
	return s.tasks.List(ctx, userID, opts)
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
