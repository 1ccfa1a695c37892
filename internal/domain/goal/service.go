package goal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avollmer/daykeep/internal/clock"
	"github.com/avollmer/daykeep/internal/repository"
)

// Service handles goal and key result management. Goal edits are ordinary
// user actions and publish no facts; derived state (CurrentValue) is out of
// its reach entirely.
type Service struct {
	goals      Repository
	keyResults KeyResultRepository
	clk        clock.Clock
	logger     *slog.Logger
}

// NewService creates a new goal service.
func NewService(goals Repository, keyResults KeyResultRepository, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		goals:      goals,
		keyResults: keyResults,
		clk:        clk,
		logger:     logger,
	}
}

// CreateRequest describes a goal creation request.
type CreateRequest struct {
	Title     string
	Horizon   Horizon
	StartDate string
	EndDate   string
}

// AddKeyResultRequest describes a key result creation request.
type AddKeyResultRequest struct {
	GoalID      string
	Title       string
	Type        KeyResultType
	StartValue  float64
	TargetValue float64
	Weight      float64
}

// Create creates an ACTIVE goal.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Goal, error) {
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}

	g := &Goal{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     req.Title,
		Horizon:   req.Horizon,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    StatusActive,
		CreatedAt: s.clk.Now(),
	}

	if err := s.goals.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("creating goal: %w", err)
	}

	return g, nil
}

// AddKeyResult attaches a key result to an owned goal. CurrentValue starts at
// StartValue and moves only through evaluation afterwards.
func (s *Service) AddKeyResult(ctx context.Context, userID string, req AddKeyResultRequest) (*KeyResult, error) {
	if err := ValidateKeyResultInput(req); err != nil {
		return nil, err
	}

	if _, err := s.goals.Get(ctx, userID, req.GoalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("loading goal: %w", err)
	}

	weight := req.Weight
	if weight == 0 {
		weight = 1
	}

	kr := &KeyResult{
		ID:           uuid.NewString(),
		GoalID:       req.GoalID,
		Title:        req.Title,
		Type:         req.Type,
		StartValue:   req.StartValue,
		TargetValue:  req.TargetValue,
		CurrentValue: req.StartValue,
		Weight:       weight,
		CreatedAt:    s.clk.Now(),
	}

	if err := s.keyResults.Create(ctx, kr); err != nil {
		return nil, fmt.Errorf("creating key result: %w", err)
	}

	return kr, nil
}

// Get returns a goal by ID.
func (s *Service) Get(ctx context.Context, userID, id string) (*Goal, error) {
	g, err := s.goals.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("getting goal: %w", err)
	}
	return g, nil
}

// ListByUser returns all goals owned by a user.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Goal, error) {
	return s.goals.ListByUser(ctx, userID)
}

// KeyResults returns the key results under an owned goal.
func (s *Service) KeyResults(ctx context.Context, userID, goalID string) ([]KeyResult, error) {
	if _, err := s.Get(ctx, userID, goalID); err != nil {
		return nil, err
	}
	return s.keyResults.ListByGoal(ctx, goalID)
}

// Transition changes a goal's status after validating the move.
func (s *Service) Transition(ctx context.Context, userID, id string, to Status) (*Goal, error) {
	g, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := ValidateStatusTransition(g.Status, to); err != nil {
		return nil, err
	}

	if err := s.goals.UpdateStatus(ctx, userID, id, to); err != nil {
		return nil, fmt.Errorf("transitioning goal: %w", err)
	}

	g.Status = to
	return g, nil
}

// Progress returns the weighted progress of an owned goal across its key
// results.
func (s *Service) Progress(ctx context.Context, userID, goalID string) (float64, error) {
	krs, err := s.KeyResults(ctx, userID, goalID)
	if err != nil {
		return 0, err
	}
	return WeightedProgress(krs), nil
}
