package user

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

// Service handles user management. It is an originating collaborator: after
// committing a mutation it appends the matching fact and publishes it.
type Service struct {
	users  Repository
	facts  FactRepository
	bus    Publisher
	clk    clock.Clock
	logger *slog.Logger
}

// NewService creates a new user service.
func NewService(users Repository, facts FactRepository, bus Publisher, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		facts:  facts,
		bus:    bus,
		clk:    clk,
		logger: logger,
	}
}

// Create registers a new user and publishes a UserCreated fact.
func (s *Service) Create(ctx context.Context, name string) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}

	u := &User{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: s.clk.Now(),
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.publish(ctx, fact.NewUserCreated(u.ID, s.clk.Now()))

	return u, nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.users.List(ctx)
}

// publish appends the fact and fans it out. Consumer failures are not fatal
// to the originating operation: the mutation is already committed and the
// fact can be redelivered later.
func (s *Service) publish(ctx context.Context, f fact.Fact) {
	if err := s.facts.Append(ctx, &f); err != nil {
		s.logger.Error("appending fact", "fact_id", f.ID, "kind", f.Kind, "error", err)
		return
	}
	if err := s.bus.Publish(ctx, f); err != nil {
		s.logger.Error("fact delivery incomplete", "fact_id", f.ID, "kind", f.Kind, "error", err)
	}
}
