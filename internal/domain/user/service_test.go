package user_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avollmer/daykeep/internal/clock"
	"github.com/avollmer/daykeep/internal/domain/fact"
	"github.com/avollmer/daykeep/internal/domain/user"
	"github.com/avollmer/daykeep/internal/repository"
	"github.com/avollmer/daykeep/internal/repository/mocks"
)

var userAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newUserService(users *mocks.UserRepository, facts *mocks.FactRepository, bus *mocks.Publisher) *user.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return user.NewService(users, facts, bus, clock.Fixed{Instant: userAt}, logger)
}

func TestUserService_CreatePublishesUserCreated(t *testing.T) {
	ctx := context.Background()
	users := &mocks.UserRepository{}
	facts := &mocks.FactRepository{}
	bus := &mocks.Publisher{}

	users.On("Create", ctx, mock.Anything).Return(nil)
	facts.On("Append", ctx, mock.Anything).Return(nil)
	bus.On("Publish", ctx, mock.MatchedBy(func(f fact.Fact) bool {
		return f.Kind == fact.KindUserCreated
	})).Return(nil)

	svc := newUserService(users, facts, bus)
	u, err := svc.Create(ctx, "Ada")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	bus.AssertNumberOfCalls(t, "Publish", 1)
}

func TestUserService_Create_RejectsBlankName(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(&mocks.UserRepository{}, &mocks.FactRepository{}, &mocks.Publisher{})

	_, err := svc.Create(ctx, "   ")
	require.ErrorIs(t, err, user.ErrInvalidInput)
}

func TestUserService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	users := &mocks.UserRepository{}
	users.On("Get", ctx, "missing").Return(nil, repository.ErrNotFound)

	svc := newUserService(users, &mocks.FactRepository{}, &mocks.Publisher{})
	_, err := svc.Get(ctx, "missing")
	require.ErrorIs(t, err, user.ErrUserNotFound)
}
