package user

import (
	"context"

	"github.com/avollmer/daykeep/internal/domain/fact"
)

// Repository provides persistence for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

// FactRepository appends facts to the immutable fact stream.
type FactRepository interface {
	Append(ctx context.Context, f *fact.Fact) error
}

// Publisher delivers facts to registered consumers.
type Publisher interface {
	Publish(ctx context.Context, f fact.Fact) error
}
