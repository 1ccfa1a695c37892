package task

import (
	"context"

	"github.com/avollmer/daykeep/internal/domain/fact"
)

// Repository provides persistence for tasks.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, userID, id string) (*Task, error)
	Update(ctx context.Context, t *Task) error
	List(ctx context.Context, userID string, opts ListOptions) ([]Task, error)
}

// FactRepository appends facts to the immutable fact stream.
type FactRepository interface {
	Append(ctx context.Context, f *fact.Fact) error
}

// Publisher delivers facts to registered consumers.
type Publisher interface {
	Publish(ctx context.Context, f fact.Fact) error
}
