package fact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avollmer/daykeep/internal/metrics"
)

// Consumer reacts to published facts by updating derived state. Name must be
// stable across runs: it keys the idempotency ledger.
type Consumer interface {
	Name() string
	Handle(ctx context.Context, f Fact) error
}

// ConsumerError reports the failure of a single consumer during a publish.
type ConsumerError struct {
	Consumer string
	Err      error
}

func (e *ConsumerError) Error() string {
	return fmt.Sprintf("consumer %s: %v", e.Consumer, e.Err)
}

func (e *ConsumerError) Unwrap() error {
	return e.Err
}

// Bus delivers each published fact synchronously to every registered consumer,
// one at a time, in registration order. A consumer failing or panicking does
// not prevent the remaining consumers from running.
type Bus struct {
	mu        sync.RWMutex
	consumers []Consumer
	logger    *slog.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Register appends a consumer to the dispatch order.
func (b *Bus) Register(c Consumer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consumers = append(b.consumers, c)
}

// Publish walks all consumers with the fact and collects their failures into a
// single joined error. The caller decides whether a consumer failure is fatal
// to the operation that triggered the publish; the mutation that produced the
// fact is already committed by the time Publish runs.
func (b *Bus) Publish(ctx context.Context, f Fact) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("publishing fact: %w", err)
	}
	if !f.Kind.Known() {
		b.logger.Warn("publishing fact of unknown kind", "fact_id", f.ID, "kind", f.Kind)
	}

	b.mu.RLock()
	consumers := make([]Consumer, len(b.consumers))
	copy(consumers, b.consumers)
	b.mu.RUnlock()

	metrics.FactPublished(string(f.Kind))

	var errs []error
	for _, c := range consumers {
		start := time.Now()
		err := b.dispatch(ctx, c, f)
		outcome := "ok"
		if err != nil {
			outcome = "error"
			b.logger.Error("consumer failed",
				"consumer", c.Name(),
				"fact_id", f.ID,
				"kind", f.Kind,
				"error", err,
			)
			errs = append(errs, &ConsumerError{Consumer: c.Name(), Err: err})
		}
		metrics.ConsumerRun(c.Name(), outcome, time.Since(start))
	}

	return errors.Join(errs...)
}

// dispatch isolates a single consumer invocation, converting panics into
// errors so one consumer cannot take down the rest of the fan-out.
func (b *Bus) dispatch(ctx context.Context, c Consumer, f Fact) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.Handle(ctx, f)
}
