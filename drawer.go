package potdraw

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxAttempts = 10000
	defaultParallelism = 1
)

// Drawer retries attempts of an Engine until one succeeds or the attempt
// budget runs out.
type Drawer struct {
	attempt     func(rng *rand.Rand) (*DrawResult, error)
	maxAttempts int
	parallelism int
}

type DrawerOption func(d *Drawer)

func WithMaxAttempts(n int) DrawerOption {
	return func(d *Drawer) {
		if n > 0 {
			d.maxAttempts = n
		}
	}
}

// WithParallelism runs up to n attempts at once.
func WithParallelism(n int) DrawerOption {
	return func(d *Drawer) {
		if n > 0 {
			d.parallelism = n
		}
	}
}

func NewDrawer(engine *Engine, opts ...DrawerOption) *Drawer {
	d := &Drawer{attempt: engine.RunAttempt, maxAttempts: defaultMaxAttempts, parallelism: defaultParallelism}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type DrawOutcome struct {
	Result *DrawResult `json:"result"`
	Seed   uint64      `json:"seed"`
	// Attempt is the index of the successful attempt.
	Attempt int `json:"attempt"`
	// Attempts is how many attempts were run in total.
	Attempts int `json:"attempts"`
}

// Draw runs attempts 0, 1, 2, ... where attempt i draws from PCG(seed, i).
// Indexes are handed out in order and a started attempt always finishes, so
// the lowest successful index wins and the outcome for a seed does not
// depend on parallelism. Cancellation is checked between attempts.
func (d *Drawer) Draw(ctx context.Context, seed uint64) (*DrawOutcome, error) {
	var (
		next     atomic.Int64
		attempts atomic.Int64
		stop     atomic.Bool
		mu       sync.Mutex
		best     *DrawOutcome
	)
	eg, egCtx := errgroup.WithContext(ctx)
	for range min(d.parallelism, d.maxAttempts) {
		eg.Go(func() error {
			for {
				if err := egCtx.Err(); err != nil {
					return err
				}
				if stop.Load() {
					return nil
				}
				i := int(next.Add(1) - 1)
				if i >= d.maxAttempts {
					return nil
				}
				attempts.Add(1)
				res, err := d.attempt(rand.New(rand.NewPCG(seed, uint64(i))))
				if errors.Is(err, ErrDeadlock) {
					continue
				}
				// counts were inconsistent: report it and retry like a deadlock
				if errors.Is(err, ErrVerification) {
					err := fmt.Errorf("attempt %d (seed: %d): %w", i, seed, err)
					slog.Error(err.Error(), "error", err)
					continue
				}
				if err != nil {
					return fmt.Errorf("attempt %d: %w", i, err)
				}
				mu.Lock()
				if best == nil || i < best.Attempt {
					best = &DrawOutcome{Result: res, Seed: seed, Attempt: i}
				}
				mu.Unlock()
				stop.Store(true)
				return nil
			}
		})
	}
	err := eg.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if best != nil {
		best.Attempts = int(attempts.Load())
		return best, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, NewError(ErrorStatusAttemptsExhausted, fmt.Errorf("%w: no valid draw in %d attempts", ErrAttemptsExhausted, d.maxAttempts))
}
