package potdraw

import (
	"context"
	"time"
)

type DrawRunner interface {
	// RunDraw draws the current roster, retrying attempts until one succeeds.
	// If no attempt succeeds within the budget, it returns Error with code: ErrorStatusAttemptsExhausted.
	// An unsatisfiable configuration returns Error with code: ErrorStatusInvalidRequest before any attempt.
	RunDraw(ctx context.Context, req RunDrawRequest) (*RunDrawResponse, error)

	// GetDrawResult retrieves a stored draw.
	// If the result does not exist, Error is returned with code: ErrorStatusNotFound.
	GetDrawResult(ctx context.Context, req GetDrawResultRequest) (*GetDrawResultResponse, error)
}

type RunDrawRequest struct {
	Config DrawConfig
	// Seed makes the draw reproducible. A random seed is used when nil.
	Seed *uint64
}

type RunDrawResponse struct {
	DrawID  string
	Outcome *DrawOutcome
}

type GetDrawResultRequest struct {
	DrawID string
}

type GetDrawResultResponse struct {
	DrawID    string
	Config    DrawConfig
	Outcome   *DrawOutcome
	CreatedAt time.Time
}

type DrawWatcher interface {
	// WatchDraws delivers the id of every draw completed after it returns.
	// The channel is closed once ctx is done or the subscription breaks.
	WatchDraws(ctx context.Context) (<-chan string, error)
}
