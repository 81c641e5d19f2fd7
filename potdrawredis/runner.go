package potdrawredis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"github.com/castaneai/potdraw"
)

const (
	defaultResultTTL = 24 * time.Hour
)

type RunnerOption func(r *redisDrawRunner)

func WithMaxAttempts(n int) RunnerOption {
	return func(r *redisDrawRunner) {
		r.drawerOpts = append(r.drawerOpts, potdraw.WithMaxAttempts(n))
	}
}

func WithParallelism(n int) RunnerOption {
	return func(r *redisDrawRunner) {
		r.drawerOpts = append(r.drawerOpts, potdraw.WithParallelism(n))
	}
}

// WithResultTTL sets how long a stored draw result can be retrieved.
func WithResultTTL(ttl time.Duration) RunnerOption {
	return func(r *redisDrawRunner) {
		if ttl >= time.Second {
			r.resultTTL = ttl
		}
	}
}

type redisDrawRunner struct {
	keyPrefix  string
	client     rueidis.Client
	roster     potdraw.RosterManager
	resultTTL  time.Duration
	drawerOpts []potdraw.DrawerOption
	now        func() time.Time
}

// NewDrawRunner draws the roster held by roster and stores each outcome under a new draw id.
func NewDrawRunner(keyPrefix string, client rueidis.Client, roster potdraw.RosterManager, opts ...RunnerOption) potdraw.DrawRunner {
	r := &redisDrawRunner{
		keyPrefix: keyPrefix,
		client:    client,
		roster:    roster,
		resultTTL: defaultResultTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *redisDrawRunner) RunDraw(ctx context.Context, req potdraw.RunDrawRequest) (*potdraw.RunDrawResponse, error) {
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}
	roster, err := r.roster.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	engine, err := potdraw.NewEngine(*roster, req.Config)
	if err != nil {
		return nil, err
	}
	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}
	outcome, err := potdraw.NewDrawer(engine, r.drawerOpts...).Draw(ctx, seed)
	if err != nil {
		var perr *potdraw.Error
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, potdraw.NewError(potdraw.ErrorStatusUnknown, err)
	}

	drawID := uuid.NewString()
	data, err := encodeDrawRecord(drawRecordJSON{
		DrawID:    drawID,
		Config:    req.Config,
		Outcome:   outcome,
		CreatedAt: r.now().UTC(),
	})
	if err != nil {
		return nil, potdraw.NewError(potdraw.ErrorStatusUnknown, err)
	}
	cmd := r.client.B().Set().Key(redisKeyDrawResult(r.keyPrefix, drawID)).Value(data).ExSeconds(int64(r.resultTTL.Seconds())).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return nil, potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to store draw result: %w", err))
	}
	pub := r.client.B().Publish().Channel(redisPubSubChannelDrawCompleted(r.keyPrefix)).Message(drawID).Build()
	if err := r.client.Do(ctx, pub).Error(); err != nil {
		err := fmt.Errorf("failed to publish draw completion: %w", err)
		slog.Error(err.Error(), "error", err)
	}
	slog.Info(fmt.Sprintf("draw completed (id: %s, seed: %d, attempt: %d/%d)", drawID, seed, outcome.Attempt, outcome.Attempts))
	return &potdraw.RunDrawResponse{DrawID: drawID, Outcome: outcome}, nil
}

func (r *redisDrawRunner) GetDrawResult(ctx context.Context, req potdraw.GetDrawResultRequest) (*potdraw.GetDrawResultResponse, error) {
	if req.DrawID == "" {
		return nil, potdraw.NewError(potdraw.ErrorStatusInvalidRequest, errors.New("missing draw id"))
	}
	cmd := r.client.B().Get().Key(redisKeyDrawResult(r.keyPrefix, req.DrawID)).Build()
	res := r.client.Do(ctx, cmd)
	if err := res.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, potdraw.NewError(potdraw.ErrorStatusNotFound, fmt.Errorf("draw '%s' not found", req.DrawID))
		}
		return nil, potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to get draw result: %w", err))
	}
	data, err := res.AsBytes()
	if err != nil {
		return nil, potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to parse redis result as bytes: %w", err))
	}
	record, err := decodeDrawRecord(data)
	if err != nil {
		return nil, potdraw.NewError(potdraw.ErrorStatusUnknown, err)
	}
	return &potdraw.GetDrawResultResponse{
		DrawID:    record.DrawID,
		Config:    record.Config,
		Outcome:   record.Outcome,
		CreatedAt: record.CreatedAt,
	}, nil
}
