package potdrawconnect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/castaneai/potdraw"
)

const (
	DrawServiceName = "potdraw.v1.DrawService"
)

var (
	DrawServiceRunDrawProcedure       = procedure(DrawServiceName, "RunDraw")
	DrawServiceGetDrawResultProcedure = procedure(DrawServiceName, "GetDrawResult")
	DrawServiceWatchDrawsProcedure    = procedure(DrawServiceName, "WatchDraws")
)

type runDrawMessage struct {
	Config potdraw.DrawConfig `json:"config"`
	// Seed is a decimal string; JSON numbers cannot carry every uint64.
	Seed string `json:"seed,omitempty"`
}

type drawOutcomeMessage struct {
	Result    *potdraw.DrawResult `json:"result"`
	Summaries []string            `json:"summaries"`
	Seed      uint64              `json:"seed,string"`
	Attempt   int                 `json:"attempt"`
	Attempts  int                 `json:"attempts"`
}

func newDrawOutcomeMessage(o *potdraw.DrawOutcome) *drawOutcomeMessage {
	return &drawOutcomeMessage{
		Result:    o.Result,
		Summaries: o.Result.Summaries(),
		Seed:      o.Seed,
		Attempt:   o.Attempt,
		Attempts:  o.Attempts,
	}
}

func (m *drawOutcomeMessage) outcome() *potdraw.DrawOutcome {
	if m == nil {
		return nil
	}
	return &potdraw.DrawOutcome{Result: m.Result, Seed: m.Seed, Attempt: m.Attempt, Attempts: m.Attempts}
}

type runDrawResponseMessage struct {
	DrawID  string              `json:"draw_id"`
	Outcome *drawOutcomeMessage `json:"outcome"`
}

type drawIDMessage struct {
	DrawID string `json:"draw_id"`
}

type drawResultMessage struct {
	DrawID    string              `json:"draw_id"`
	Config    potdraw.DrawConfig  `json:"config"`
	Outcome   *drawOutcomeMessage `json:"outcome"`
	CreatedAt time.Time           `json:"created_at"`
}

type drawService struct {
	runner  potdraw.DrawRunner
	watcher potdraw.DrawWatcher
}

// NewDrawServiceHandler serves WatchDraws only when watcher is not nil.
func NewDrawServiceHandler(runner potdraw.DrawRunner, watcher potdraw.DrawWatcher, opts ...connect.HandlerOption) (string, http.Handler) {
	s := &drawService{runner: runner, watcher: watcher}
	mux := http.NewServeMux()
	mux.Handle(DrawServiceRunDrawProcedure, newUnaryHandler(DrawServiceRunDrawProcedure, s.runDraw, opts...))
	mux.Handle(DrawServiceGetDrawResultProcedure, newUnaryHandler(DrawServiceGetDrawResultProcedure, s.getDrawResult, opts...))
	mux.Handle(DrawServiceWatchDrawsProcedure, connect.NewServerStreamHandler(DrawServiceWatchDrawsProcedure, s.watchDraws, opts...))
	return "/" + DrawServiceName + "/", mux
}

func (s *drawService) runDraw(ctx context.Context, req *runDrawMessage) (*runDrawResponseMessage, error) {
	r := potdraw.RunDrawRequest{Config: req.Config}
	if req.Seed != "" {
		seed, err := strconv.ParseUint(req.Seed, 10, 64)
		if err != nil {
			return nil, potdraw.NewError(potdraw.ErrorStatusInvalidRequest, fmt.Errorf("invalid seed '%s': %w", req.Seed, err))
		}
		r.Seed = &seed
	}
	resp, err := s.runner.RunDraw(ctx, r)
	if err != nil {
		return nil, err
	}
	return &runDrawResponseMessage{DrawID: resp.DrawID, Outcome: newDrawOutcomeMessage(resp.Outcome)}, nil
}

func (s *drawService) getDrawResult(ctx context.Context, req *drawIDMessage) (*drawResultMessage, error) {
	resp, err := s.runner.GetDrawResult(ctx, potdraw.GetDrawResultRequest{DrawID: req.DrawID})
	if err != nil {
		return nil, err
	}
	return &drawResultMessage{
		DrawID:    resp.DrawID,
		Config:    resp.Config,
		Outcome:   newDrawOutcomeMessage(resp.Outcome),
		CreatedAt: resp.CreatedAt,
	}, nil
}

// watchDraws sends an empty message first, once the subscription is active.
func (s *drawService) watchDraws(ctx context.Context, _ *connect.Request[structpb.Struct], stream *connect.ServerStream[structpb.Struct]) error {
	if s.watcher == nil {
		return connect.NewError(connect.CodeUnimplemented, errors.New("draw watching is not enabled"))
	}
	drawIDs, err := s.watcher.WatchDraws(ctx)
	if err != nil {
		return toConnectError(err)
	}
	if err := stream.Send(&structpb.Struct{}); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return connect.NewError(connect.CodeCanceled, ctx.Err())
		case drawID, ok := <-drawIDs:
			if !ok {
				return nil
			}
			msg, err := toStruct(&drawIDMessage{DrawID: drawID})
			if err != nil {
				return connect.NewError(connect.CodeInternal, err)
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

type drawClient struct {
	runDraw       *structClient
	getDrawResult *structClient
	watchDraws    *structClient
}

type DrawClient interface {
	potdraw.DrawRunner
	potdraw.DrawWatcher
}

// NewDrawClient returns a DrawRunner and DrawWatcher backed by a remote DrawService.
func NewDrawClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DrawClient {
	return &drawClient{
		runDraw:       newStructClient(httpClient, baseURL, DrawServiceRunDrawProcedure, opts...),
		getDrawResult: newStructClient(httpClient, baseURL, DrawServiceGetDrawResultProcedure, opts...),
		watchDraws:    newStructClient(httpClient, baseURL, DrawServiceWatchDrawsProcedure, opts...),
	}
}

func (c *drawClient) RunDraw(ctx context.Context, req potdraw.RunDrawRequest) (*potdraw.RunDrawResponse, error) {
	msg := &runDrawMessage{Config: req.Config}
	if req.Seed != nil {
		msg.Seed = strconv.FormatUint(*req.Seed, 10)
	}
	resp, err := callUnary[runDrawResponseMessage](ctx, c.runDraw, msg)
	if err != nil {
		return nil, err
	}
	return &potdraw.RunDrawResponse{DrawID: resp.DrawID, Outcome: resp.Outcome.outcome()}, nil
}

func (c *drawClient) GetDrawResult(ctx context.Context, req potdraw.GetDrawResultRequest) (*potdraw.GetDrawResultResponse, error) {
	resp, err := callUnary[drawResultMessage](ctx, c.getDrawResult, &drawIDMessage{DrawID: req.DrawID})
	if err != nil {
		return nil, err
	}
	return &potdraw.GetDrawResultResponse{
		DrawID:    resp.DrawID,
		Config:    resp.Config,
		Outcome:   resp.Outcome.outcome(),
		CreatedAt: resp.CreatedAt,
	}, nil
}

// WatchDraws returns once the server confirms the subscription.
func (c *drawClient) WatchDraws(ctx context.Context) (<-chan string, error) {
	stream, err := c.watchDraws.CallServerStream(ctx, connect.NewRequest(&structpb.Struct{}))
	if err != nil {
		return nil, fromConnectError(err)
	}
	if !stream.Receive() {
		err := stream.Err()
		_ = stream.Close()
		if err == nil {
			err = errors.New("draw watch stream closed before subscribing")
		}
		return nil, fromConnectError(err)
	}
	drawIDs := make(chan string)
	go func() {
		defer close(drawIDs)
		defer stream.Close()
		for stream.Receive() {
			var msg drawIDMessage
			if err := fromStruct(stream.Msg(), &msg); err != nil {
				slog.Error(err.Error(), "error", err)
				return
			}
			select {
			case drawIDs <- msg.DrawID:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			err := fmt.Errorf("draw watch stream broken: %w", err)
			slog.Error(err.Error(), "error", err)
		}
	}()
	return drawIDs, nil
}
