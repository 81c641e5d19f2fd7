package potdrawotel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/castaneai/potdraw"
)

var (
	drawStatusExhausted = statusKey.String("exhausted")
	drawStatusInvalid   = statusKey.String("invalid")
	drawStatusError     = statusKey.String("error")
)

type drawRunner struct {
	inner        potdraw.DrawRunner
	drawCount    metric.Int64Counter
	drawLatency  metric.Float64Histogram
	drawAttempts metric.Int64Histogram
}

func NewDrawRunner(inner potdraw.DrawRunner) (potdraw.DrawRunner, error) {
	meter := otel.GetMeterProvider().Meter(scopeName)
	drawCount, err := meter.Int64Counter("potdraw.draw.count_total")
	if err != nil {
		return nil, err
	}
	drawLatency, err := meter.Float64Histogram("potdraw.draw_latency_seconds",
		metric.WithUnit("s"), metric.WithExplicitBucketBoundaries(latencyHistogramBuckets...))
	if err != nil {
		return nil, err
	}
	drawAttempts, err := meter.Int64Histogram("potdraw.draw.attempts",
		metric.WithDescription("attempts run until a draw succeeded"),
		metric.WithExplicitBucketBoundaries(attemptsHistogramBuckets...))
	if err != nil {
		return nil, err
	}
	return &drawRunner{
		inner:        inner,
		drawCount:    drawCount,
		drawLatency:  drawLatency,
		drawAttempts: drawAttempts,
	}, nil
}

func (r *drawRunner) RunDraw(ctx context.Context, req potdraw.RunDrawRequest) (*potdraw.RunDrawResponse, error) {
	statusAttr := statusOK
	start := time.Now()
	defer func() {
		r.drawCount.Add(ctx, 1, metric.WithAttributes(statusAttr))
		r.drawLatency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(statusAttr))
	}()
	resp, err := r.inner.RunDraw(ctx, req)
	if err != nil {
		switch {
		case potdraw.ErrorHasStatus(err, potdraw.ErrorStatusAttemptsExhausted):
			statusAttr = drawStatusExhausted
		case potdraw.ErrorHasStatus(err, potdraw.ErrorStatusInvalidRequest),
			potdraw.ErrorHasStatus(err, potdraw.ErrorStatusNotFound):
			statusAttr = drawStatusInvalid
		default:
			statusAttr = drawStatusError
		}
		return nil, err
	}
	r.drawAttempts.Record(ctx, int64(resp.Outcome.Attempts))
	return resp, nil
}

func (r *drawRunner) GetDrawResult(ctx context.Context, req potdraw.GetDrawResultRequest) (*potdraw.GetDrawResultResponse, error) {
	return r.inner.GetDrawResult(ctx, req)
}
