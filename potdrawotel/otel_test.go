package potdrawotel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/castaneai/potdraw"
)

func newTestMetricReader(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() {
		otel.SetMeterProvider(prev)
		_ = provider.Shutdown(context.Background())
	})
	return reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))
	metrics := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			metrics[m.Name] = m.Data
		}
	}
	return metrics
}

func sumValue(t *testing.T, data metricdata.Aggregation, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "unexpected aggregation: %T", data)
	return pointValue(t, sum.DataPoints, attrs...)
}

func gaugeValue(t *testing.T, data metricdata.Aggregation, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	gauge, ok := data.(metricdata.Gauge[int64])
	require.True(t, ok, "unexpected aggregation: %T", data)
	return pointValue(t, gauge.DataPoints, attrs...)
}

func pointValue(t *testing.T, points []metricdata.DataPoint[int64], attrs ...attribute.KeyValue) int64 {
	t.Helper()
	want := attribute.NewSet(attrs...)
	for _, dp := range points {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	t.Fatalf("no data point with attributes %v", attrs)
	return 0
}

type fakeDrawRunner struct {
	err      error
	attempts int
}

func (f *fakeDrawRunner) RunDraw(_ context.Context, _ potdraw.RunDrawRequest) (*potdraw.RunDrawResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &potdraw.RunDrawResponse{DrawID: "d1", Outcome: &potdraw.DrawOutcome{Result: &potdraw.DrawResult{}, Attempts: f.attempts}}, nil
}

func (f *fakeDrawRunner) GetDrawResult(_ context.Context, req potdraw.GetDrawResultRequest) (*potdraw.GetDrawResultResponse, error) {
	return &potdraw.GetDrawResultResponse{DrawID: req.DrawID}, nil
}

func TestDrawRunner(t *testing.T) {
	ctx := t.Context()
	reader := newTestMetricReader(t)
	fake := &fakeDrawRunner{attempts: 3}
	runner, err := NewDrawRunner(fake)
	require.NoError(t, err)

	for range 2 {
		_, err = runner.RunDraw(ctx, potdraw.RunDrawRequest{})
		require.NoError(t, err)
	}
	fake.err = potdraw.NewError(potdraw.ErrorStatusAttemptsExhausted, potdraw.ErrAttemptsExhausted)
	_, err = runner.RunDraw(ctx, potdraw.RunDrawRequest{})
	require.ErrorIs(t, err, potdraw.ErrAttemptsExhausted)
	fake.err = potdraw.NewError(potdraw.ErrorStatusInvalidRequest, errors.New("bad quota"))
	_, err = runner.RunDraw(ctx, potdraw.RunDrawRequest{})
	require.Error(t, err)
	fake.err = errors.New("connection refused")
	_, err = runner.RunDraw(ctx, potdraw.RunDrawRequest{})
	require.Error(t, err)

	res, err := runner.GetDrawResult(ctx, potdraw.GetDrawResultRequest{DrawID: "d1"})
	require.NoError(t, err)
	require.Equal(t, "d1", res.DrawID)

	metrics := collect(t, reader)
	count := metrics["potdraw.draw.count_total"]
	require.Equal(t, int64(2), sumValue(t, count, statusKey.String("ok")))
	require.Equal(t, int64(1), sumValue(t, count, statusKey.String("exhausted")))
	require.Equal(t, int64(1), sumValue(t, count, statusKey.String("invalid")))
	require.Equal(t, int64(1), sumValue(t, count, statusKey.String("error")))

	latency, ok := metrics["potdraw.draw_latency_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	var latencyCount uint64
	for _, dp := range latency.DataPoints {
		latencyCount += dp.Count
	}
	require.Equal(t, uint64(5), latencyCount)

	attempts, ok := metrics["potdraw.draw.attempts"].(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, attempts.DataPoints, 1)
	require.Equal(t, uint64(2), attempts.DataPoints[0].Count)
	require.Equal(t, int64(6), attempts.DataPoints[0].Sum)
}

type fakeRosterManager struct {
	potdraw.RosterManager
	err error
}

func (f *fakeRosterManager) AddParticipant(_ context.Context, _ potdraw.AddParticipantRequest) error {
	return f.err
}

func (f *fakeRosterManager) AssignParticipant(_ context.Context, _ potdraw.AssignParticipantRequest) error {
	return f.err
}

func TestRosterManager(t *testing.T) {
	ctx := t.Context()
	reader := newTestMetricReader(t)
	fake := &fakeRosterManager{}
	m, err := NewRosterManager(fake)
	require.NoError(t, err)

	require.NoError(t, m.AddParticipant(ctx, potdraw.AddParticipantRequest{}))
	require.NoError(t, m.AssignParticipant(ctx, potdraw.AssignParticipantRequest{}))
	fake.err = potdraw.NewError(potdraw.ErrorStatusAlreadyExists, errors.New("taken"))
	require.Error(t, m.AddParticipant(ctx, potdraw.AddParticipantRequest{}))
	fake.err = errors.New("connection refused")
	require.Error(t, m.AssignParticipant(ctx, potdraw.AssignParticipantRequest{}))

	count := collect(t, reader)["potdraw.roster.mutation.count_total"]
	require.Equal(t, int64(1), sumValue(t, count, opAddParticipant, statusKey.String("ok")))
	require.Equal(t, int64(1), sumValue(t, count, opAddParticipant, statusKey.String("already_exists")))
	require.Equal(t, int64(1), sumValue(t, count, opAssignParticipant, statusKey.String("ok")))
	require.Equal(t, int64(1), sumValue(t, count, opAssignParticipant, statusKey.String("error")))
}

type fakeRosterStats struct {
	sizes []potdraw.PotSize
}

func (f *fakeRosterStats) GetParticipantCount(_ context.Context) (int, error) {
	total := 0
	for _, s := range f.sizes {
		total += s.Size
	}
	return total, nil
}

func (f *fakeRosterStats) GetPotSizes(_ context.Context) ([]potdraw.PotSize, error) {
	return f.sizes, nil
}

func TestRosterGauges(t *testing.T) {
	reader := newTestMetricReader(t)
	stats := &fakeRosterStats{sizes: []potdraw.PotSize{{PotID: 1, Size: 4}, {PotID: 2, Size: 3}}}
	reg, err := RegisterRosterGauges(stats)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Unregister() })

	metrics := collect(t, reader)
	require.Equal(t, int64(7), gaugeValue(t, metrics["potdraw.roster.participants"]))
	require.Equal(t, int64(4), gaugeValue(t, metrics["potdraw.pot.size"], potIDKey.Int(1)))
	require.Equal(t, int64(3), gaugeValue(t, metrics["potdraw.pot.size"], potIDKey.Int(2)))
}
