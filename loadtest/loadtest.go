package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"

	"github.com/castaneai/potdraw"
	"github.com/castaneai/potdraw/potdrawconnect"
	"github.com/castaneai/potdraw/potdrawotel"
)

const (
	serviceName = "potdraw_loadtest"
)

type config struct {
	APIURL       string        `envconfig:"API_URL" default:"http://localhost:8080"`
	OTLPEndpoint string        `envconfig:"OTLP_ENDPOINT" default:"http://localhost:4317"`
	PotCount     int           `envconfig:"POT_COUNT" default:"4"`
	PotSize      int           `envconfig:"POT_SIZE" default:"8"`
	Quota        int           `envconfig:"QUOTA" default:"2"`
	Interval     time.Duration `envconfig:"INTERVAL" default:"100ms"`
}

func main() {
	var conf config
	envconfig.MustProcess("POTDRAW_LOADTEST", &conf)

	ctx, shutdown := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer shutdown()

	otelRes, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		err := fmt.Errorf("failed to create otel resource: %w", err)
		slog.Error(err.Error(), "error", err)
		os.Exit(1)
	}
	exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(conf.OTLPEndpoint))
	if err != nil {
		err := fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		slog.Error(err.Error(), "error", err)
		os.Exit(1)
	}
	defer exporter.Shutdown(context.Background())
	otel.SetMeterProvider(metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(10*time.Second))),
		metric.WithResource(otelRes),
	))

	roster := potdrawconnect.NewRosterClient(http.DefaultClient, conf.APIURL)
	runner, err := potdrawotel.NewDrawRunner(potdrawconnect.NewDrawClient(http.DefaultClient, conf.APIURL))
	if err != nil {
		err := fmt.Errorf("failed to create draw runner: %w", err)
		slog.Error(err.Error(), "error", err)
		os.Exit(1)
	}
	if err := seedRoster(ctx, roster, conf.PotCount, conf.PotSize); err != nil {
		err := fmt.Errorf("failed to seed roster: %w", err)
		slog.Error(err.Error(), "error", err)
		return
	}

	slog.Info(fmt.Sprintf("potdraw loadtest is running against %s...", conf.APIURL))

	drawConf := potdraw.DrawConfig{QuotaPerPot: conf.Quota, AssociationCap: 1}
	ticker := time.NewTicker(conf.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down...")
			return
		case <-ticker.C:
			if _, err := runner.RunDraw(ctx, potdraw.RunDrawRequest{Config: drawConf}); err != nil {
				err := fmt.Errorf("failed to run draw: %w", err)
				slog.Error(err.Error(), "error", err)
				time.Sleep(100 * time.Millisecond)
			}
		}
	}
}

// seedRoster fills every pot with participants whose associations repeat
// across pots, so the association cap is exercised.
func seedRoster(ctx context.Context, roster potdraw.RosterManager, potCount, potSize int) error {
	if err := roster.ConfigurePots(ctx, potdraw.ConfigurePotsRequest{PotCount: potCount}); err != nil {
		return err
	}
	for pot := 1; pot <= potCount; pot++ {
		for i := 1; i <= potSize; i++ {
			name := fmt.Sprintf("team-%d-%d", pot, i)
			err := roster.AddParticipant(ctx, potdraw.AddParticipantRequest{
				Participant: potdraw.Participant{Name: name, Association: fmt.Sprintf("assoc-%d", i)},
			})
			if err != nil && !potdraw.ErrorHasStatus(err, potdraw.ErrorStatusAlreadyExists) {
				return err
			}
			if err := roster.AssignParticipant(ctx, potdraw.AssignParticipantRequest{Name: name, PotID: pot}); err != nil {
				return err
			}
		}
	}
	return nil
}
