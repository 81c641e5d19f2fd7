package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/rueidis"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/castaneai/potdraw/potdrawconnect"
	"github.com/castaneai/potdraw/potdrawotel"
	"github.com/castaneai/potdraw/potdrawredis"
)

const (
	serviceName = "potdraw_api"
)

type config struct {
	ListenPort      string        `envconfig:"PORT" default:"8080"`
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisKeyPrefix  string        `envconfig:"REDIS_KEY_PREFIX" default:"potdraw:"`
	DefaultPotCount int           `envconfig:"DEFAULT_POT_COUNT" default:"4"`
	MaxAttempts     int           `envconfig:"MAX_ATTEMPTS" default:"10000"`
	Parallelism     int           `envconfig:"PARALLELISM" default:"1"`
	ResultTTL       time.Duration `envconfig:"RESULT_TTL" default:"24h"`
	OTLPEndpoint    string        `envconfig:"OTLP_ENDPOINT"`
}

func main() {
	var conf config
	envconfig.MustProcess("POTDRAW", &conf)
	slog.Info(fmt.Sprintf("starting potdraw API server with config: %+v", conf))

	if err := run(conf); err != nil {
		slog.Error(err.Error(), "error", err)
		os.Exit(1)
	}
}

func run(conf config) error {
	ctx, shutdown := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer shutdown()

	if conf.OTLPEndpoint != "" {
		stop, err := startMetricExporter(ctx, conf.OTLPEndpoint)
		if err != nil {
			return err
		}
		defer stop()
	}

	redis, err := newRedisClient(&conf)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redis.Close()

	rosterOpts := []potdrawredis.RosterOption{potdrawredis.WithDefaultPotCount(conf.DefaultPotCount)}
	roster, err := potdrawotel.NewRosterManager(potdrawredis.NewRosterManager(conf.RedisKeyPrefix, redis, rosterOpts...))
	if err != nil {
		return fmt.Errorf("failed to create roster manager: %w", err)
	}
	runner, err := potdrawotel.NewDrawRunner(potdrawredis.NewDrawRunner(conf.RedisKeyPrefix, redis, roster,
		potdrawredis.WithMaxAttempts(conf.MaxAttempts),
		potdrawredis.WithParallelism(conf.Parallelism),
		potdrawredis.WithResultTTL(conf.ResultTTL),
	))
	if err != nil {
		return fmt.Errorf("failed to create draw runner: %w", err)
	}
	gauges, err := potdrawotel.RegisterRosterGauges(potdrawredis.NewMetrics(conf.RedisKeyPrefix, redis, rosterOpts...))
	if err != nil {
		return fmt.Errorf("failed to register roster gauges: %w", err)
	}
	defer func() { _ = gauges.Unregister() }()

	// init connect-RPC server
	mux := http.NewServeMux()
	mux.Handle(potdrawconnect.NewRosterServiceHandler(roster))
	mux.Handle(potdrawconnect.NewDrawServiceHandler(runner, potdrawredis.NewDrawWatcher(conf.RedisKeyPrefix, redis)))
	handler := h2c.NewHandler(mux, &http2.Server{})
	addr := fmt.Sprintf(":%s", conf.ListenPort)
	server := &http.Server{Addr: addr, Handler: handler}

	eg := &errgroup.Group{}
	eg.Go(func() error {
		slog.Info(fmt.Sprintf("potdraw API server (Connect RPC) is listening on %s...", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	<-ctx.Done()
	slog.Info("shutting down potdraw API server...")
	if err := server.Shutdown(context.Background()); err != nil {
		err := fmt.Errorf("failed to shutdown potdraw API server: %w", err)
		slog.Error(err.Error(), "error", err)
	}
	return eg.Wait()
}

func newRedisClient(conf *config) (rueidis.Client, error) {
	redisConf := rueidis.ClientOption{
		InitAddress:  []string{conf.RedisAddr},
		DisableCache: true,
	}
	if conf.RedisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to run miniredis: %w", err)
		}
		slog.Info(fmt.Sprintf("REDIS_ADDR is not set; using embedded miniredis on %s", mr.Addr()))
		redisConf.InitAddress = []string{mr.Addr()}
	}
	return rueidis.NewClient(redisConf)
}

func startMetricExporter(ctx context.Context, endpoint string) (func(), error) {
	otelRes, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to create otel resource: %w", err)
	}
	exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}
	provider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(10*time.Second))),
		metric.WithResource(otelRes),
	)
	otel.SetMeterProvider(provider)
	return func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			err := fmt.Errorf("failed to shutdown meter provider: %w", err)
			slog.Error(err.Error(), "error", err)
		}
	}, nil
}
