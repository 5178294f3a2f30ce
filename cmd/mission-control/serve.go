package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/mission-control/internal/logging"
	"github.com/signalsfoundry/mission-control/internal/observability"
	"github.com/signalsfoundry/mission-control/internal/rpc"
	"github.com/signalsfoundry/mission-control/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation with the gRPC console and metrics endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	f := cmd.Flags()
	f.String("grpc-addr", ":50051", "TCP address the gRPC server listens on")
	f.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics (empty disables)")
	f.Duration("tick", time.Second, "simulation tick interval")
	f.Bool("accelerated", false, "advance simulation time as fast as possible")
	f.Uint64("seed", 0, "seed for simulation randomness (0 seeds from the clock)")
	f.String("mqtt-broker", "", "MQTT broker URL for telemetry publishing, e.g. tcp://localhost:1883")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	log := a.log
	cfg := a.cfg

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	metrics, err := observability.NewCollector(nil)
	if err != nil {
		return err
	}
	simMetrics, err := observability.NewSimCollector(nil)
	if err != nil {
		return err
	}

	publisher := telemetry.Publisher(telemetry.NoopPublisher{})
	if cfg.MQTT.Enabled() {
		p, err := telemetry.Dial(ctx, telemetry.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		}, log)
		if err != nil {
			log.Warn(ctx, "telemetry publishing disabled", logging.Err(err))
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	sim, err := newSimulation(cfg, log, simOptions{
		metrics:    metrics,
		simMetrics: simMetrics,
		publisher:  publisher,
	})
	if err != nil {
		return err
	}

	server, hs := rpc.NewServer(rpc.ServerConfig{
		Console:    rpc.NewConsoleService(sim.interp, sim.store, log),
		Telemetry:  rpc.NewTelemetryService(sim.store, log, rpc.WithTelemetryClock(sim.clock.Now)),
		Metrics:    metrics,
		Log:        log,
		Reflection: true,
	})

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting gRPC server", logging.String("addr", lis.Addr().String()))
		serveErr <- server.Serve(lis)
	}()

	metricsSrv := serveMetrics(ctx, cfg.MetricsAddr, metrics, log)

	clockCtx, stopClock := context.WithCancel(ctx)
	clockDone := sim.start(clockCtx)

	select {
	case <-ctx.Done():
	case err = <-serveErr:
		log.Error(ctx, "gRPC server exited", logging.Err(err))
	}

	log.Info(context.Background(), "shutting down")
	hs.Shutdown()
	stopClock()
	<-clockDone

	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		server.Stop()
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func serveMetrics(ctx context.Context, addr string, collector *observability.Collector, log logging.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(ctx, "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(ctx, "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
