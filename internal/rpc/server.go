package rpc

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/signalsfoundry/mission-control/internal/logging"
	"github.com/signalsfoundry/mission-control/internal/observability"
)

// ServerConfig collects what NewServer wires together. Console and
// Telemetry are required; Metrics may be nil.
type ServerConfig struct {
	Console   ConsoleServer
	Telemetry TelemetryServer
	Metrics   *observability.Collector
	Log       logging.Logger

	// Reflection registers the server reflection service.
	Reflection bool
}

// NewServer builds a gRPC server with the console, telemetry and health
// services and the request-id, metrics and tracing interceptors. The
// returned health server reports SERVING for every registered service.
func NewServer(cfg ServerConfig, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	log := cfg.Log
	if log == nil {
		log = logging.Noop()
	}

	interceptors := []grpc.UnaryServerInterceptor{
		RequestIDUnaryServerInterceptor(log),
	}
	if cfg.Metrics != nil {
		interceptors = append(interceptors, cfg.Metrics.UnaryServerInterceptor())
	}
	interceptors = append(interceptors, TracingUnaryServerInterceptor())

	base := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors...),
	}
	server := grpc.NewServer(append(base, opts...)...)

	RegisterConsoleServer(server, cfg.Console)
	RegisterTelemetryServer(server, cfg.Telemetry)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ConsoleServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(TelemetryServiceName, healthpb.HealthCheckResponse_SERVING)

	if cfg.Reflection {
		reflection.Register(server)
	}
	return server, hs
}
