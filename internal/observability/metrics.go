package observability

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gonum.org/v1/gonum/stat"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/mission-control/model"
)

// Collector bundles the Prometheus metrics for the command console, the
// fleet and the gRPC surface.
type Collector struct {
	gatherer prometheus.Gatherer

	RPCRequests  *prometheus.CounterVec
	RPCDurations *prometheus.HistogramVec

	Commands         *prometheus.CounterVec
	CommandDurations *prometheus.HistogramVec
	CommandsInFlight prometheus.Gauge

	FleetSatellites        prometheus.Gauge
	FleetActiveSatellites  prometheus.Gauge
	FleetExecutingMissions prometheus.Gauge
	FleetAveragePower      prometheus.Gauge
}

// NewCollector registers metrics against reg, defaulting to the global
// Prometheus registry when nil. Registering twice against the same
// registry reuses the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.RPCRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mc_rpc_requests_total",
		Help: "Total number of handled RPCs, labeled by service, method, and gRPC status code.",
	}, []string{"service", "method", "code"}), "mc_rpc_requests_total"); err != nil {
		return nil, err
	}
	if c.RPCDurations, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mc_rpc_request_duration_seconds",
		Help:    "RPC latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"service", "method"}), "mc_rpc_request_duration_seconds"); err != nil {
		return nil, err
	}

	if c.Commands, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mc_commands_total",
		Help: "Console commands that reached a terminal status, labeled by keyword and status.",
	}, []string{"command", "status"}), "mc_commands_total"); err != nil {
		return nil, err
	}
	if c.CommandDurations, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mc_command_duration_seconds",
		Help:    "Console command execution time in seconds, including simulated latency.",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 1.5, 2, 3, 5, 10},
	}, []string{"command"}), "mc_command_duration_seconds"); err != nil {
		return nil, err
	}
	if c.CommandsInFlight, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mc_commands_inflight",
		Help: "Console commands currently executing.",
	}), "mc_commands_inflight"); err != nil {
		return nil, err
	}

	if c.FleetSatellites, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mc_fleet_satellites",
		Help: "Satellites in the fleet.",
	}), "mc_fleet_satellites"); err != nil {
		return nil, err
	}
	if c.FleetActiveSatellites, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mc_fleet_active_satellites",
		Help: "Satellites with status active.",
	}), "mc_fleet_active_satellites"); err != nil {
		return nil, err
	}
	if c.FleetExecutingMissions, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mc_fleet_executing_missions",
		Help: "Missions with status executing.",
	}), "mc_fleet_executing_missions"); err != nil {
		return nil, err
	}
	if c.FleetAveragePower, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mc_fleet_average_power_percent",
		Help: "Mean power level across the fleet, 0 when empty.",
	}), "mc_fleet_average_power_percent"); err != nil {
		return nil, err
	}

	return c, nil
}

// CommandStarted marks a command as in flight.
func (c *Collector) CommandStarted(string) {
	if c == nil || c.CommandsInFlight == nil {
		return
	}
	c.CommandsInFlight.Inc()
}

// CommandFinished records the outcome and duration of a command.
func (c *Collector) CommandFinished(keyword string, st model.CommandStatus, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.CommandsInFlight != nil {
		c.CommandsInFlight.Dec()
	}
	if c.Commands != nil {
		c.Commands.WithLabelValues(keyword, string(st)).Inc()
	}
	if c.CommandDurations != nil {
		c.CommandDurations.WithLabelValues(keyword).Observe(elapsed.Seconds())
	}
}

// ObserveFleet refreshes the fleet gauges from a snapshot.
func (c *Collector) ObserveFleet(sats []model.Satellite, missions []model.Mission) {
	if c == nil {
		return
	}
	active := 0
	power := make([]float64, 0, len(sats))
	for _, s := range sats {
		if s.Status == model.StatusActive {
			active++
		}
		power = append(power, s.Power)
	}
	executing := 0
	for _, m := range missions {
		if m.Status == model.MissionExecuting {
			executing++
		}
	}
	avg := 0.0
	if len(power) > 0 {
		avg = stat.Mean(power, nil)
	}

	c.FleetSatellites.Set(float64(len(sats)))
	c.FleetActiveSatellites.Set(float64(active))
	c.FleetExecutingMissions.Set(float64(executing))
	c.FleetAveragePower.Set(avg)
}

// UnaryServerInterceptor records request counts and durations for unary RPCs.
func (c *Collector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		if c == nil {
			return resp, err
		}

		fullMethod := ""
		if info != nil {
			fullMethod = info.FullMethod
		}
		service, method := SplitMethod(fullMethod)
		code := status.Code(err).String()

		if c.RPCRequests != nil {
			c.RPCRequests.WithLabelValues(service, method, code).Inc()
		}
		if c.RPCDurations != nil {
			c.RPCDurations.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
		}

		return resp, err
	}
}

// Gatherer returns the gatherer the collector registered against.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil || c.gatherer == nil {
		return prometheus.DefaultGatherer
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Gatherer(), promhttp.HandlerOpts{})
}

// SplitMethod parses a fully-qualified gRPC method name into service and method
// components. It tolerates empty strings and partial paths, returning
// "unknown"/"unknown" when parsing fails.
func SplitMethod(fullMethod string) (string, string) {
	if fullMethod == "" {
		return "unknown", "unknown"
	}
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 2 {
		return "unknown", "unknown"
	}
	service := parts[len(parts)-2]
	method := parts[len(parts)-1]
	if dot := strings.LastIndex(service, "."); dot >= 0 && dot+1 < len(service) {
		service = service[dot+1:]
	}
	if service == "" {
		service = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	return service, method
}

// register adds col to reg, returning the already-registered collector of
// the same type when there is one.
func register[T prometheus.Collector](reg prometheus.Registerer, col T, name string) (T, error) {
	if err := reg.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return col, nil
}
