package observability

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/mission-control/internal/logging"
	"github.com/signalsfoundry/mission-control/model"
)

func TestUnaryInterceptorRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	interceptor := collector.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/missioncontrol.v1.Console/Execute"}

	_, err = interceptor(context.Background(), struct{}{}, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		time.Sleep(10 * time.Millisecond)
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("interceptor handler returned error: %v", err)
	}

	if got := testutil.ToFloat64(collector.RPCRequests.WithLabelValues("Console", "Execute", "OK")); got != 1 {
		t.Fatalf("mc_rpc_requests_total = %v, want 1", got)
	}

	if count := histogramSampleCount(t, reg, "mc_rpc_request_duration_seconds", map[string]string{
		"service": "Console",
		"method":  "Execute",
	}); count != 1 {
		t.Fatalf("mc_rpc_request_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestUnaryInterceptorRecordsErrorCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	interceptor := collector.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/missioncontrol.v1.Telemetry/Visibility"}

	_, _ = interceptor(context.Background(), struct{}{}, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.InvalidArgument, "boom")
	})

	if got := testutil.ToFloat64(collector.RPCRequests.WithLabelValues("Telemetry", "Visibility", "InvalidArgument")); got != 1 {
		t.Fatalf("mc_rpc_requests_total error label = %v, want 1", got)
	}
}

func TestCommandMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	collector.CommandStarted("status")
	collector.CommandStarted("getData")
	if got := testutil.ToFloat64(collector.CommandsInFlight); got != 2 {
		t.Fatalf("mc_commands_inflight = %v, want 2", got)
	}

	collector.CommandFinished("status", model.CommandSuccess, time.Millisecond)
	collector.CommandFinished("getData", model.CommandError, 2*time.Second)

	if got := testutil.ToFloat64(collector.CommandsInFlight); got != 0 {
		t.Fatalf("mc_commands_inflight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(collector.Commands.WithLabelValues("getData", "error")); got != 1 {
		t.Fatalf("mc_commands_total{getData,error} = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "mc_command_duration_seconds", map[string]string{"command": "status"}); count != 1 {
		t.Fatalf("mc_command_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestObserveFleet(t *testing.T) {
	collector, err := NewCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	collector.ObserveFleet(nil, nil)
	if got := testutil.ToFloat64(collector.FleetAveragePower); got != 0 {
		t.Fatalf("empty fleet average power = %v, want 0", got)
	}

	collector.ObserveFleet(
		[]model.Satellite{
			{ID: "A", Status: model.StatusActive, Power: 90},
			{ID: "B", Status: model.StatusDeploying, Power: 60},
		},
		[]model.Mission{{ID: "M", Status: model.MissionExecuting}, {ID: "N", Status: model.MissionFailed}},
	)
	if got := testutil.ToFloat64(collector.FleetSatellites); got != 2 {
		t.Fatalf("mc_fleet_satellites = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.FleetActiveSatellites); got != 1 {
		t.Fatalf("mc_fleet_active_satellites = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.FleetExecutingMissions); got != 1 {
		t.Fatalf("mc_fleet_executing_missions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.FleetAveragePower); got != 75 {
		t.Fatalf("mc_fleet_average_power_percent = %v, want 75", got)
	}
}

func TestNewCollectorReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("first NewCollector: %v", err)
	}
	second, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}
	second.Commands.WithLabelValues("status", "success").Inc()
	if got := testutil.ToFloat64(first.Commands.WithLabelValues("status", "success")); got != 1 {
		t.Fatalf("collectors should share the registered counter, got %v", got)
	}
}

func TestMetricsHandlerExposesGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	sim, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	collector.ObserveFleet([]model.Satellite{{Status: model.StatusActive, Power: 80}}, nil)
	collector.RPCRequests.WithLabelValues("svc", "method", "OK").Inc()
	collector.RPCDurations.WithLabelValues("svc", "method").Observe(0.01)
	collector.Commands.WithLabelValues("status", "success").Inc()
	sim.ObserveTick(time.Unix(1700000000, 0), time.Millisecond, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"mc_rpc_requests_total",
		"mc_rpc_request_duration_seconds",
		"mc_commands_total",
		"mc_fleet_satellites 1",
		"mc_fleet_average_power_percent 80",
		"mc_sim_ticks_total 1",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output:\n%s", metric, body)
		}
	}
}

func TestSimCollectorCountsErrors(t *testing.T) {
	sim, err := NewSimCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	sim.ObserveTick(time.Unix(10, 0), time.Millisecond, nil)
	sim.ObserveTick(time.Unix(11, 0), time.Millisecond, context.Canceled)

	if got := testutil.ToFloat64(sim.Ticks); got != 2 {
		t.Fatalf("ticks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(sim.TickErrors); got != 1 {
		t.Fatalf("tick errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sim.SimTime); got != 11 {
		t.Fatalf("sim time = %v, want 11", got)
	}
}

func TestSplitMethod(t *testing.T) {
	cases := map[string][2]string{
		"/missioncontrol.v1.Console/Execute": {"Console", "Execute"},
		"Console/Suggest":                    {"Console", "Suggest"},
		"":                                   {"unknown", "unknown"},
		"garbage":                            {"unknown", "unknown"},
	}
	for in, want := range cases {
		s, m := SplitMethod(in)
		if s != want[0] || m != want[1] {
			t.Fatalf("SplitMethod(%q) = %q,%q want %q,%q", in, s, m, want[0], want[1])
		}
	}
}

func TestInitTracingStdout(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), TracingConfig{
		Enabled:     true,
		Exporter:    "stdout",
		SampleRatio: 1,
		Writer:      &buf,
	}, logging.Noop())
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "command.status")
	span.End()
	ShutdownWithTimeout(context.Background(), shutdown, logging.Noop())

	if !strings.Contains(buf.String(), "command.status") {
		t.Fatalf("expected exported span in stdout exporter output, got %q", buf.String())
	}
}

func TestInitTracingRejectsBadConfig(t *testing.T) {
	if _, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "zipkin", SampleRatio: 1}, nil); err == nil {
		t.Fatalf("expected error for unsupported exporter")
	}
	if _, err := InitTracing(context.Background(), TracingConfig{Enabled: true, SampleRatio: 2}, nil); err == nil {
		t.Fatalf("expected error for sample ratio above 1")
	}
	shutdown, err := InitTracing(context.Background(), TracingConfig{}, nil)
	if err != nil || shutdown(context.Background()) != nil {
		t.Fatalf("disabled tracing should yield a noop shutdown, got %v", err)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
