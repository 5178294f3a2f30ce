package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SimCollector exposes simulation-loop metrics.
type SimCollector struct {
	Ticks        prometheus.Counter
	TickErrors   prometheus.Counter
	TickDuration prometheus.Histogram
	SimTime      prometheus.Gauge
}

// NewSimCollector registers simulation metrics against reg.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &SimCollector{}
	var err error

	if c.Ticks, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mc_sim_ticks_total",
		Help: "Simulation ticks applied to the fleet.",
	}), "mc_sim_ticks_total"); err != nil {
		return nil, err
	}
	if c.TickErrors, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mc_sim_tick_errors_total",
		Help: "Simulation ticks that reported at least one error.",
	}), "mc_sim_tick_errors_total"); err != nil {
		return nil, err
	}
	if c.TickDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mc_sim_tick_duration_seconds",
		Help:    "Wall-clock time spent applying one simulation tick.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}), "mc_sim_tick_duration_seconds"); err != nil {
		return nil, err
	}
	if c.SimTime, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mc_sim_time_seconds",
		Help: "Current simulation time as a Unix timestamp.",
	}), "mc_sim_time_seconds"); err != nil {
		return nil, err
	}
	return c, nil
}

// ObserveTick records one tick applied at simTime.
func (c *SimCollector) ObserveTick(simTime time.Time, took time.Duration, err error) {
	if c == nil {
		return
	}
	c.Ticks.Inc()
	if err != nil {
		c.TickErrors.Inc()
	}
	c.TickDuration.Observe(took.Seconds())
	c.SimTime.Set(float64(simTime.UnixNano()) / 1e9)
}
