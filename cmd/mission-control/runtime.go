package main

import (
	"context"
	"time"

	"github.com/signalsfoundry/mission-control/command"
	"github.com/signalsfoundry/mission-control/core"
	"github.com/signalsfoundry/mission-control/fleet"
	"github.com/signalsfoundry/mission-control/internal/config"
	"github.com/signalsfoundry/mission-control/internal/logging"
	"github.com/signalsfoundry/mission-control/internal/observability"
	"github.com/signalsfoundry/mission-control/internal/telemetry"
	"github.com/signalsfoundry/mission-control/model"
	"github.com/signalsfoundry/mission-control/timectrl"
)

const tickLogEvery = 60

// simulation is the in-process constellation shared by serve and the local
// console: a seeded fleet ticked by the sim clock, plus the interpreter
// that runs operator commands against it.
type simulation struct {
	clock  *timectrl.TimeController
	store  *fleet.Store
	engine *core.SimulationEngine
	interp *command.Interpreter
	log    logging.Logger
}

type simOptions struct {
	metrics    *observability.Collector
	simMetrics *observability.SimCollector
	// publisher receives fleet snapshots each tick and every finished
	// command record.
	publisher telemetry.Publisher
}

func newSimulation(cfg config.Config, log logging.Logger, opts simOptions) (*simulation, error) {
	clock := timectrl.NewTimeController(time.Now().UTC(), cfg.Sim.Tick, timectrl.ModeFor(cfg.Sim.Accelerated))

	store := fleet.NewStore(
		fleet.WithLogger(log),
		fleet.WithClock(clock.Now),
		fleet.WithFocusHook(func(sat model.Satellite) {
			log.Debug(context.Background(), "camera focused",
				logging.String("satellite_id", sat.ID),
				logging.Float64("lat", sat.Position.Latitude),
				logging.Float64("lon", sat.Position.Longitude),
			)
		}),
	)
	if err := store.Seed(clock.Now()); err != nil {
		return nil, err
	}

	rnd := randSource(cfg.Sim.Seed)
	engine := core.NewSimulationEngine(store, rnd, log)
	engine.RegisterTickListener(func(tick int) {
		if tick%tickLogEvery == 0 {
			log.Debug(context.Background(), "simulation tick",
				logging.Int("tick", tick),
				logging.Int("satellites", len(store.Satellites())),
			)
		}
	})

	interpOpts := []command.Option{
		command.WithLogger(log),
		command.WithClock(clock.Now),
		command.WithRand(rnd),
		command.WithLatency("getData", cfg.Latency.GetData),
		command.WithLatency("getPowerStatus", cfg.Latency.PowerStatus),
	}
	if opts.metrics != nil {
		interpOpts = append(interpOpts, command.WithRecorder(opts.metrics))
	}
	interp := command.NewInterpreter(interpOpts...)

	if opts.metrics != nil {
		opts.metrics.ObserveFleet(store.Satellites(), store.Missions())
		store.Subscribe(func(fleet.Event) {
			opts.metrics.ObserveFleet(store.Satellites(), store.Missions())
		})
	}
	var relay *telemetry.Relay
	if opts.publisher != nil {
		relay = telemetry.NewRelay(opts.publisher, store, log)
		interp.OnRecord(func(rec model.CommandRecord) {
			relay.Record(context.Background(), rec)
		})
	}

	clock.AddListener(func(now time.Time) {
		started := time.Now()
		err := engine.Step(now)
		opts.simMetrics.ObserveTick(now, time.Since(started), err)
		if relay != nil {
			relay.Tick(context.Background(), now)
		}
	})

	return &simulation{clock: clock, store: store, engine: engine, interp: interp, log: log}, nil
}

// start runs the sim clock until ctx is done. The returned channel closes
// when the clock has stopped.
func (s *simulation) start(ctx context.Context) <-chan struct{} {
	s.log.Info(ctx, "simulation clock started",
		logging.Duration("tick", s.clock.Tick),
		logging.Bool("accelerated", s.clock.Mode == timectrl.Accelerated),
	)
	return s.clock.StartContext(ctx, 0)
}

// randSource returns a deterministic generator for a non-zero seed.
func randSource(seed uint64) core.RandSource {
	if seed == 0 {
		return core.DefaultRand
	}
	return core.NewSeededRand(seed)
}
