package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/signalsfoundry/mission-control/internal/logging"
	"github.com/signalsfoundry/mission-control/model"
)

// FleetState is the subset of the fleet container the engine drives.
type FleetState interface {
	Satellites() []model.Satellite
	Missions() []model.Mission
	UpdateSatellite(id string, fn func(*model.Satellite)) error
	CompleteDeployment(id string) error
	SetMissionProgress(id string, progress float64) error
}

// DefaultDeployDelay is how long a satellite stays in deploying.
const DefaultDeployDelay = 3 * time.Second

// SimulationEngine perturbs fleet state once per tick: motion, power and
// data-rate jitter, deployment completion and mission progress.
type SimulationEngine struct {
	Fleet       FleetState
	Motion      MotionModel
	Rand        RandSource
	DeployDelay time.Duration

	// Power jitter is clamped to this band, as on the dashboard.
	MinPower, MaxPower float64

	log logging.Logger

	mu            sync.Mutex
	tick          int
	tickListeners []func(int)
}

// NewSimulationEngine wires an engine with the dashboard defaults.
func NewSimulationEngine(fleet FleetState, rnd RandSource, log logging.Logger) *SimulationEngine {
	if rnd == nil {
		rnd = DefaultRand
	}
	if log == nil {
		log = logging.Noop()
	}
	return &SimulationEngine{
		Fleet:       fleet,
		Motion:      NewDriftMotionModel(),
		Rand:        rnd,
		DeployDelay: DefaultDeployDelay,
		MinPower:    70,
		MaxPower:    100,
		log:         log,
	}
}

// RegisterTickListener adds fn to the listeners notified after each Step.
func (se *SimulationEngine) RegisterTickListener(fn func(int)) {
	se.mu.Lock()
	defer se.mu.Unlock()
	se.tickListeners = append(se.tickListeners, fn)
}

// Step advances the fleet to simTime. Errors from individual satellites or
// missions are joined; the tick still runs for the rest of the fleet.
func (se *SimulationEngine) Step(simTime time.Time) error {
	var errs []error

	for _, sat := range se.Fleet.Satellites() {
		if err := se.Fleet.UpdateSatellite(sat.ID, func(s *model.Satellite) {
			se.perturb(simTime, s)
		}); err != nil {
			errs = append(errs, fmt.Errorf("satellite %s: %w", sat.ID, err))
			continue
		}
		if sat.Status == model.StatusDeploying && se.deployed(sat, simTime) {
			if err := se.Fleet.CompleteDeployment(sat.ID); err != nil {
				errs = append(errs, fmt.Errorf("deploy %s: %w", sat.ID, err))
			}
		}
	}

	for _, m := range se.Fleet.Missions() {
		progress, ok := missionProgress(m, simTime)
		if !ok {
			continue
		}
		if err := se.Fleet.SetMissionProgress(m.ID, progress); err != nil {
			errs = append(errs, fmt.Errorf("mission %s: %w", m.ID, err))
		}
	}

	se.mu.Lock()
	tick := se.tick
	se.tick++
	listeners := append([]func(int){}, se.tickListeners...)
	se.mu.Unlock()

	for _, fn := range listeners {
		fn(tick)
	}

	err := errors.Join(errs...)
	if err != nil {
		se.log.Debug(context.Background(), "simulation tick completed with errors",
			logging.Int("tick", tick),
			logging.Err(err),
		)
	}
	return err
}

func (se *SimulationEngine) perturb(simTime time.Time, s *model.Satellite) {
	if se.Motion != nil {
		se.Motion.UpdatePosition(simTime, s)
	}
	s.Power = Clamp(s.Power+(se.Rand.Float64()-0.5)*2, se.MinPower, se.MaxPower)
	s.DataRate = max(0, s.DataRate+(se.Rand.Float64()-0.5)*10)
	s.LastContact = simTime
}

func (se *SimulationEngine) deployed(s model.Satellite, simTime time.Time) bool {
	if s.DeployedAt.IsZero() {
		return true
	}
	return !simTime.Before(s.DeployedAt.Add(se.DeployDelay))
}

// missionProgress returns the linear progress of an executing mission
// with a known completion estimate. Progress never moves backwards.
func missionProgress(m model.Mission, simTime time.Time) (float64, bool) {
	if m.Status != model.MissionExecuting || m.EstimatedCompletion == nil {
		return 0, false
	}
	total := m.EstimatedCompletion.Sub(m.StartTime)
	if total <= 0 {
		return 100, true
	}
	elapsed := simTime.Sub(m.StartTime)
	p := Clamp(100*elapsed.Seconds()/total.Seconds(), 0, 100)
	if p <= m.Progress {
		return 0, false
	}
	return p, true
}
