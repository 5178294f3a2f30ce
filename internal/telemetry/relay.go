package telemetry

import (
	"context"
	"time"

	"github.com/signalsfoundry/mission-control/internal/logging"
	"github.com/signalsfoundry/mission-control/model"
)

// FleetSource is the read side of the fleet container.
type FleetSource interface {
	Satellites() []model.Satellite
	Missions() []model.Mission
}

// Relay adapts simulation ticks and interpreter records into publishes.
// Publish failures are logged and never stop the simulation.
type Relay struct {
	pub Publisher
	src FleetSource
	log logging.Logger
}

// NewRelay builds a relay; a nil publisher becomes NoopPublisher.
func NewRelay(pub Publisher, src FleetSource, log logging.Logger) *Relay {
	if pub == nil {
		pub = NoopPublisher{}
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Relay{pub: pub, src: src, log: log}
}

// Tick publishes the fleet as of simTime.
func (r *Relay) Tick(ctx context.Context, simTime time.Time) {
	snap := FleetSnapshot{
		SimTime:    simTime,
		Satellites: r.src.Satellites(),
		Missions:   r.src.Missions(),
	}
	if err := r.pub.PublishFleet(ctx, snap); err != nil {
		r.log.Debug(ctx, "fleet snapshot dropped", logging.Err(err))
	}
}

// Record publishes one terminal command record.
func (r *Relay) Record(ctx context.Context, rec model.CommandRecord) {
	if err := r.pub.PublishCommand(ctx, rec); err != nil {
		r.log.Debug(ctx, "command record dropped",
			logging.Uint64("record_id", rec.ID),
			logging.Err(err),
		)
	}
}
