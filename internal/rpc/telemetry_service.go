package rpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/mission-control/core"
	"github.com/signalsfoundry/mission-control/fleet"
	"github.com/signalsfoundry/mission-control/internal/logging"
	"github.com/signalsfoundry/mission-control/model"
)

const (
	defaultTrackDuration = time.Hour
	defaultTrackSteps    = 100
	defaultProfileHours  = 24
)

// SatelliteSource is the read side of the fleet.
type SatelliteSource interface {
	Satellites() []model.Satellite
}

// TelemetryService answers calculator queries about fleet satellites.
// Requests name the satellite with the "satellite" key, matched without
// regard to case.
type TelemetryService struct {
	fleet SatelliteSource
	now   func() time.Time
	rand  core.RandSource
	log   logging.Logger
}

// TelemetryOption customises a TelemetryService.
type TelemetryOption func(*TelemetryService)

// WithTelemetryClock overrides the instant calculations start from.
func WithTelemetryClock(now func() time.Time) TelemetryOption {
	return func(s *TelemetryService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTelemetryRand pins power-profile jitter.
func WithTelemetryRand(r core.RandSource) TelemetryOption {
	return func(s *TelemetryService) {
		if r != nil {
			s.rand = r
		}
	}
}

// NewTelemetryService builds the calculator service over src.
func NewTelemetryService(src SatelliteSource, log logging.Logger, opts ...TelemetryOption) *TelemetryService {
	if log == nil {
		log = logging.Noop()
	}
	s := &TelemetryService{fleet: src, now: time.Now, rand: core.DefaultRand, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TelemetryService) satellite(req request) (model.Satellite, error) {
	id := req.string("satellite")
	if id == "" {
		return model.Satellite{}, fmt.Errorf("%w: field \"satellite\" is required", errBadRequest)
	}
	for _, sat := range s.fleet.Satellites() {
		if strings.EqualFold(sat.ID, id) {
			return sat, nil
		}
	}
	return model.Satellite{}, fmt.Errorf("%w: %q", fleet.ErrSatelliteNotFound, id)
}

// GroundTrack samples the sub-satellite track. Optional keys:
// duration_seconds (3600) and steps (100).
func (s *TelemetryService) GroundTrack(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	sat, err := s.satellite(req)
	if err != nil {
		return nil, ToStatusError(err)
	}
	secs, err := req.number("duration_seconds", defaultTrackDuration.Seconds())
	if err != nil {
		return nil, ToStatusError(err)
	}
	steps, err := req.integer("steps", defaultTrackSteps)
	if err != nil {
		return nil, ToStatusError(err)
	}

	points, err := core.GroundTrack(sat, time.Duration(secs*float64(time.Second)), steps, s.now())
	if err != nil {
		return nil, s.fail(ctx, "ground track", sat.ID, err)
	}
	return respond(map[string]any{"satellite": sat.ID, "points": points})
}

// Visibility evaluates the satellite from a ground site. Required keys:
// lat and lon. Optional keys: min_elevation (10) and observer_alt_km (0).
// The response carries the spherical-horizon result plus the ellipsoidal
// look angles under "precise".
func (s *TelemetryService) Visibility(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	sat, err := s.satellite(req)
	if err != nil {
		return nil, ToStatusError(err)
	}
	if !req.has("lat") || !req.has("lon") {
		return nil, ToStatusError(fmt.Errorf("%w: fields \"lat\" and \"lon\" are required", errBadRequest))
	}
	lat, err := req.number("lat", 0)
	if err != nil {
		return nil, ToStatusError(err)
	}
	lon, err := req.number("lon", 0)
	if err != nil {
		return nil, ToStatusError(err)
	}
	minEl, err := req.number("min_elevation", core.DefaultMinElevationDeg)
	if err != nil {
		return nil, ToStatusError(err)
	}
	obsAlt, err := req.number("observer_alt_km", 0)
	if err != nil {
		return nil, ToStatusError(err)
	}

	ground := model.GroundPoint{Latitude: lat, Longitude: lon}
	vis, err := core.ComputeVisibility(sat.Position, ground, minEl)
	if err != nil {
		return nil, s.fail(ctx, "visibility", sat.ID, err)
	}
	precise, err := core.LookAngles(sat.Position, ground, obsAlt, s.now())
	if err != nil {
		return nil, s.fail(ctx, "look angles", sat.ID, err)
	}
	return respond(struct {
		core.Visibility
		Satellite string                 `json:"satellite"`
		Precise   core.TopocentricAngles `json:"precise"`
	}{vis, sat.ID, precise})
}

// PowerProfile predicts eclipses over the next day and the hourly power
// curve. Optional key: hours (24).
func (s *TelemetryService) PowerProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	sat, err := s.satellite(req)
	if err != nil {
		return nil, ToStatusError(err)
	}
	hours, err := req.integer("hours", defaultProfileHours)
	if err != nil {
		return nil, ToStatusError(err)
	}

	start := s.now()
	eclipses, err := core.PredictEclipses(sat, start, core.DefaultEclipseWindow)
	if err != nil {
		return nil, s.fail(ctx, "eclipses", sat.ID, err)
	}
	samples, err := core.PowerProfile(sat, eclipses, start, hours, s.rand)
	if err != nil {
		return nil, s.fail(ctx, "power profile", sat.ID, err)
	}
	return respond(map[string]any{
		"satellite": sat.ID,
		"eclipses":  eclipses,
		"samples":   samples,
	})
}

// Footprint returns the nadir sensor footprint. Optional key:
// sensor_angle (45).
func (s *TelemetryService) Footprint(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	sat, err := s.satellite(req)
	if err != nil {
		return nil, ToStatusError(err)
	}
	angle, err := req.number("sensor_angle", core.DefaultSensorAngleDeg)
	if err != nil {
		return nil, ToStatusError(err)
	}

	fp, err := core.SensorFootprint(sat, angle)
	if err != nil {
		return nil, s.fail(ctx, "footprint", sat.ID, err)
	}
	return respond(struct {
		core.Footprint
		Satellite string `json:"satellite"`
	}{fp, sat.ID})
}

func (s *TelemetryService) fail(ctx context.Context, what, satID string, err error) error {
	logging.FromContext(ctx, s.log).Debug(ctx, "calculation rejected",
		logging.String("calculation", what),
		logging.String("satellite_id", satID),
		logging.Err(err),
	)
	return ToStatusError(err)
}

func respond(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return out, nil
}
