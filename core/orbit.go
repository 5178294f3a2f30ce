package core

import (
	"fmt"
	"math"
	"time"

	"github.com/signalsfoundry/mission-control/model"
)

// OrbitalVelocity returns the circular orbital speed in km/s at the given
// altitude.
func OrbitalVelocity(altitudeKm float64) (float64, error) {
	if err := checkAltitude(altitudeKm); err != nil {
		return 0, err
	}
	return math.Sqrt(EarthMu / (EarthRadiusKm + altitudeKm)), nil
}

// OrbitalPeriod returns the circular orbital period at the given altitude.
func OrbitalPeriod(altitudeKm float64) (time.Duration, error) {
	secs, err := orbitalPeriodSeconds(altitudeKm)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func orbitalPeriodSeconds(altitudeKm float64) (float64, error) {
	if err := checkAltitude(altitudeKm); err != nil {
		return 0, err
	}
	r := EarthRadiusKm + altitudeKm
	return 2 * math.Pi * math.Sqrt(r*r*r/EarthMu), nil
}

// TrackPoint is one sample of a ground track.
type TrackPoint struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Altitude  float64   `json:"altitude"`
	Timestamp time.Time `json:"timestamp"`
}

// MaxTrackSteps bounds the number of ground-track intervals.
const MaxTrackSteps = 1_000_000

const minTrackStep = time.Nanosecond

// GroundTrack samples steps+1 sub-satellite points over duration starting
// at start. Longitude advances at the orbital angular rate; latitude and
// altitude stay fixed. This is a display approximation, not propagation.
func GroundTrack(sat model.Satellite, duration time.Duration, steps int, start time.Time) ([]TrackPoint, error) {
	if steps <= 0 || steps > MaxTrackSteps {
		return nil, fmt.Errorf("%w: steps must be within [1, %d], got %d", ErrInvalidGeometry, MaxTrackSteps, steps)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidGeometry, duration)
	}
	// Each step must span at least minTrackStep so timestamps stay strictly
	// increasing once truncated to time.Duration.
	if duration < time.Duration(steps)*minTrackStep {
		return nil, fmt.Errorf("%w: duration %s too short for %d steps", ErrInvalidGeometry, duration, steps)
	}
	if err := checkPoint("satellite", sat.Position.Ground()); err != nil {
		return nil, err
	}
	period, err := orbitalPeriodSeconds(sat.Position.Altitude)
	if err != nil {
		return nil, err
	}

	angularVelocity := 2 * math.Pi / period // rad/s
	stepSecs := duration.Seconds() / float64(steps)

	track := make([]TrackPoint, 0, steps+1)
	for i := 0; i <= steps; i++ {
		elapsed := float64(i) * stepSecs
		deltaLon := toDegrees(angularVelocity * elapsed)
		track = append(track, TrackPoint{
			Latitude:  sat.Position.Latitude,
			Longitude: WrapLongitude(sat.Position.Longitude + deltaLon),
			Altitude:  sat.Position.Altitude,
			Timestamp: start.Add(time.Duration(elapsed * float64(time.Second))),
		})
	}
	return track, nil
}
