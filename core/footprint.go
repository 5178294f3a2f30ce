package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/mission-control/model"
)

// DefaultSensorAngleDeg is the full field of view assumed for imagers.
const DefaultSensorAngleDeg = 45.0

// Footprint is the ground area seen by a nadir-pointing sensor.
type Footprint struct {
	Radius     float64 `json:"radius"` // km
	Diameter   float64 `json:"diameter"`
	SwathWidth float64 `json:"swathWidth"`
	Area       float64 `json:"area"` // km²
	// GroundSampleDistance in metres, taken equal to the altitude in km.
	GroundSampleDistance float64 `json:"groundSampleDistance"`
}

// SensorFootprint returns the flat-Earth footprint of a sensor with the
// given full field-of-view angle.
func SensorFootprint(sat model.Satellite, sensorAngleDeg float64) (Footprint, error) {
	alt := sat.Position.Altitude
	if err := checkAltitude(alt); err != nil {
		return Footprint{}, err
	}
	if !finite(sensorAngleDeg) || sensorAngleDeg <= 0 || sensorAngleDeg >= 180 {
		return Footprint{}, fmt.Errorf("%w: sensor angle %.2f° outside (0, 180)", ErrInvalidGeometry, sensorAngleDeg)
	}

	radius := alt * math.Tan(toRadians(sensorAngleDeg/2))
	return Footprint{
		Radius:               radius,
		Diameter:             2 * radius,
		SwathWidth:           2 * radius,
		Area:                 math.Pi * radius * radius,
		GroundSampleDistance: alt,
	}, nil
}
