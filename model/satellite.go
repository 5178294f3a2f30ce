package model

import "time"

// SatelliteType categorises a satellite by its primary role.
type SatelliteType string

const (
	SatelliteCrewed           SatelliteType = "crewed"
	SatelliteWeather          SatelliteType = "weather"
	SatelliteEarthObservation SatelliteType = "earth-observation"
	SatelliteNavigation       SatelliteType = "navigation"
	SatelliteCommunication    SatelliteType = "communication"
	SatelliteCustom           SatelliteType = "custom"
)

// Valid reports whether t is one of the known satellite types.
func (t SatelliteType) Valid() bool {
	switch t {
	case SatelliteCrewed, SatelliteWeather, SatelliteEarthObservation,
		SatelliteNavigation, SatelliteCommunication, SatelliteCustom:
		return true
	}
	return false
}

// SatelliteStatus is the operational state of a satellite.
type SatelliteStatus string

const (
	StatusDeploying SatelliteStatus = "deploying"
	StatusActive    SatelliteStatus = "active"
	StatusInactive  SatelliteStatus = "inactive"
)

// Valid reports whether s is a known status.
func (s SatelliteStatus) Valid() bool {
	return s == StatusDeploying || s == StatusActive || s == StatusInactive
}

// CanTransitionTo reports whether a satellite may move from s to next.
// Deploying may become active (one way); any status may become inactive.
func (s SatelliteStatus) CanTransitionTo(next SatelliteStatus) bool {
	if s == next {
		return true
	}
	switch next {
	case StatusInactive:
		return true
	case StatusActive:
		return s == StatusDeploying
	}
	return false
}

// Position is a geodetic sub-satellite point plus altitude.
type Position struct {
	Latitude  float64 `json:"lat"` // degrees
	Longitude float64 `json:"lon"` // degrees
	Altitude  float64 `json:"alt"` // km above mean Earth radius
}

// Ground drops the altitude component.
func (p Position) Ground() GroundPoint {
	return GroundPoint{Latitude: p.Latitude, Longitude: p.Longitude}
}

// GroundPoint is a location on the Earth's surface in degrees.
type GroundPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Target is a named ground location a satellite is pointed at.
type Target struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Name      string  `json:"name"`
}

// Satellite is a fleet member and its current simulated state.
type Satellite struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     SatelliteType   `json:"type"`
	Position Position        `json:"position"`
	Velocity float64         `json:"velocity"` // km/h ground-track speed
	Health   float64         `json:"health"`   // 0-100
	Power    float64         `json:"power"`    // 0-100
	DataRate float64         `json:"dataRate"` // Mbps
	Status   SatelliteStatus `json:"status"`

	// BatteryLife is the remaining battery endurance in hours.
	BatteryLife float64 `json:"batteryLife,omitempty"`

	Mission     string    `json:"mission,omitempty"`
	Target      *Target   `json:"target,omitempty"`
	LastContact time.Time `json:"lastContact"`
	DeployedAt  time.Time `json:"deployedAt,omitempty"`
}

// Clone returns a deep copy of s.
func (s Satellite) Clone() Satellite {
	if s.Target != nil {
		t := *s.Target
		s.Target = &t
	}
	return s
}

// CanImage reports whether the satellite type supports imaging missions.
func (s Satellite) CanImage() bool {
	return s.Type == SatelliteEarthObservation || s.Type == SatelliteCustom
}
