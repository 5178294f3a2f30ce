package core

import (
	"time"

	"github.com/signalsfoundry/mission-control/model"
)

// MotionModel updates a satellite's position for a given simulation time.
type MotionModel interface {
	UpdatePosition(simTime time.Time, s *model.Satellite)
}

// StaticMotionModel leaves the satellite's position unchanged.
type StaticMotionModel struct{}

// UpdatePosition for static motion does nothing.
func (StaticMotionModel) UpdatePosition(time.Time, *model.Satellite) {}

// DefaultDriftFactor reproduces the dashboard's per-tick longitude drift.
const DefaultDriftFactor = 0.001

// DriftMotionModel advances longitude each tick by
// Factor·velocity/altitude degrees, holding latitude and altitude.
type DriftMotionModel struct {
	Factor float64
}

// NewDriftMotionModel returns a drift model using DefaultDriftFactor.
func NewDriftMotionModel() *DriftMotionModel {
	return &DriftMotionModel{Factor: DefaultDriftFactor}
}

// UpdatePosition moves s eastwards along its ground track.
func (m *DriftMotionModel) UpdatePosition(_ time.Time, s *model.Satellite) {
	if s == nil || s.Position.Altitude <= 0 {
		return
	}
	s.Position.Longitude = NormalizeLongitude(
		s.Position.Longitude + s.Velocity/s.Position.Altitude*m.Factor,
	)
}

// NormalizeLongitude maps lon into (-180, 180], the range stored on
// satellites.
func NormalizeLongitude(lon float64) float64 {
	w := WrapLongitude(lon)
	if w == -180 {
		return 180
	}
	return w
}
