package core

import (
	"testing"
	"time"

	"github.com/signalsfoundry/mission-control/model"
)

func TestStaticMotionModel_NoChange(t *testing.T) {
	m := StaticMotionModel{}
	s := &model.Satellite{Position: model.Position{Latitude: 1, Longitude: 2, Altitude: 3}}

	t1 := time.Now().UTC()
	m.UpdatePosition(t1, s)
	if s.Position != (model.Position{Latitude: 1, Longitude: 2, Altitude: 3}) {
		t.Fatalf("static motion should not change position, got %#v", s.Position)
	}

	m.UpdatePosition(t1.Add(time.Hour), s)
	if s.Position != (model.Position{Latitude: 1, Longitude: 2, Altitude: 3}) {
		t.Fatalf("static motion should not change position after second update, got %#v", s.Position)
	}
}

func TestDriftMotionModel_AdvancesLongitude(t *testing.T) {
	m := NewDriftMotionModel()
	s := &model.Satellite{
		Velocity: 27600,
		Position: model.Position{Latitude: 51.6, Longitude: 10, Altitude: 400},
	}

	m.UpdatePosition(time.Now(), s)
	if !approx(s.Position.Longitude, 10+27600.0/400*DefaultDriftFactor, 1e-12) {
		t.Fatalf("unexpected longitude %v", s.Position.Longitude)
	}
	if s.Position.Latitude != 51.6 || s.Position.Altitude != 400 {
		t.Fatalf("drift should hold latitude and altitude, got %+v", s.Position)
	}
}

func TestDriftMotionModel_WrapsAtAntimeridian(t *testing.T) {
	m := &DriftMotionModel{Factor: 1}
	s := &model.Satellite{Velocity: 400, Position: model.Position{Longitude: 179.5, Altitude: 400}}

	m.UpdatePosition(time.Now(), s)
	if !approx(s.Position.Longitude, -179.5, 1e-9) {
		t.Fatalf("expected wrap to -179.5, got %v", s.Position.Longitude)
	}
	if s.Position.Longitude <= -180 || s.Position.Longitude > 180 {
		t.Fatalf("longitude %v outside (-180,180]", s.Position.Longitude)
	}
}

func TestDriftMotionModel_IgnoresGroundedSatellite(t *testing.T) {
	m := NewDriftMotionModel()
	s := &model.Satellite{Velocity: 1000, Position: model.Position{Longitude: 5}}
	m.UpdatePosition(time.Now(), s)
	if s.Position.Longitude != 5 {
		t.Fatalf("grounded satellite moved to %v", s.Position.Longitude)
	}
	m.UpdatePosition(time.Now(), nil)
}
