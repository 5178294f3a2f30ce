package core

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/mission-control/model"
)

func TestOrbitalPeriodAndVelocityMonotonic(t *testing.T) {
	prevPeriod := time.Duration(0)
	prevVelocity := math.Inf(1)
	for alt := 100.0; alt <= 40000; alt += 350 {
		p, err := OrbitalPeriod(alt)
		if err != nil {
			t.Fatalf("OrbitalPeriod(%v): %v", alt, err)
		}
		v, err := OrbitalVelocity(alt)
		if err != nil {
			t.Fatalf("OrbitalVelocity(%v): %v", alt, err)
		}
		if p <= 0 || p <= prevPeriod {
			t.Fatalf("period not strictly increasing at %v km: %v after %v", alt, p, prevPeriod)
		}
		if v >= prevVelocity {
			t.Fatalf("velocity not strictly decreasing at %v km: %v after %v", alt, v, prevVelocity)
		}
		prevPeriod, prevVelocity = p, v
	}
}

func TestOrbitalPeriodISS(t *testing.T) {
	p, err := OrbitalPeriod(408)
	if err != nil {
		t.Fatalf("OrbitalPeriod: %v", err)
	}
	if p < 92*time.Minute || p > 93*time.Minute {
		t.Fatalf("ISS period = %v, want about 92.6 min", p)
	}
	v, _ := OrbitalVelocity(408)
	if !approx(v, 7.67, 0.01) {
		t.Fatalf("ISS velocity = %v km/s, want about 7.67", v)
	}
}

func TestOrbitRejectsInvalidAltitude(t *testing.T) {
	for _, alt := range []float64{0, -100, -7000, math.NaN(), math.Inf(1)} {
		if _, err := OrbitalPeriod(alt); !errors.Is(err, ErrInvalidGeometry) {
			t.Fatalf("OrbitalPeriod(%v): expected ErrInvalidGeometry, got %v", alt, err)
		}
		if _, err := OrbitalVelocity(alt); !errors.Is(err, ErrInvalidGeometry) {
			t.Fatalf("OrbitalVelocity(%v): expected ErrInvalidGeometry, got %v", alt, err)
		}
	}
}

func TestGroundTrack(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sat := model.Satellite{Position: model.Position{Latitude: 12, Longitude: 170, Altitude: 408}}

	const steps = 90
	track, err := GroundTrack(sat, 3*time.Hour, steps, start)
	if err != nil {
		t.Fatalf("GroundTrack: %v", err)
	}
	if len(track) != steps+1 {
		t.Fatalf("expected %d samples, got %d", steps+1, len(track))
	}
	if !track[0].Timestamp.Equal(start) || track[0].Longitude != 170 {
		t.Fatalf("first sample should be the current position at start, got %+v", track[0])
	}
	for i, p := range track {
		if p.Longitude < -180 || p.Longitude >= 180 {
			t.Fatalf("sample %d longitude %v outside [-180,180)", i, p.Longitude)
		}
		if p.Latitude != 12 || p.Altitude != 408 {
			t.Fatalf("sample %d changed latitude/altitude: %+v", i, p)
		}
		if i > 0 && !p.Timestamp.After(track[i-1].Timestamp) {
			t.Fatalf("timestamps not strictly increasing at %d", i)
		}
	}
	if !track[steps].Timestamp.Equal(start.Add(3 * time.Hour)) {
		t.Fatalf("last timestamp %v, want %v", track[steps].Timestamp, start.Add(3*time.Hour))
	}
}

func TestGroundTrackRejectsBadInput(t *testing.T) {
	good := model.Satellite{Position: model.Position{Altitude: 500}}
	cases := []struct {
		name     string
		sat      model.Satellite
		duration time.Duration
		steps    int
	}{
		{"zero steps", good, time.Hour, 0},
		{"negative duration", good, -time.Hour, 10},
		{"too short", good, 5 * time.Nanosecond, 10},
		{"too many steps", good, 1e6 * time.Second, MaxTrackSteps + 1},
		{"huge steps", good, 1e6 * time.Second, math.MaxInt},
		{"grounded", model.Satellite{}, time.Hour, 10},
		{"nan latitude", model.Satellite{Position: model.Position{Latitude: math.NaN(), Altitude: 500}}, time.Hour, 10},
	}
	for _, tc := range cases {
		if _, err := GroundTrack(tc.sat, tc.duration, tc.steps, time.Now()); !errors.Is(err, ErrInvalidGeometry) {
			t.Fatalf("%s: expected ErrInvalidGeometry, got %v", tc.name, err)
		}
	}
}
