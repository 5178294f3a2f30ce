package core

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/signalsfoundry/mission-control/model"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func TestPowerProfileInvariants(t *testing.T) {
	sat := model.Satellite{Power: 92, Position: model.Position{Altitude: 408}}
	eclipses, err := PredictEclipses(sat, epoch, DefaultEclipseWindow)
	if err != nil {
		t.Fatalf("PredictEclipses: %v", err)
	}

	for _, hours := range []int{0, 1, 24, 72} {
		samples, err := PowerProfile(sat, eclipses, epoch, hours, rand.New(rand.NewPCG(1, 2)))
		if err != nil {
			t.Fatalf("PowerProfile(%d): %v", hours, err)
		}
		if len(samples) != hours {
			t.Fatalf("expected %d samples, got %d", hours, len(samples))
		}
		for i, s := range samples {
			if s.Hour != i {
				t.Fatalf("sample %d has hour %d", i, s.Hour)
			}
			if s.Power < 0 || s.Power > 100 {
				t.Fatalf("sample %d power %v outside [0,100]", i, s.Power)
			}
			if s.Eclipse != InEclipse(eclipses, s.Timestamp) {
				t.Fatalf("sample %d eclipse flag disagrees with eclipse list", i)
			}
			if !s.Timestamp.Equal(epoch.Add(time.Duration(i) * time.Hour)) {
				t.Fatalf("sample %d timestamp %v", i, s.Timestamp)
			}
		}
	}
}

func TestPowerProfileDeterministicWithSeed(t *testing.T) {
	sat := model.Satellite{Power: 75, Position: model.Position{Altitude: 705}}
	a, _ := PowerProfile(sat, nil, epoch, 24, rand.New(rand.NewPCG(7, 7)))
	b, _ := PowerProfile(sat, nil, epoch, 24, rand.New(rand.NewPCG(7, 7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs with identical seeds: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestPowerProfileModel(t *testing.T) {
	sat := model.Satellite{Power: 90}
	eclipses := []model.EclipsePeriod{{Start: epoch.Add(2 * time.Hour), End: epoch.Add(3 * time.Hour)}}

	samples, err := PowerProfile(sat, eclipses, epoch, 7, fixedRand(0.5))
	if err != nil {
		t.Fatalf("PowerProfile: %v", err)
	}
	want := []struct {
		power   float64
		eclipse bool
	}{
		{90, false},
		{90 + 15*math.Sin(math.Pi/12), false},
		{60, true},
		{60, true},
		{100, false},
		{90 + 15*math.Sin(5*math.Pi/12), false},
		{100, false},
	}
	for i, w := range want {
		if samples[i].Eclipse != w.eclipse || !approx(samples[i].Power, w.power, 1e-9) {
			t.Fatalf("hour %d = %+v, want power %v eclipse %v", i, samples[i], w.power, w.eclipse)
		}
	}

	// Eclipse power never drops below the battery floor before noise.
	low, _ := PowerProfile(model.Satellite{Power: 50}, eclipses, epoch, 3, fixedRand(0.5))
	if low[2].Power != 40 {
		t.Fatalf("eclipse floor = %v, want 40", low[2].Power)
	}

	// Zero power falls back to the nominal baseline.
	nominal, _ := PowerProfile(model.Satellite{}, nil, epoch, 1, fixedRand(0.5))
	if nominal[0].Power != 80 {
		t.Fatalf("baseline = %v, want 80", nominal[0].Power)
	}
}

func TestPowerProfileErrors(t *testing.T) {
	if _, err := PowerProfile(model.Satellite{Power: math.NaN()}, nil, epoch, 24, nil); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry for NaN power, got %v", err)
	}
	for _, hours := range []int{-1, MaxProfileHours + 1, math.MaxInt} {
		if _, err := PowerProfile(model.Satellite{Power: 80}, nil, epoch, hours, nil); !errors.Is(err, ErrInvalidGeometry) {
			t.Fatalf("hours %d: expected ErrInvalidGeometry, got %v", hours, err)
		}
	}
}

func TestSensorFootprint(t *testing.T) {
	fp, err := SensorFootprint(model.Satellite{Position: model.Position{Altitude: 500}}, 90)
	if err != nil {
		t.Fatalf("SensorFootprint: %v", err)
	}
	if !approx(fp.Radius, 500, 1e-9) || !approx(fp.Diameter, 1000, 1e-9) || !approx(fp.SwathWidth, 1000, 1e-9) {
		t.Fatalf("unexpected footprint %+v", fp)
	}
	if !approx(fp.Area, math.Pi*500*500, 1e-6) {
		t.Fatalf("area = %v", fp.Area)
	}

	def, _ := SensorFootprint(model.Satellite{Position: model.Position{Altitude: 705}}, DefaultSensorAngleDeg)
	if !approx(def.Radius, 705*math.Tan(22.5*math.Pi/180), 1e-9) {
		t.Fatalf("default radius = %v", def.Radius)
	}

	for _, angle := range []float64{0, -5, 180, math.NaN()} {
		if _, err := SensorFootprint(model.Satellite{Position: model.Position{Altitude: 500}}, angle); !errors.Is(err, ErrInvalidGeometry) {
			t.Fatalf("angle %v: expected ErrInvalidGeometry, got %v", angle, err)
		}
	}
	if _, err := SensorFootprint(model.Satellite{}, 45); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry for zero altitude, got %v", err)
	}
}

func TestSeededRandIsDeterministicAndConcurrent(t *testing.T) {
	a, b := NewSeededRand(42), NewSeededRand(42)
	for i := 0; i < 10; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
	}

	shared := NewSeededRand(1)
	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				if v := shared.Float64(); v < 0 || v >= 1 {
					t.Errorf("draw out of range: %v", v)
					return
				}
			}
		}()
	}
	for g := 0; g < 4; g++ {
		<-done
	}
}
