package core

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/mission-control/model"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestHasLineOfSight_NoObstruction(t *testing.T) {
	// Two satellites high and on the same side of Earth, separated in Y.
	posA := Vec3{X: 8000, Y: 0, Z: 0}
	posB := Vec3{X: 8000, Y: 1000, Z: 0}

	if !hasLineOfSight(posA, posB) {
		t.Errorf("expected LoS between two high satellites on same side of Earth")
	}
}

func TestHasLineOfSight_Obstructed(t *testing.T) {
	// Two points on opposite sides: the chord passes through the Earth.
	posA := Vec3{X: 7000, Y: 0, Z: 0}
	posB := Vec3{X: -7000, Y: 0, Z: 0}

	if hasLineOfSight(posA, posB) {
		t.Errorf("expected LoS to be blocked by Earth")
	}
}

func TestGreatCircleDistance(t *testing.T) {
	points := []model.GroundPoint{
		{Latitude: 0, Longitude: 0},
		{Latitude: 51.5, Longitude: -0.12},
		{Latitude: -33.9, Longitude: 151.2},
		{Latitude: 89.9, Longitude: 179.9},
	}
	for _, a := range points {
		d, err := GreatCircleDistance(a, a)
		if err != nil || d != 0 {
			t.Fatalf("d(%v,%v) = %v, %v; want 0", a, a, d, err)
		}
		for _, b := range points {
			ab, _ := GreatCircleDistance(a, b)
			ba, _ := GreatCircleDistance(b, a)
			if !approx(ab, ba, 1e-9) {
				t.Fatalf("distance not symmetric: %v vs %v", ab, ba)
			}
			if ab > math.Pi*EarthRadiusKm+1e-6 {
				t.Fatalf("distance %v exceeds half circumference", ab)
			}
		}
	}

	half, _ := GreatCircleDistance(model.GroundPoint{}, model.GroundPoint{Longitude: 180})
	if !approx(half, math.Pi*EarthRadiusKm, 1e-6) {
		t.Fatalf("antipodal distance %v, want %v", half, math.Pi*EarthRadiusKm)
	}

	wrapped, _ := GreatCircleDistance(model.GroundPoint{Longitude: 180}, model.GroundPoint{Longitude: -180})
	if !approx(wrapped, 0, 1e-6) {
		t.Fatalf("expected wrapped longitudes to coincide, got %v", wrapped)
	}

	if _, err := GreatCircleDistance(model.GroundPoint{Latitude: math.NaN()}, model.GroundPoint{}); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry for NaN input, got %v", err)
	}
}

func TestAzimuthCardinalDirections(t *testing.T) {
	ground := model.GroundPoint{}
	cases := []struct {
		sat  model.GroundPoint
		want float64
	}{
		{model.GroundPoint{Latitude: 10}, 0},
		{model.GroundPoint{Longitude: 10}, 90},
		{model.GroundPoint{Latitude: -10}, 180},
		{model.GroundPoint{Longitude: -10}, 270},
	}
	for _, tc := range cases {
		got, err := Azimuth(tc.sat, ground)
		if err != nil {
			t.Fatalf("Azimuth(%v): %v", tc.sat, err)
		}
		if got < 0 || got >= 360 {
			t.Fatalf("azimuth %v outside [0,360)", got)
		}
		if !approx(got, tc.want, 1e-9) {
			t.Fatalf("Azimuth(%v) = %v, want %v", tc.sat, got, tc.want)
		}
	}
}

func TestWrapAndNormalizeLongitude(t *testing.T) {
	cases := []struct {
		in, wrap, norm float64
	}{
		{0, 0, 0},
		{179.5, 179.5, 179.5},
		{180, -180, 180},
		{190, -170, -170},
		{-190, 170, 170},
		{540, -180, 180},
		{-180, -180, 180},
		{725, 5, 5},
	}
	for _, tc := range cases {
		if got := WrapLongitude(tc.in); !approx(got, tc.wrap, 1e-9) {
			t.Fatalf("WrapLongitude(%v) = %v, want %v", tc.in, got, tc.wrap)
		}
		if got := NormalizeLongitude(tc.in); !approx(got, tc.norm, 1e-9) {
			t.Fatalf("NormalizeLongitude(%v) = %v, want %v", tc.in, got, tc.norm)
		}
	}
}

func TestElevationDegrees(t *testing.T) {
	observer := SphericalToCartesian(model.GroundPoint{}, 0)
	overhead := SphericalToCartesian(model.GroundPoint{}, 500)
	if got := ElevationDegrees(observer, overhead); !approx(got, 90, 1e-6) {
		t.Fatalf("overhead elevation = %v, want 90", got)
	}
	opposite := SphericalToCartesian(model.GroundPoint{Longitude: 180}, 500)
	if got := ElevationDegrees(observer, opposite); got >= 0 {
		t.Fatalf("expected negative elevation for antipodal target, got %v", got)
	}
}
