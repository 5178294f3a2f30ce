package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/signalsfoundry/mission-control/model"
)

const (
	// EarthRadiusKm is the mean Earth radius used by every calculation in
	// this package (kilometres).
	EarthRadiusKm = 6371.0
	// EarthMu is the standard gravitational parameter of Earth (km³/s²).
	EarthMu = 398600.4418
)

// ErrInvalidGeometry is returned for non-physical inputs: non-finite
// numbers, or non-positive altitudes where an orbit is required.
var ErrInvalidGeometry = errors.New("invalid geometry")

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func checkPoint(name string, p model.GroundPoint) error {
	if !finite(p.Latitude, p.Longitude) {
		return fmt.Errorf("%w: %s coordinates must be finite", ErrInvalidGeometry, name)
	}
	return nil
}

func checkAltitude(alt float64) error {
	if !finite(alt) {
		return fmt.Errorf("%w: altitude must be finite", ErrInvalidGeometry)
	}
	if alt <= 0 {
		return fmt.Errorf("%w: altitude %.3f km must be positive", ErrInvalidGeometry, alt)
	}
	return nil
}

// WrapLongitude maps any longitude into [-180, 180).
func WrapLongitude(lon float64) float64 {
	m := math.Mod(lon+540, 360)
	if m < 0 {
		m += 360
	}
	return m - 180
}

// GreatCircleDistance returns the haversine distance between a and b in
// kilometres.
func GreatCircleDistance(a, b model.GroundPoint) (float64, error) {
	if err := checkPoint("first", a); err != nil {
		return 0, err
	}
	if err := checkPoint("second", b); err != nil {
		return 0, err
	}
	return haversine(a, b), nil
}

func haversine(a, b model.GroundPoint) float64 {
	lat1, lat2 := toRadians(a.Latitude), toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	// Rounding can push h just past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Azimuth returns the forward bearing from ground to the satellite's
// sub-point in degrees, 0 = north, within [0, 360).
func Azimuth(satellite, ground model.GroundPoint) (float64, error) {
	if err := checkPoint("satellite", satellite); err != nil {
		return 0, err
	}
	if err := checkPoint("ground", ground); err != nil {
		return 0, err
	}
	return bearing(ground, satellite), nil
}

func bearing(from, to model.GroundPoint) float64 {
	lat1 := toRadians(from.Latitude)
	lat2 := toRadians(to.Latitude)
	dLon := toRadians(to.Longitude - from.Longitude)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	az := math.Mod(toDegrees(math.Atan2(y, x))+360, 360)
	if az >= 360 {
		az = 0
	}
	return az
}

// Vec3 is an Earth-centred vector in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Norm()
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// SphericalToCartesian places a point at altitude alt (km) above the
// spherical Earth at the given latitude/longitude.
func SphericalToCartesian(p model.GroundPoint, alt float64) Vec3 {
	r := EarthRadiusKm + alt
	lat := toRadians(p.Latitude)
	lon := toRadians(p.Longitude)
	return Vec3{
		X: r * math.Cos(lat) * math.Cos(lon),
		Y: r * math.Cos(lat) * math.Sin(lon),
		Z: r * math.Sin(lat),
	}
}

// hasLineOfSight reports whether the segment p1-p2 clears the Earth sphere.
func hasLineOfSight(p1, p2 Vec3) bool {
	v := p2.Sub(p1)
	a := v.Dot(v)
	if a == 0 {
		return p1.Dot(p1) > EarthRadiusKm*EarthRadiusKm
	}

	// Closest point on the segment to the Earth's centre.
	t := -p1.Dot(v) / a
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := Vec3{X: p1.X + v.X*t, Y: p1.Y + v.Y*t, Z: p1.Z + v.Z*t}

	// Tolerate the observer sitting on the surface itself.
	const eps = 1e-6
	return closest.Dot(closest) >= EarthRadiusKm*EarthRadiusKm-eps
}

// ElevationDegrees returns the elevation of target as seen from observer,
// 0° = geometric horizon, 90° = overhead.
func ElevationDegrees(observer, target Vec3) float64 {
	v := target.Sub(observer)
	vNorm := v.Norm()
	r := observer.Norm()
	if vNorm == 0 || r == 0 {
		return 90
	}
	zenith := Vec3{X: observer.X / r, Y: observer.Y / r, Z: observer.Z / r}

	cosGamma := math.Max(-1, math.Min(1, v.Dot(zenith)/vNorm))
	return 90 - toDegrees(math.Acos(cosGamma))
}
