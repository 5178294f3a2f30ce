package core

import (
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/mission-control/model"
)

// DefaultMinElevationDeg is the elevation mask used when callers have no
// site-specific value.
const DefaultMinElevationDeg = 10.0

// Visibility describes how a ground observer sees a satellite.
type Visibility struct {
	IsVisible    bool    `json:"isVisible"`
	Elevation    float64 `json:"elevation"`    // degrees
	MaxElevation float64 `json:"maxElevation"` // degrees
	Distance     float64 `json:"distance"`     // great-circle km between sub-point and observer
	Azimuth      float64 `json:"azimuth"`      // degrees, [0, 360)

	// SlantRangeKm is the straight-line range on a spherical Earth.
	SlantRangeKm float64 `json:"slantRange"`
	// LineOfSight is false when the Earth sphere blocks the straight path.
	LineOfSight bool `json:"lineOfSight"`
	// GeometricElevation is the vector elevation on the same sphere,
	// without the horizon approximation used for Elevation.
	GeometricElevation float64 `json:"geometricElevation"`
}

// ComputeVisibility evaluates the simplified spherical-horizon elevation of
// the satellite above the observer. IsVisible is set iff Elevation is at
// least minElevationDeg.
func ComputeVisibility(sat model.Position, ground model.GroundPoint, minElevationDeg float64) (Visibility, error) {
	if err := checkPoint("satellite", sat.Ground()); err != nil {
		return Visibility{}, err
	}
	if err := checkPoint("ground", ground); err != nil {
		return Visibility{}, err
	}
	if err := checkAltitude(sat.Altitude); err != nil {
		return Visibility{}, err
	}
	if !finite(minElevationDeg) {
		return Visibility{}, fmt.Errorf("%w: minimum elevation must be finite", ErrInvalidGeometry)
	}

	h := sat.Altitude
	d := haversine(sat.Ground(), ground)

	ratio := (h - EarthRadiusKm*(1-math.Cos(d/EarthRadiusKm))) / math.Sqrt(d*d+h*h)
	elevation := toDegrees(math.Asin(math.Max(-1, math.Min(1, ratio))))

	satVec := SphericalToCartesian(sat.Ground(), h)
	groundVec := SphericalToCartesian(ground, 0)

	return Visibility{
		IsVisible:          elevation >= minElevationDeg,
		Elevation:          elevation,
		MaxElevation:       toDegrees(math.Asin(h / (EarthRadiusKm + h))),
		Distance:           d,
		Azimuth:            bearing(ground, sat.Ground()),
		SlantRangeKm:       satVec.DistanceTo(groundVec),
		LineOfSight:        hasLineOfSight(groundVec, satVec),
		GeometricElevation: ElevationDegrees(groundVec, satVec),
	}, nil
}

// TopocentricAngles is a rigorous look angle from an observer to a
// satellite, on the WGS-72 ellipsoid used by go-satellite.
type TopocentricAngles struct {
	Azimuth   float64 `json:"azimuth"`   // degrees, [0, 360)
	Elevation float64 `json:"elevation"` // degrees
	RangeKm   float64 `json:"range"`
}

// LookAngles computes the topocentric azimuth, elevation and range from an
// observer at groundAltKm to the satellite at the given instant.
func LookAngles(sat model.Position, ground model.GroundPoint, groundAltKm float64, at time.Time) (TopocentricAngles, error) {
	if err := checkPoint("satellite", sat.Ground()); err != nil {
		return TopocentricAngles{}, err
	}
	if err := checkPoint("ground", ground); err != nil {
		return TopocentricAngles{}, err
	}
	if err := checkAltitude(sat.Altitude); err != nil {
		return TopocentricAngles{}, err
	}
	if !finite(groundAltKm) {
		return TopocentricAngles{}, fmt.Errorf("%w: observer altitude must be finite", ErrInvalidGeometry)
	}

	at = at.UTC()
	year, month, day := at.Date()
	hour, min, sec := at.Clock()
	jd := satellite.JDay(year, int(month), day, hour, min, sec)

	satCoords := satellite.LatLong{
		Latitude:  toRadians(sat.Latitude),
		Longitude: toRadians(sat.Longitude),
	}
	obsCoords := satellite.LatLong{
		Latitude:  toRadians(ground.Latitude),
		Longitude: toRadians(ground.Longitude),
	}

	satECI := satellite.LLAToECI(satCoords, sat.Altitude, jd)
	look := satellite.ECIToLookAngles(satECI, obsCoords, groundAltKm, jd)

	return TopocentricAngles{
		Azimuth:   math.Mod(toDegrees(look.Az)+360, 360),
		Elevation: toDegrees(look.El),
		RangeKm:   look.Rg,
	}, nil
}
