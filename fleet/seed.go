package fleet

import (
	"errors"
	"time"

	"github.com/signalsfoundry/mission-control/model"
)

// DefaultConstellation returns the satellites shown on a fresh dashboard.
func DefaultConstellation(now time.Time) []model.Satellite {
	return []model.Satellite{
		{
			ID:          "ISS",
			Name:        "International Space Station",
			Type:        model.SatelliteCrewed,
			Position:    model.Position{Latitude: 25.7617, Longitude: -80.1918, Altitude: 408},
			Velocity:    27600,
			Status:      model.StatusActive,
			Health:      98,
			Power:       85.3,
			BatteryLife: 18.2,
			DataRate:    125.8,
			LastContact: now,
		},
		{
			ID:          "LANDSAT8",
			Name:        "Landsat 8",
			Type:        model.SatelliteEarthObservation,
			Position:    model.Position{Latitude: -15.7975, Longitude: 47.4737, Altitude: 705},
			Velocity:    24890,
			Status:      model.StatusActive,
			Health:      95,
			Power:       92.1,
			BatteryLife: 22.7,
			DataRate:    384.0,
			Mission:     string(model.MissionImaging),
			Target:      &model.Target{Latitude: -15.7975, Longitude: 47.4737, Name: "Madagascar Forest"},
			LastContact: now,
		},
		{
			ID:          "GOES16",
			Name:        "GOES-16",
			Type:        model.SatelliteWeather,
			Position:    model.Position{Latitude: 0, Longitude: -75.2, Altitude: 35786},
			Velocity:    11070,
			Status:      model.StatusActive,
			Health:      97,
			Power:       88.7,
			BatteryLife: 45.1,
			DataRate:    267.3,
			Mission:     string(model.MissionMonitoring),
			Target:      &model.Target{Latitude: 25.7617, Longitude: -80.1918, Name: "Hurricane Watch"},
			LastContact: now,
		},
		{
			ID:          "SENTINEL2A",
			Name:        "Sentinel-2A",
			Type:        model.SatelliteEarthObservation,
			Position:    model.Position{Latitude: 37.7749, Longitude: -122.4194, Altitude: 786},
			Velocity:    25200,
			Status:      model.StatusActive,
			Health:      94,
			Power:       91.2,
			BatteryLife: 19.8,
			DataRate:    520.0,
			LastContact: now,
		},
	}
}

// DefaultMissions returns the missions already running on a fresh
// dashboard. They reference DefaultConstellation satellites.
func DefaultMissions(now time.Time) []model.Mission {
	imagingDone := now.Add(15 * time.Minute)
	return []model.Mission{
		{
			ID:                  "IMG_001",
			Type:                model.MissionImaging,
			Satellite:           "LANDSAT8",
			Target:              "Madagascar Forest",
			Status:              model.MissionExecuting,
			Progress:            67,
			StartTime:           now.Add(-30 * time.Minute),
			EstimatedCompletion: &imagingDone,
		},
		{
			ID:        "MON_002",
			Type:      model.MissionMonitoring,
			Satellite: "GOES16",
			Target:    "Hurricane Watch",
			Status:    model.MissionExecuting,
			Progress:  100,
			StartTime: now.Add(-time.Hour),
		},
	}
}

// Seed loads the default constellation and missions into s.
func (s *Store) Seed(now time.Time) error {
	var errs []error
	for _, sat := range DefaultConstellation(now) {
		errs = append(errs, s.AddSatellite(sat))
	}
	for _, m := range DefaultMissions(now) {
		errs = append(errs, s.AddMission(m))
	}
	return errors.Join(errs...)
}
