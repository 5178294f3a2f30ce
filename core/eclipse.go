package core

import (
	"fmt"
	"math"
	"time"

	"github.com/signalsfoundry/mission-control/model"
)

// DefaultEclipseWindow is the prediction horizon used by the dashboard.
const DefaultEclipseWindow = 24 * time.Hour

// Shadow occupies this fraction of each orbit, measured from orbit start.
// It is a fixed approximation and ignores the real shadow geometry.
const (
	eclipseEntryFraction = 0.3
	eclipseExitFraction  = 0.7
)

// PredictEclipses returns one eclipse per whole orbit that fits in window,
// starting at start. Orbits are numbered from 1.
func PredictEclipses(sat model.Satellite, start time.Time, window time.Duration) ([]model.EclipsePeriod, error) {
	periodSecs, err := orbitalPeriodSeconds(sat.Position.Altitude)
	if err != nil {
		return nil, err
	}
	if window < 0 {
		return nil, fmt.Errorf("%w: negative prediction window %s", ErrInvalidGeometry, window)
	}

	orbits := int(math.Floor(window.Seconds() / periodSecs))
	period := time.Duration(periodSecs * float64(time.Second))
	entry := time.Duration(periodSecs * eclipseEntryFraction * float64(time.Second))
	exit := time.Duration(periodSecs * eclipseExitFraction * float64(time.Second))

	eclipses := make([]model.EclipsePeriod, 0, orbits)
	for orbit := 0; orbit < orbits; orbit++ {
		orbitStart := start.Add(time.Duration(orbit) * period)
		begin := orbitStart.Add(entry)
		end := orbitStart.Add(exit)
		eclipses = append(eclipses, model.EclipsePeriod{
			Start:    begin,
			End:      end,
			Duration: end.Sub(begin),
			Orbit:    orbit + 1,
		})
	}
	return eclipses, nil
}

// InEclipse reports whether t falls within any of the eclipses.
func InEclipse(eclipses []model.EclipsePeriod, t time.Time) bool {
	for _, e := range eclipses {
		if e.Contains(t) {
			return true
		}
	}
	return false
}
