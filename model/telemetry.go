package model

import "time"

// EclipsePeriod is one interval the satellite spends in Earth's shadow.
type EclipsePeriod struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
	Orbit    int           `json:"orbit"` // 1-based
}

// Contains reports whether t falls inside the period, bounds included.
func (e EclipsePeriod) Contains(t time.Time) bool {
	return !t.Before(e.Start) && !t.After(e.End)
}

// PowerSample is the predicted power level for one hour.
type PowerSample struct {
	Hour      int       `json:"hour"`
	Power     float64   `json:"power"`
	Eclipse   bool      `json:"eclipse"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalyticsKind discriminates the payload of an Analytics value.
type AnalyticsKind string

const (
	AnalyticsImagery AnalyticsKind = "satellite-image"
	AnalyticsPower   AnalyticsKind = "power-chart"
)

// ImageryResult is a simulated image product returned by getData.
type ImageryResult struct {
	Satellite  string    `json:"satellite"`
	Timestamp  time.Time `json:"timestamp"`
	Resolution string    `json:"resolution"`
	Coverage   string    `json:"coverage"`
	Bands      []string  `json:"bands"`
	CloudCover int       `json:"cloudCover"`
	Quality    string    `json:"quality"`
}

// PowerAnalysis is the result of getPowerStatus.
type PowerAnalysis struct {
	Satellite            string        `json:"satellite"`
	Samples              []PowerSample `json:"data"`
	CurrentPower         float64       `json:"currentPower"`
	BatteryHealth        float64       `json:"batteryHealth"`
	SolarPanelEfficiency float64       `json:"solarPanelEfficiency"`
	MeanPower            float64       `json:"meanPower"`
	MinPower             float64       `json:"minPower"`
	MaxPower             float64       `json:"maxPower"`
	EclipseHours         int           `json:"eclipseHours"`
}

// Analytics is the latest result shown on the analytics panel. Exactly one
// of Imagery or Power is set, matching Kind.
type Analytics struct {
	Kind    AnalyticsKind  `json:"type"`
	Imagery *ImageryResult `json:"imagery,omitempty"`
	Power   *PowerAnalysis `json:"power,omitempty"`
}
