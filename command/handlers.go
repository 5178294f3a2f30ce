package command

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/signalsfoundry/mission-control/core"
	"github.com/signalsfoundry/mission-control/model"
)

const (
	defaultImagingTarget = "User Defined Target"
	imagingDuration      = 30 * time.Minute
	powerProfileHours    = 24

	// DefaultGetDataLatency and DefaultPowerStatusLatency simulate
	// downlink and analysis time.
	DefaultGetDataLatency     = 2 * time.Second
	DefaultPowerStatusLatency = 1500 * time.Millisecond
)

var imageryBands = []string{"Visible", "NIR", "SWIR"}

// DefaultRegistry returns the built-in operator vocabulary.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, cmd := range []Command{
		{
			Keyword:     "track",
			Syntax:      "track <satellite>",
			Description: "Focus camera on specified satellite",
			Execute:     track,
		},
		{
			Keyword:     "taskImaging",
			Syntax:      "taskImaging <satellite> [target]",
			Description: "Start imaging mission for satellite",
			Execute:     taskImaging,
		},
		{
			Keyword:     "getData",
			Syntax:      "getData <satellite>",
			Description: "Retrieve latest data from satellite",
			Latency:     DefaultGetDataLatency,
			Execute:     getData,
		},
		{
			Keyword:     "getPowerStatus",
			Syntax:      "getPowerStatus <satellite>",
			Description: "Get power analysis and predictions",
			Latency:     DefaultPowerStatusLatency,
			Execute:     getPowerStatus,
		},
		{
			Keyword:     "status",
			Syntax:      "status",
			Description: "Show system status",
			Execute:     status,
		},
		{
			Keyword:     "help",
			Syntax:      "help [command]",
			Description: "Show available commands or help for specific command",
			Execute:     help,
		},
	} {
		if err := r.Register(cmd); err != nil {
			panic(err)
		}
	}
	return r
}

// findSatellite matches id against the fleet ignoring case.
func findSatellite(target Target, args []string) (model.Satellite, error) {
	if len(args) == 0 {
		return model.Satellite{}, errorf(ErrSatelliteNotFound, "No satellite specified")
	}
	id := args[0]
	for _, sat := range target.Satellites() {
		if strings.EqualFold(sat.ID, id) {
			return sat, nil
		}
	}
	return model.Satellite{}, errorf(ErrSatelliteNotFound, "Satellite '%s' not found", id)
}

func track(_ context.Context, c *Call) (string, error) {
	sat, err := findSatellite(c.Target, c.Args)
	if err != nil {
		return "", err
	}
	if err := c.Target.SelectSatellite(sat.ID); err != nil {
		return "", err
	}
	if f, ok := c.Target.(CameraFocuser); ok {
		f.FocusOn(sat)
	}
	return fmt.Sprintf("Now tracking %s (%s)", sat.Name, sat.ID), nil
}

func taskImaging(_ context.Context, c *Call) (string, error) {
	sat, err := findSatellite(c.Target, c.Args)
	if err != nil {
		return "", err
	}
	if !sat.CanImage() {
		return "", errorf(ErrUnsupportedCapability, "Satellite '%s' is not capable of imaging missions", sat.ID)
	}

	target := strings.Join(c.Args[1:], " ")
	if target == "" {
		target = defaultImagingTarget
	}

	eta := c.Now.Add(imagingDuration)
	mission := model.Mission{
		ID:                  newMissionID(),
		Type:                model.MissionImaging,
		Satellite:           sat.ID,
		Target:              target,
		Status:              model.MissionExecuting,
		Progress:            0,
		StartTime:           c.Now,
		EstimatedCompletion: &eta,
	}
	if err := c.Target.AddMission(mission); err != nil {
		return "", err
	}
	return fmt.Sprintf("Imaging mission started for %s. Target: %s", sat.Name, target), nil
}

func newMissionID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "IMG_" + strings.ToUpper(id[:8])
}

func getData(ctx context.Context, c *Call) (string, error) {
	sat, err := findSatellite(c.Target, c.Args)
	if err != nil {
		return "", err
	}
	if err := c.Wait(ctx); err != nil {
		return "", err
	}

	resolution := "30m/pixel"
	if sat.Type == model.SatelliteEarthObservation {
		resolution = "10m/pixel"
	}
	quality := "Good"
	if sat.Health > 90 {
		quality = "Excellent"
	}

	result := &model.ImageryResult{
		Satellite:  sat.Name,
		Timestamp:  c.Now,
		Resolution: resolution,
		Coverage:   "185km x 185km",
		Bands:      append([]string(nil), imageryBands...),
		CloudCover: int(math.Round(c.Rand.Float64() * 30)),
		Quality:    quality,
	}
	c.Target.SetAnalytics(model.Analytics{Kind: model.AnalyticsImagery, Imagery: result})

	return fmt.Sprintf("Data retrieved from %s. Quality: %s", sat.Name, quality), nil
}

func getPowerStatus(ctx context.Context, c *Call) (string, error) {
	sat, err := findSatellite(c.Target, c.Args)
	if err != nil {
		return "", err
	}
	if err := c.Wait(ctx); err != nil {
		return "", err
	}

	eclipses, err := core.PredictEclipses(sat, c.Now, core.DefaultEclipseWindow)
	if err != nil {
		return "", err
	}
	samples, err := core.PowerProfile(sat, eclipses, c.Now, powerProfileHours, c.Rand)
	if err != nil {
		return "", err
	}

	analysis := summarizePower(samples)
	analysis.Satellite = sat.Name
	analysis.CurrentPower = sat.Power
	analysis.BatteryHealth = sat.Health
	analysis.SolarPanelEfficiency = 85 + c.Rand.Float64()*10
	c.Target.SetAnalytics(model.Analytics{Kind: model.AnalyticsPower, Power: analysis})

	return fmt.Sprintf("Power analysis completed for %s. Current: %.1f%%", sat.Name, sat.Power), nil
}

func summarizePower(samples []model.PowerSample) *model.PowerAnalysis {
	out := &model.PowerAnalysis{Samples: samples}
	if len(samples) == 0 {
		return out
	}
	levels := make([]float64, len(samples))
	for i, s := range samples {
		levels[i] = s.Power
		if s.Eclipse {
			out.EclipseHours++
		}
	}
	out.MeanPower = stat.Mean(levels, nil)
	out.MinPower = floats.Min(levels)
	out.MaxPower = floats.Max(levels)
	return out
}

func status(_ context.Context, c *Call) (string, error) {
	sats := c.Target.Satellites()
	active := 0
	power := make([]float64, len(sats))
	for i, sat := range sats {
		if sat.Status == model.StatusActive {
			active++
		}
		power[i] = sat.Power
	}
	avg := 0.0
	if len(power) > 0 {
		avg = floats.Sum(power) / float64(len(power))
	}

	executing := 0
	for _, m := range c.Target.Missions() {
		if m.Status == model.MissionExecuting {
			executing++
		}
	}

	return fmt.Sprintf(`System Status: OPERATIONAL
Active Satellites: %d/%d
Average Power: %.1f%%
Active Missions: %d
Last Update: %s`, active, len(sats), avg, executing, c.Now.Format(time.TimeOnly)), nil
}

func help(_ context.Context, c *Call) (string, error) {
	if len(c.Args) > 0 {
		cmd, ok := c.Registry.Lookup(c.Args[0])
		if !ok {
			return "", errorf(ErrUnknownCommand, "Unknown command: %s", c.Args[0])
		}
		return fmt.Sprintf("%s\n%s\n\nExample: %s", cmd.Syntax, cmd.Description, cmd.Example()), nil
	}

	var b strings.Builder
	b.WriteString("Available DSL Commands:\n")
	for _, cmd := range c.Registry.Commands() {
		fmt.Fprintf(&b, "  %-25s - %s\n", cmd.Syntax, cmd.Description)
	}
	b.WriteString("\nType 'help <command>' for detailed information about a specific command.")
	return b.String(), nil
}
