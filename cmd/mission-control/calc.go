package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/mission-control/core"
	"github.com/signalsfoundry/mission-control/model"
)

// position holds the satellite placement flags shared by calc subcommands.
type position struct {
	lat, lon, alt float64
}

func (p *position) bind(cmd *cobra.Command, defaultAlt float64) {
	f := cmd.Flags()
	f.Float64Var(&p.lat, "sat-lat", 0, "satellite sub-point latitude in degrees")
	f.Float64Var(&p.lon, "sat-lon", 0, "satellite sub-point longitude in degrees")
	f.Float64Var(&p.alt, "alt", defaultAlt, "satellite altitude in km")
}

func (p position) satellite() model.Satellite {
	return model.Satellite{
		ID:       "CALC",
		Position: model.Position{Latitude: p.lat, Longitude: p.lon, Altitude: p.alt},
		Power:    80,
	}
}

func newCalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Orbital and telemetry calculators",
	}
	cmd.AddCommand(
		newCalcPeriodCmd(),
		newCalcVelocityCmd(),
		newCalcFootprintCmd(),
		newCalcEclipsesCmd(),
		newCalcVisibilityCmd(),
		newCalcGroundTrackCmd(),
	)
	return cmd
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func newCalcPeriodCmd() *cobra.Command {
	var pos position
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Circular orbital period at an altitude",
		RunE: func(cmd *cobra.Command, _ []string) error {
			period, err := core.OrbitalPeriod(pos.alt)
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ALTITUDE (km)\tPERIOD\tPERIOD (min)")
			fmt.Fprintf(w, "%.1f\t%s\t%.2f\n", pos.alt, period.Round(time.Second), period.Minutes())
			return w.Flush()
		},
	}
	pos.bind(cmd, 408)
	return cmd
}

func newCalcVelocityCmd() *cobra.Command {
	var pos position
	cmd := &cobra.Command{
		Use:   "velocity",
		Short: "Circular orbital velocity at an altitude",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := core.OrbitalVelocity(pos.alt)
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ALTITUDE (km)\tVELOCITY (km/s)\tVELOCITY (km/h)")
			fmt.Fprintf(w, "%.1f\t%.3f\t%.0f\n", pos.alt, v, v*3600)
			return w.Flush()
		},
	}
	pos.bind(cmd, 408)
	return cmd
}

func newCalcFootprintCmd() *cobra.Command {
	var pos position
	var angle float64
	cmd := &cobra.Command{
		Use:   "footprint",
		Short: "Nadir sensor footprint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fp, err := core.SensorFootprint(pos.satellite(), angle)
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "RADIUS (km)\tSWATH (km)\tAREA (km²)\tGSD (m)")
			fmt.Fprintf(w, "%.2f\t%.2f\t%.0f\t%.1f\n", fp.Radius, fp.SwathWidth, fp.Area, fp.GroundSampleDistance)
			return w.Flush()
		},
	}
	pos.bind(cmd, 705)
	cmd.Flags().Float64Var(&angle, "angle", core.DefaultSensorAngleDeg, "sensor full field of view in degrees")
	return cmd
}

func newCalcEclipsesCmd() *cobra.Command {
	var pos position
	var window time.Duration
	var start string
	cmd := &cobra.Command{
		Use:   "eclipses",
		Short: "Predicted eclipse periods",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := parseStart(start)
			if err != nil {
				return err
			}
			eclipses, err := core.PredictEclipses(pos.satellite(), from, window)
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ORBIT\tSTART\tEND\tDURATION")
			for _, e := range eclipses {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.Orbit,
					e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339), e.Duration.Round(time.Second))
			}
			return w.Flush()
		},
	}
	pos.bind(cmd, 408)
	cmd.Flags().DurationVar(&window, "window", core.DefaultEclipseWindow, "prediction window")
	cmd.Flags().StringVar(&start, "start", "", "prediction start (RFC 3339); defaults to now")
	return cmd
}

func newCalcVisibilityCmd() *cobra.Command {
	var pos position
	var lat, lon, minEl, obsAlt float64
	var at string
	cmd := &cobra.Command{
		Use:   "visibility",
		Short: "Satellite visibility from a ground site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			when, err := parseStart(at)
			if err != nil {
				return err
			}
			sat := pos.satellite()
			ground := model.GroundPoint{Latitude: lat, Longitude: lon}
			vis, err := core.ComputeVisibility(sat.Position, ground, minEl)
			if err != nil {
				return err
			}
			precise, err := core.LookAngles(sat.Position, ground, obsAlt, when)
			if err != nil {
				return err
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "MODEL\tVISIBLE\tELEVATION (°)\tAZIMUTH (°)\tRANGE (km)")
			fmt.Fprintf(w, "spherical\t%t\t%.2f\t%.2f\t%.1f\n", vis.IsVisible, vis.Elevation, vis.Azimuth, vis.SlantRangeKm)
			fmt.Fprintf(w, "ellipsoidal\t%t\t%.2f\t%.2f\t%.1f\n", precise.Elevation >= minEl, precise.Elevation, precise.Azimuth, precise.RangeKm)
			fmt.Fprintf(w, "geometric\t%t\t%.2f\t%.2f\t%.1f\n", vis.LineOfSight && vis.GeometricElevation >= minEl, vis.GeometricElevation, vis.Azimuth, vis.SlantRangeKm)
			fmt.Fprintf(w, "\nmax elevation %.2f°, ground distance %.1f km, line of sight %t\n", vis.MaxElevation, vis.Distance, vis.LineOfSight)
			return w.Flush()
		},
	}
	pos.bind(cmd, 408)
	f := cmd.Flags()
	f.Float64Var(&lat, "lat", 0, "observer latitude in degrees")
	f.Float64Var(&lon, "lon", 0, "observer longitude in degrees")
	f.Float64Var(&minEl, "min-elevation", core.DefaultMinElevationDeg, "elevation mask in degrees")
	f.Float64Var(&obsAlt, "observer-alt", 0, "observer altitude in km")
	f.StringVar(&at, "at", "", "evaluation instant (RFC 3339); defaults to now")
	return cmd
}

func newCalcGroundTrackCmd() *cobra.Command {
	var pos position
	var duration time.Duration
	var steps int
	cmd := &cobra.Command{
		Use:   "groundtrack",
		Short: "Sampled ground track",
		RunE: func(cmd *cobra.Command, _ []string) error {
			track, err := core.GroundTrack(pos.satellite(), duration, steps, time.Now().UTC())
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "TIME\tLAT\tLON\tALT (km)")
			for _, p := range track {
				fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.1f\n", p.Timestamp.Format(time.TimeOnly), p.Latitude, p.Longitude, p.Altitude)
			}
			return w.Flush()
		},
	}
	pos.bind(cmd, 408)
	cmd.Flags().DurationVar(&duration, "duration", time.Hour, "track duration")
	cmd.Flags().IntVar(&steps, "steps", 10, "number of intervals to sample")
	return cmd
}

func parseStart(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
