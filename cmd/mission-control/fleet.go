package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/mission-control/core"
	"github.com/signalsfoundry/mission-control/fleet"
	"github.com/signalsfoundry/mission-control/model"
)

func newFleetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fleet",
		Short: "Print the default constellation and missions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now().UTC()
			return printFleet(cmd.OutOrStdout(), fleet.DefaultConstellation(now), fleet.DefaultMissions(now))
		},
	}
}

func printFleet(out io.Writer, sats []model.Satellite, missions []model.Mission) error {
	w := newTable(out)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tLAT\tLON\tALT (km)\tPERIOD (min)\tPOWER\tHEALTH")
	for _, s := range sats {
		period := "-"
		if p, err := core.OrbitalPeriod(s.Position.Altitude); err == nil {
			period = fmt.Sprintf("%.1f", p.Minutes())
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%.2f\t%.0f\t%s\t%.1f%%\t%.0f%%\n",
			s.ID, s.Name, s.Type, s.Status,
			s.Position.Latitude, s.Position.Longitude, s.Position.Altitude,
			period, s.Power, s.Health)
	}
	if len(missions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "MISSION\tTYPE\tSATELLITE\tTARGET\tSTATUS\tPROGRESS")
		for _, m := range missions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.0f%%\n", m.ID, m.Type, m.Satellite, m.Target, m.Status, m.Progress)
		}
	}
	return w.Flush()
}
