package main

import (
	"github.com/spf13/cobra"

	"seat-occupancy-backend/internal/report"
)

type occupancyReport struct {
	Summary         *report.Summary         `json:"summary"`
	ByBusinessGroup []report.GroupOccupancy `json:"byBusinessGroup"`
	ByFloor         []report.FloorOccupancy `json:"byFloor"`
}

func newReportCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print occupancy totals, per business group and per floor, as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var out occupancyReport
			if out.Summary, err = a.Reports.Summary(ctx); err != nil {
				return err
			}
			if out.ByBusinessGroup, err = a.Reports.ByBusinessGroup(ctx); err != nil {
				return err
			}
			if out.ByFloor, err = a.Reports.ByFloor(ctx); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}
