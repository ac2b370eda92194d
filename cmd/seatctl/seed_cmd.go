package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"seat-occupancy-backend/internal/apperr"
	"seat-occupancy-backend/internal/seating"
)

type seedOptions struct {
	Building string
	Floors   int
	PerFloor int
}

var sampleEmployees = []seating.EmployeeInput{
	{EmployeeNumber: "E1001", FirstName: "Ada", LastName: "Lovelace", BusinessGroup: "Engineering", Department: "Platform"},
	{EmployeeNumber: "E1002", FirstName: "Grace", LastName: "Hopper", BusinessGroup: "Engineering", Department: "Compilers"},
	{EmployeeNumber: "E1003", FirstName: "Alan", LastName: "Turing", BusinessGroup: "Research", Department: "Theory"},
	{EmployeeNumber: "E1004", FirstName: "Katherine", LastName: "Johnson", BusinessGroup: "Research", Department: "Orbital"},
	{EmployeeNumber: "E1005", FirstName: "Barbara", LastName: "Liskov", BusinessGroup: "Sales", Department: "Accounts"},
}

func newSeedCmd(root *rootOptions) *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create sample seats and employees and seat the employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Floors <= 0 || opts.PerFloor <= 0 {
				return fmt.Errorf("--floors and --per-floor must be positive")
			}
			ctx := cmd.Context()
			a, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			engine := a.Engine(nil)

			var seatIDs []string
			for floor := 1; floor <= opts.Floors; floor++ {
				for n := 1; n <= opts.PerFloor; n++ {
					id := fmt.Sprintf("%d-%02d", floor, n)
					_, err := engine.CreateSeat(ctx, seating.SeatInput{SeatID: id, Building: opts.Building, Floor: floor}, "seed")
					if err != nil && !apperr.Is(err, apperr.KindConflict) {
						return err
					}
					seatIDs = append(seatIDs, id)
				}
			}

			seated := 0
			for i, in := range sampleEmployees {
				emp, err := engine.CreateEmployee(ctx, in)
				if apperr.Is(err, apperr.KindConflict) {
					continue
				}
				if err != nil {
					return err
				}
				if i >= len(seatIDs) {
					continue
				}
				if _, err := engine.Assign(ctx, seatIDs[i], emp.ID, "seed"); err != nil && !apperr.Is(err, apperr.KindConflict) {
					return err
				}
				seated++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d seats in %s and seated %d employees\n", len(seatIDs), opts.Building, seated)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Building, "building", "HQ", "building name for the sample seats")
	cmd.Flags().IntVar(&opts.Floors, "floors", 2, "number of floors")
	cmd.Flags().IntVar(&opts.PerFloor, "per-floor", 4, "seats per floor")
	return cmd
}
