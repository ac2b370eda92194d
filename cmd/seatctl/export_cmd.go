package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write every seat and its occupant to an .xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer func() {
				if cerr := f.Close(); err == nil {
					err = cerr
				}
			}()

			if err := a.Importer.Export(cmd.Context(), f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported seats to %s\n", args[0])
			return nil
		},
	}
}
