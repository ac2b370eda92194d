package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"seat-occupancy-backend/internal/mapping"
)

type importOptions struct {
	Columns []string
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <file> [--map \"Column Label=field\"]...",
		Short: "Reconcile a seating plan spreadsheet (.xlsx or .csv) into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseColumns(opts.Columns)
			if err != nil {
				return err
			}

			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Importer.ImportPath(cmd.Context(), args[0], m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "imported %s: %d succeeded, %d failed, %d conflicts, %d skipped\n",
				args[0], len(res.Succeeded), len(res.Failed), len(res.Conflicts), res.Skipped)
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringArrayVar(&opts.Columns, "map", nil, "column mapping as \"label=field\"; repeat per column (default: suggested mapping)")
	return cmd
}

// parseColumns turns repeated label=field flags into a mapping. No flags
// yields nil so the importer falls back to its suggestion.
func parseColumns(pairs []string) (mapping.Mapping, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	raw := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		label, field, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(label) == "" {
			return nil, errors.New("--map expects \"label=field\", got " + pair)
		}
		raw[strings.TrimSpace(label)] = strings.TrimSpace(field)
	}
	return mapping.Validate(raw)
}
