package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"seat-occupancy-backend/internal/app"
)

type rootOptions struct {
	ConfigPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "seatctl",
		Short:         "Administer seat occupancy data from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "./config/config.yaml"
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", defaultPath, "path to the YAML config file")

	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newReportCmd(opts))
	cmd.AddCommand(newSeedCmd(opts))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// open builds the application for a single command run. CLI logs go to
// stderr so stdout stays machine readable.
func (o *rootOptions) open(ctx context.Context) (*app.App, error) {
	cfg, err := app.LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	a, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Log.SetOutput(os.Stderr)
	return a, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
