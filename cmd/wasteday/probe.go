package main

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wasteday/wasteday/pkg/detector"
	"github.com/wasteday/wasteday/pkg/window"
)

type probeOutput struct {
	Backend     string          `json:"backend"`
	Foreground  window.Snapshot `json:"foreground"`
	IdleSeconds uint64          `json:"idle_seconds"`
}

func newProbeCmd(opts *runOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Sample the foreground application and idle time once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			probe := detector.NewProbe(zerolog.Nop())
			out := probeOutput{
				Backend:     probe.Backend(),
				Foreground:  probe.SampleForeground(),
				IdleSeconds: probe.IdleSeconds(),
			}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
