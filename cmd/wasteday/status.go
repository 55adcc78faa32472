package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wasteday/wasteday/internal/bootstrap"
	"github.com/wasteday/wasteday/internal/daemon"
	"github.com/wasteday/wasteday/pkg/detector"
)

func newStatusCmd(opts *runOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the agent is running and where its data lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				out := cmd.OutOrStdout()

				running, pid, err := daemon.New(a.cfg.Daemon.PIDFile).IsRunning()
				if err != nil {
					return fmt.Errorf("error checking agent status: %w", err)
				}
				if running {
					fmt.Fprintf(out, "Agent:          running (PID %d)\n", pid)
					fmt.Fprintf(out, "Web API:        http://%s\n", a.cfg.WebAddr())
				} else {
					fmt.Fprintln(out, "Agent:          not running")
				}

				_, hasRun, err := a.store.GetSetting(bootstrap.HasRunBeforeKey)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Database:       %s\n", a.store.Path())
				fmt.Fprintf(out, "Display server: %s\n", detector.DetectDisplayServer())
				fmt.Fprintf(out, "Has run before: %v\n", hasRun)
				return nil
			})
		},
	}
}
