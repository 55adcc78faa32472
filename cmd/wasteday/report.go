package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wasteday/wasteday/internal/reporter"
)

func newReportCmd(opts *runOptions) *cobra.Command {
	var period, format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise recorded time per session key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid format: %s (valid: text, json)", format)
			}

			return withApp(opts, func(a *app) error {
				rep := reporter.New(a.store, nil)
				report, err := rep.GenerateReport(period)
				if err != nil {
					return err
				}

				if format == "json" {
					out, err := rep.FormatReportJSON(report)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), out)
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), rep.FormatReportText(report))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", "day", "day, week or month")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "text or json")
	return cmd
}
