package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-softlimit/pkg/simulate"
)

func newSimulateCmd(a *app) *cobra.Command {
	var asJSON bool
	var tunables engineFlags
	cmd := &cobra.Command{
		Use:   "simulate <script.yaml>",
		Short: "Replay an edit script against rendered fields on a virtual clock",
		Long: `Render the script's fields into an in-memory page, run the counter engine
on a virtual clock and apply each scripted step (typing, pasting, editor
mounts, removals, clock advances), checking the counter after each.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tunables.apply(cmd.Flags(), &a.cfg); err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			script, err := simulate.ParseScript(data)
			if err != nil {
				return err
			}

			report, err := simulate.Run(cmd.Context(), script,
				simulate.WithLogger(a.logger),
				simulate.WithEngineConfig(a.cfg.EngineTunables()),
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "STEP\tAT\tACTION\tTARGET\tSTATE\tDISPLAY\tSTATUS\tRESULT")
				for _, o := range report.Outcomes {
					result := "ok"
					if o.Failure != "" {
						result = "FAIL " + o.Failure
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						o.Step, o.At, o.Action, dash(o.Target), dash(o.State), dash(o.Display), dash(o.Status), result)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			if len(report.Failures()) > 0 {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	tunables.register(cmd.Flags())
	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
