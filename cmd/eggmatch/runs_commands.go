package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/katydid-analysis/eggmatch/pkg/eggmatch"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(ctx, cmd, limit)
		},
	}
	runsCmd.PersistentFlags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")

	runsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(ctx, cmd, limit)
		},
	})
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc eggmatch.Service) error {
				if err := svc.DeleteRun(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
				return nil
			})
		},
	})
	return runsCmd
}

func listRuns(ctx *commandContext, cmd *cobra.Command, limit int) error {
	return ctx.withService(func(svc eggmatch.Service) error {
		runs, err := svc.Runs(limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded")
			return nil
		}
		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, []string{
				r.ID,
				humanize.Time(r.CreatedAt),
				string(r.Mode),
				formatFloat(r.Tolerance),
				formatCount(r.SeedCount),
				formatCount(r.Detection.Detected) + "/" + formatCount(r.Detection.Simulated),
				formatCount(r.Detection.Matched),
			})
		}
		fmt.Fprintln(out, renderTable(out, []string{"ID", "Created", "Mode", "Tolerance", "Seeds", "Detected", "Matched"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}))
		return nil
	})
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var showPairs bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc eggmatch.Service) error {
				rec, pairs, err := svc.Run(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %s\n", rec.ID)
				fmt.Fprintf(out, "Created:   %s (%s)\n", rec.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(rec.CreatedAt))
				fmt.Fprintf(out, "Mode:      %s, tolerance %s (%s)\n", rec.Mode, formatFloat(rec.Tolerance), rec.Bound)
				printDetection(cmd, &rec.Detection)

				if !showPairs {
					fmt.Fprintf(out, "%s matched pairs (use --pairs to list)\n", formatCount(len(pairs)))
					return nil
				}
				rows := make([][]string, 0, len(pairs))
				for _, p := range pairs {
					rows = append(rows, []string{
						p.Seed, fmt.Sprint(p.EggIndex), fmt.Sprint(p.PitchIndex),
						formatFloat(p.EggTime), formatFloat(p.PitchTime), formatFloat(p.Angle),
					})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Seed", "Egg", "Pitch", "Egg time", "Pitch time", "Angle"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&showPairs, "pairs", false, "List every matched pair")
	return cmd
}
