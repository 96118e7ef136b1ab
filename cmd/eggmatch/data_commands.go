package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katydid-analysis/eggmatch/internal/quarantine"
	"github.com/katydid-analysis/eggmatch/internal/seed"
	"github.com/katydid-analysis/eggmatch/pkg/eggmatch"
)

func newSeedsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seeds [dir]",
		Short: "List the seeds found in a directory, or pair the configured data directories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				found, err := seed.FromDir(args[0])
				if err != nil {
					return err
				}
				for _, s := range seed.Keys(found) {
					fmt.Fprintln(out, s)
				}
				return nil
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			eggs, err := seed.FromDir(cfg.Paths.EggDir)
			if err != nil {
				return err
			}
			pitches, err := seed.FromDir(cfg.Paths.PitchDir)
			if err != nil {
				return err
			}
			p := seed.Pair(seed.Keys(eggs), seed.Keys(pitches))

			var rows [][]string
			for _, s := range p.Both {
				rows = append(rows, []string{s, "yes", "yes"})
			}
			for _, s := range p.EggOnly {
				rows = append(rows, []string{s, "yes", "no"})
			}
			for _, s := range p.PitchOnly {
				rows = append(rows, []string{s, "no", "yes"})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Seed", "Egg", "Pitch"}, rows, nil))
			return nil
		},
	}
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var remove, label, report bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate egg exports and deal with invalid seeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			policy, err := quarantine.ParsePolicy(cfg.Quarantine.Policy)
			if err != nil {
				return err
			}
			switch {
			case remove:
				policy = quarantine.Remove
			case label:
				policy = quarantine.Label
			case report:
				policy = quarantine.Report
			}

			return ctx.withService(func(svc eggmatch.Service) error {
				res, err := svc.Check(cmd.Context(), policy)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(res.Findings) == 0 {
					fmt.Fprintf(out, "All %s egg exports valid\n", formatCount(res.Checked))
					return nil
				}
				rows := make([][]string, 0, len(res.Findings))
				for _, f := range res.Findings {
					action := "reported"
					switch {
					case f.Removed:
						action = "removed"
					case len(f.Moved) > 0:
						action = "moved to " + cfg.Paths.QuarantineDir
					}
					rows = append(rows, []string{f.Seed, strings.Join(f.Problems, "; "), fmt.Sprint(len(f.Files)), action})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Seed", "Problems", "Files", "Action"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
				fmt.Fprintf(out, "%d of %s egg exports invalid\n", len(res.Findings), formatCount(res.Checked))
				return nil
			}, eggmatch.WithDBPath(""))
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Delete every file of an invalid seed")
	cmd.Flags().BoolVar(&label, "label", false, "Move every file of an invalid seed into the quarantine directory")
	cmd.Flags().BoolVar(&report, "report", false, "Only report invalid seeds")
	cmd.MarkFlagsMutuallyExclusive("remove", "label", "report")
	return cmd
}

func newDetectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Report how many simulated events were reconstructed per seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc eggmatch.Service) error {
				det, err := svc.Detect(cmd.Context())
				if err != nil {
					return err
				}
				printDetection(cmd, det)
				return nil
			}, eggmatch.WithDBPath(""))
		},
	}
}

func printDetection(cmd *cobra.Command, det *eggmatch.Detection) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(det.Seeds)+1)
	for _, d := range det.Seeds {
		rows = append(rows, []string{
			d.Seed,
			formatCount(d.Detected),
			formatCount(d.Simulated),
			formatCount(d.Matched),
			formatPercent(d.Efficiency()),
		})
	}
	rows = append(rows, []string{
		"Total",
		formatCount(det.Detected),
		formatCount(det.Simulated),
		formatCount(det.Matched),
		formatPercent(det.Efficiency()),
	})
	fmt.Fprintln(out, renderTable(out, []string{"Seed", "Detected", "Simulated", "Matched", "Efficiency"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight}))
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string
	var tolerance float64
	var noRecord, noCheck bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Check, filter and record every seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []eggmatch.Option
			if modeFlag != "" {
				mode, err := eggmatch.ParseMode(modeFlag)
				if err != nil {
					return err
				}
				opts = append(opts, eggmatch.WithMode(mode))
			}
			if cmd.Flags().Changed("tolerance") {
				if !(tolerance > 0) {
					return errors.New("--tolerance must be positive")
				}
				opts = append(opts, eggmatch.WithTolerance(tolerance))
			}
			if noRecord {
				opts = append(opts, eggmatch.WithRecord(false), eggmatch.WithDBPath(""))
			}
			if noCheck {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				policy, err := quarantine.ParsePolicy(cfg.Quarantine.Policy)
				if err != nil {
					return err
				}
				opts = append(opts, eggmatch.WithQuarantinePolicy(policy, false))
			}

			return ctx.withService(func(svc eggmatch.Service) error {
				res, err := svc.Process(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(res.Invalid) > 0 {
					fmt.Fprintf(out, "Skipped invalid seeds: %s\n", strings.Join(res.Invalid, ", "))
				}
				printDetection(cmd, &res.Detection)
				if res.RunID != "" {
					fmt.Fprintf(out, "Recorded run %s\n", res.RunID)
				}
				return nil
			}, opts...)
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "", "Filter mode: first or stable (default from config)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Time tolerance in seconds (default from config)")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "Do not write the run to the ledger")
	cmd.Flags().BoolVar(&noCheck, "no-check", false, "Skip egg export validation")
	return cmd
}

func newHistCommand(ctx *commandContext) *cobra.Command {
	var binwidth float64
	var filtered bool

	cmd := &cobra.Command{
		Use:   "hist <field>",
		Short: "Histogram a candidate_tracks variable over all seeds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field := args[0]
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("binwidth") {
				binwidth = cfg.BinWidth(field)
			}
			if !(binwidth > 0) {
				return fmt.Errorf("no bin width configured for %s; pass --binwidth", field)
			}

			return ctx.withService(func(svc eggmatch.Service) error {
				h, err := svc.Histogram(cmd.Context(), field, binwidth, filtered)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(h.Counts))
				for i, n := range h.Counts {
					rows = append(rows, []string{formatFloat(h.Edges[i]), formatFloat(h.Edges[i+1]), formatCount(n)})
				}
				fmt.Fprintln(out, renderTable(out, []string{"From", "To", "Count"}, rows,
					[]columnAlignment{alignRight, alignRight, alignRight}))
				fmt.Fprintf(out, "%s values in %d bins\n", formatCount(h.Total()), len(h.Counts))
				return nil
			}, eggmatch.WithDBPath(""))
		},
	}

	cmd.Flags().Float64Var(&binwidth, "binwidth", 0, "Bin width (default from config)")
	cmd.Flags().BoolVar(&filtered, "filtered", false, "Only count tracks whose start time matches a pitch-angle time")
	return cmd
}

func newAcqCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "acq <seed>",
		Short: "Split a seed's tracks into acquisitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc eggmatch.Service) error {
				acqs, err := svc.Acquisitions(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(acqs))
				for i, a := range acqs {
					rows = append(rows, []string{
						fmt.Sprint(i),
						formatFloat(a.Start),
						formatFloat(a.End),
						formatCount(a.Tracks),
						formatCount(a.Events),
						formatCount(a.Pitch),
					})
				}
				fmt.Fprintln(out, renderTable(out, []string{"#", "Start", "End", "Tracks", "Events", "Pitch"}, rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}))
				return nil
			}, eggmatch.WithDBPath(""))
		},
	}
}
