package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/katydid-analysis/eggmatch/internal/stablematch"
	"github.com/katydid-analysis/eggmatch/internal/timematch"
)

func newTimesCommand() *cobra.Command {
	var events, refs []float64
	var tolerance float64
	var unique bool

	cmd := &cobra.Command{
		Use:         "times",
		Short:       "Pair each event time with the first reference time within tolerance",
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := timematch.Compare(events, refs, tolerance)
			if err != nil {
				return err
			}
			if unique {
				pairs = timematch.Unique(pairs)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, pairs.Len())
			for k := range pairs.Events {
				e, r := pairs.Events[k], pairs.References[k]
				rows = append(rows, []string{
					fmt.Sprint(e), fmt.Sprint(r),
					formatFloat(events[e]), formatFloat(refs[r]),
					formatFloat(math.Abs(events[e] - refs[r])),
				})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Event", "Reference", "Event time", "Reference time", "Diff"}, rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight}))
			fmt.Fprintf(out, "%d of %d events matched\n", pairs.Len(), len(events))
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&events, "events", nil, "Event times, comma separated")
	cmd.Flags().Float64SliceVar(&refs, "reference", nil, "Reference times, comma separated")
	cmd.Flags().Float64Var(&tolerance, "tolerance", timematch.DefaultTolerance, "Largest accepted difference (exclusive)")
	cmd.Flags().BoolVar(&unique, "unique", false, "Drop pairs whose reference was already used")
	return cmd
}

func newStableCommand() *cobra.Command {
	var proposers, acceptors []float64
	var tolerance float64
	var exclusive, strict, smallerProposes, showPrefs bool

	cmd := &cobra.Command{
		Use:         "stable",
		Short:       "Stable-match two sets of values under a tolerance",
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := stablematch.DefaultOptions(tolerance)
			if exclusive {
				opts.Bound = stablematch.Exclusive
			}
			if smallerProposes {
				opts.Orientation = stablematch.SmallerProposes
			}
			opts.RequireProposerMinority = strict

			res, err := stablematch.Match(proposers, acceptors, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showPrefs {
				if err := res.Preferences().Render(out); err != nil {
					return err
				}
			}

			pairs := res.Pairs()
			rows := make([][]string, 0, len(pairs))
			for _, p := range pairs {
				rows = append(rows, []string{
					fmt.Sprint(p.Proposer), fmt.Sprint(p.Acceptor),
					formatFloat(proposers[p.Proposer]), formatFloat(acceptors[p.Acceptor]),
					formatFloat(math.Abs(proposers[p.Proposer] - acceptors[p.Acceptor])),
				})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Proposer", "Acceptor", "Proposer value", "Acceptor value", "Diff"}, rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight}))
			fmt.Fprintf(out, "Unmatched proposers: %v\n", res.UnmatchedProposers())
			fmt.Fprintf(out, "Unmatched acceptors: %v\n", res.UnmatchedAcceptors())
			fmt.Fprintf(out, "%d proposals\n", res.Proposals)
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&proposers, "proposers", nil, "Proposer values, comma separated")
	cmd.Flags().Float64SliceVar(&acceptors, "acceptors", nil, "Acceptor values, comma separated")
	cmd.Flags().Float64Var(&tolerance, "tolerance", timematch.DefaultTolerance, "Largest accepted difference")
	cmd.Flags().BoolVar(&exclusive, "exclusive", false, "Require difference strictly below the tolerance")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when proposers outnumber acceptors")
	cmd.Flags().BoolVar(&smallerProposes, "smaller-proposes", false, "Let the smaller set propose")
	cmd.Flags().BoolVar(&showPrefs, "show-prefs", false, "Print both preference tables")
	return cmd
}
