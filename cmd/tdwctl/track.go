package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tadweer/tadweer-site/pkg/suggestions"
	"github.com/tadweer/tadweer-site/types"
)

func newTrackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "track <TDW-code>",
		Short:   "Show the status of a suggestion",
		Example: "  tdwctl track TDW-QW7RT9",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := a.tracker()
			if err != nil {
				return err
			}
			res, err := tracker.Track(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(res.Suggestions) == 0 {
				fmt.Fprintf(out, "No suggestion found for %s\n", args[0])
				return nil
			}
			if res.Source == suggestions.SourceLocal {
				fmt.Fprintln(out, "Showing your local history; the status may be out of date.")
			}
			printTracked(out, res.Suggestions)
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List the suggestions you submitted from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := a.tracker()
			if err != nil {
				return err
			}
			entries := tracker.History()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No submissions yet")
				return nil
			}
			printTracked(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

func printTracked(out io.Writer, entries []types.TrackedSuggestion) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tCATEGORY\tSTATUS\tSUBMITTED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.TrackingID, e.Category, e.Status, e.CreatedAt.Local().Format(time.DateTime))
	}
	_ = w.Flush()
}
