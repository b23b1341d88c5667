package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tadweer/tadweer-site/types"
)

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List every suggestion (admin)",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.adminClient()
			if err != nil {
				return err
			}
			all, err := client.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tSTATUS\tCATEGORY\tNAME\tSUBMITTED\tSUGGESTION")
			for _, s := range all {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.TrackingID, s.Status, s.Category, s.Name,
					s.CreatedAt.Local().Format(time.DateTime), truncate(s.Suggestion, 60))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON records")
	return cmd
}

func newSetStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <new|reviewing|implemented|declined>",
		Short: "Change the status of a suggestion (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := types.SuggestionStatus(args[1])
			if !status.IsValid() {
				return fmt.Errorf("invalid status %q", args[1])
			}

			client, err := a.adminClient()
			if err != nil {
				return err
			}
			if err := client.UpdateStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], status)
			return nil
		},
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
