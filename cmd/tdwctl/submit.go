package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tadweer/tadweer-site/types"
)

func newSubmitCmd(a *app) *cobra.Command {
	var input types.SuggestionCreate

	cmd := &cobra.Command{
		Use:   "submit <suggestion text>",
		Short: "Submit a suggestion and print its tracking code",
		Example: `  tdwctl submit "Please add opening hours to the contact page"
  tdwctl submit --category events --name Layla "Post the calendar a week earlier"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Suggestion = strings.Join(args, " ")

			tracker, err := a.tracker()
			if err != nil {
				return err
			}
			res, err := tracker.Submit(cmd.Context(), input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.MailtoURL != "" {
				fmt.Fprintln(out, "The suggestions service is unreachable. Send your suggestion by email instead:")
				fmt.Fprintln(out, res.MailtoURL)
				return nil
			}
			fmt.Fprintf(out, "Thank you! Your tracking code is %s\n", res.TrackingID)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "your name (default Anonymous)")
	cmd.Flags().StringVar(&input.Email, "email", "", "your email, if you want a reply")
	cmd.Flags().StringVar(&input.Category, "category", "", "suggestion category (default general)")
	cmd.Flags().StringVar(&input.PageURL, "page", "", "page the suggestion is about")
	return cmd
}
