package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:     "fetch <org-id>",
	Short:   "Fetch one page of an organization's events",
	GroupID: "events",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orgID := args[0]
		after, _ := cmd.Flags().GetInt64("after")
		max, _ := cmd.Flags().GetInt("max")
		jsonl, _ := cmd.Flags().GetBool("jsonl")
		if max < 0 {
			return fmt.Errorf("--max must not be negative")
		}

		events, err := eventsClient.ListEvents(cmd.Context(), orgID, after, max)
		if err != nil {
			return err
		}
		if jsonl {
			return printEventsJSONL(cmd.OutOrStdout(), orgID, events)
		}
		return printEvents(cmd.OutOrStdout(), orgID, events)
	},
}

func init() {
	fetchCmd.Flags().Int64("after", 0, "return events with ids greater than this")
	fetchCmd.Flags().Int("max", 100, "maximum number of events (maxEventsPerCall)")
	fetchCmd.Flags().Bool("jsonl", false, "one JSON line per event")
}
