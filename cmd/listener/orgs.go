package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/listener/internal/activity"
	"github.com/alfredjeanlab/listener/internal/ui"
)

var orgsCmd = &cobra.Command{
	Use:     "orgs",
	Short:   "List organizations the server has ingested for",
	GroupID: "events",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		within, _ := cmd.Flags().GetDuration("within")

		orgs, err := eventsClient.ListOrgs(cmd.Context(), within)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), orgs)
		}
		return printOrgsTable(cmd.OutOrStdout(), orgs, time.Now())
	},
}

func printOrgsTable(w io.Writer, orgs []activity.Entry, now time.Time) error {
	if len(orgs) == 0 {
		_, err := fmt.Fprintln(w, "no active organizations")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORG\tMESSAGES\tLAST SEEN\tSTATE")
	for _, o := range orgs {
		state := ui.RenderOK("active")
		if o.Idle {
			state = ui.RenderWarn("idle")
		}
		ago := now.Sub(o.LastSeen).Truncate(time.Second)
		fmt.Fprintf(tw, "%s\t%d\t%s ago\t%s\n", o.OrgID, o.MessageCount, ago, state)
	}
	return tw.Flush()
}

func init() {
	orgsCmd.Flags().Duration("within", 0, "only orgs active within this window (0 for all)")
}
