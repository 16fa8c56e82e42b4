package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/alfredjeanlab/listener/internal/follow"
	"github.com/alfredjeanlab/listener/internal/model"
	"github.com/alfredjeanlab/listener/internal/ui"
)

// maxDataWidth truncates event data in table output.
const maxDataWidth = 80

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printEventsJSON(w io.Writer, events []*model.Event) error {
	return printJSON(w, events)
}

func printEventsTable(w io.Writer, orgID string, events []*model.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintf(w, "no events for org %s\n", ui.RenderAccent(orgID))
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EVENT ID\tDATA")
	for _, ev := range events {
		fmt.Fprintf(tw, "%d\t%s\n", ev.EventID, truncate(string(ev.EventData), maxDataWidth))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	last := events[len(events)-1].EventID
	_, err := fmt.Fprintln(w, ui.RenderMuted(fmt.Sprintf("%d events, next: --after %d", len(events), last)))
	return err
}

func printEvents(w io.Writer, orgID string, events []*model.Event) error {
	if jsonOutput {
		return printEventsJSON(w, events)
	}
	return printEventsTable(w, orgID, events)
}

// printEventsJSONL writes the follow line format.
func printEventsJSONL(w io.Writer, orgID string, events []*model.Event) error {
	return follow.EncodeJSONL(w, orgID, events)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
