package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/listener/internal/events"
	"github.com/alfredjeanlab/listener/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:               "watch",
	Short:             "Stream listener activity from the event bus",
	GroupID:           "events",
	Args:              cobra.NoArgs,
	PersistentPreRunE: noClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats")
		topic, _ := cmd.Flags().GetString("topic")
		org, _ := cmd.Flags().GetString("org")
		buffer, _ := cmd.Flags().GetInt("buffer")
		if natsURL == "" {
			return fmt.Errorf("no NATS URL: pass --nats, set LISTENER_NATS_URL, or add one to the active remote")
		}
		if org != "" {
			topic = events.OrgEventsTopic(org)
		}

		sub, err := events.NewNATSSubscriber(natsURL, buffer,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				slog.Warn("nats disconnected", "err", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				slog.Info("nats reconnected")
			}),
		)
		if err != nil {
			return err
		}
		defer sub.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ch, err := sub.Subscribe(ctx, topic)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for n := range ch {
			printNotification(out, n)
		}
		return nil
	},
}

// printNotification writes the payload, prefixed by its subject unless
// --json asks for bare payloads.
func printNotification(w io.Writer, n events.Notification) {
	if jsonOutput {
		fmt.Fprintln(w, string(n.Data))
		return
	}
	fmt.Fprintf(w, "%s %s\n", ui.RenderMuted(n.Subject), n.Data)
}

func defaultNATSURL() string {
	if s := os.Getenv("LISTENER_NATS_URL"); s != "" {
		return s
	}
	return activeRemoteNATSURL()
}

func init() {
	watchCmd.Flags().String("nats", defaultNATSURL(), "NATS server URL")
	watchCmd.Flags().String("topic", "listener.>", "subject to subscribe to")
	watchCmd.Flags().String("org", "", "only forwarded events of this organization (overrides --topic)")
	watchCmd.Flags().Int("buffer", events.DefaultSubscribeBuffer, "notifications held for a slow terminal before NATS drops them")
}
