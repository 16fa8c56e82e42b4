package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/listener/internal/client"
)

var (
	httpURL    string
	grpcAddr   string
	authToken  string
	jsonOutput bool

	eventsClient client.EventsClient
)

func defaultHTTPURL() string {
	if s := os.Getenv("LISTENER_URL"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func defaultGRPCAddr() string {
	if s := os.Getenv("LISTENER_GRPC_TARGET"); s != "" {
		return s
	}
	if a := activeRemoteGRPCAddr(); a != "" {
		return a
	}
	return "localhost:9090"
}

func defaultToken() string {
	if s := os.Getenv("LISTENER_TOKEN"); s != "" {
		return s
	}
	return activeRemoteToken()
}

// noClient skips the HTTP client setup for commands that talk to AWS directly
// or only touch local files.
func noClient(*cobra.Command, []string) error { return nil }

var rootCmd = &cobra.Command{
	Use:          "listener <command>",
	Short:        "Ingest queued events per organization and read them back",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		eventsClient = client.NewHTTPClient(httpURL, authToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if eventsClient != nil {
			eventsClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "url", defaultHTTPURL(), "listener HTTP URL")
	rootCmd.PersistentFlags().StringVar(&grpcAddr, "grpc", defaultGRPCAddr(), "listener gRPC address")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "events", Title: "Events:"},
		&cobra.Group{ID: "queue", Title: "Queues:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	cobra.EnableCommandSorting = false

	// Events
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(orgsCmd)

	// Queues
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(drainDLQCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
