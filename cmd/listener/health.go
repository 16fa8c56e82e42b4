package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/listener/internal/client"
	"github.com/alfredjeanlab/listener/internal/server"
	"github.com/alfredjeanlab/listener/internal/ui"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check a running listener over HTTP and gRPC",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		useGRPC, _ := cmd.Flags().GetBool("grpc-check")
		out := cmd.OutOrStdout()

		status, err := eventsClient.Health(cmd.Context())
		if err != nil {
			fmt.Fprintf(out, "http  %s %s\n", ui.RenderError("✗"), err)
			return err
		}
		fmt.Fprintf(out, "http  %s %s\n", ui.RenderOK("✓"), status)

		if !useGRPC {
			return nil
		}
		hc, err := client.NewHealthClient(grpcAddr, authToken)
		if err != nil {
			return err
		}
		defer hc.Close()
		st, err := hc.Check(cmd.Context(), server.ServiceName)
		if err != nil {
			fmt.Fprintf(out, "grpc  %s %s\n", ui.RenderError("✗"), err)
			return err
		}
		mark := ui.RenderOK("✓")
		if st != "SERVING" {
			mark = ui.RenderWarn("!")
		}
		fmt.Fprintf(out, "grpc  %s %s\n", mark, st)
		return nil
	},
}

func init() {
	healthCmd.Flags().Bool("grpc-check", false, "also query the gRPC health service at --grpc")
}
