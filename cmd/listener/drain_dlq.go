package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/listener/internal/app"
	"github.com/alfredjeanlab/listener/internal/awsclient"
	"github.com/alfredjeanlab/listener/internal/config"
	"github.com/alfredjeanlab/listener/internal/queue"
	"github.com/alfredjeanlab/listener/internal/ui"
)

var drainDLQCmd = &cobra.Command{
	Use:               "drain-dlq",
	Short:             "Log and delete everything on the dead-letter queue",
	GroupID:           "queue",
	Args:              cobra.NoArgs,
	PersistentPreRunE: noClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("queue"); name != "" {
			cfg.DeadLetterQueue = name
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		aws, err := awsclient.Load(cmd.Context(), awsclient.Options{Region: cfg.AWSRegion, Endpoint: cfg.AWSEndpoint})
		if err != nil {
			return err
		}
		pub, err := app.NewPublisher(cfg, logger)
		if err != nil {
			return err
		}
		defer pub.Close()

		drainer := queue.NewDrainer(aws.SQS(), cfg.DeadLetterQueue, pub, logger)
		total := 0
		for {
			n, err := drainer.Drain(cmd.Context())
			total += n
			if err != nil {
				return err
			}
			if !all || n == 0 {
				break
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s drained %d messages from %s\n", ui.RenderOK("✓"), total, ui.RenderAccent(cfg.DeadLetterQueue))
		return nil
	},
}

func init() {
	drainDLQCmd.Flags().String("queue", "", "dead-letter queue name (default LISTENER_DLQ_NAME)")
	drainDLQCmd.Flags().Bool("all", false, "repeat until a receive comes back empty")
}
