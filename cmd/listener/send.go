package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/listener/internal/awsclient"
	"github.com/alfredjeanlab/listener/internal/config"
	"github.com/alfredjeanlab/listener/internal/queue"
	"github.com/alfredjeanlab/listener/internal/ui"
)

var sendCmd = &cobra.Command{
	Use:               "send <org-id> [<body>|-]",
	Short:             "Enqueue a message for an organization on the source queue",
	GroupID:           "queue",
	Args:              cobra.RangeArgs(1, 2),
	PersistentPreRunE: noClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		orgID := args[0]
		body, err := readBody(cmd.InOrStdin(), args[1:])
		if err != nil {
			return err
		}
		if body == "" {
			return fmt.Errorf("message body is empty")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		queueURL, _ := cmd.Flags().GetString("queue-url")
		if queueURL == "" {
			queueURL = cfg.QueueURL
		}
		if queueURL == "" {
			return fmt.Errorf("no queue: pass --queue-url or set LISTENER_QUEUE_URL")
		}

		aws, err := awsclient.Load(cmd.Context(), awsclient.Options{Region: cfg.AWSRegion, Endpoint: cfg.AWSEndpoint})
		if err != nil {
			return err
		}
		id, err := queue.NewSender(aws.SQS(), queueURL).Send(cmd.Context(), orgID, body)
		if err != nil {
			return err
		}
		if jsonOutput {
			fmt.Fprintf(cmd.OutOrStdout(), "{\"messageId\":%q,\"orgId\":%q}\n", id, orgID)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s sent %s for org %s\n", ui.RenderOK("✓"), id, ui.RenderAccent(orgID))
		return nil
	},
}

// readBody returns the single argument, or stdin when it is "-" or absent.
func readBody(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading body from stdin: %w", err)
	}
	return string(data), nil
}

func init() {
	sendCmd.Flags().String("queue-url", os.Getenv("LISTENER_QUEUE_URL"), "source queue URL")
}
