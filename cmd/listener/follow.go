package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/listener/internal/awsclient"
	"github.com/alfredjeanlab/listener/internal/events"
	"github.com/alfredjeanlab/listener/internal/follow"
)

var followCmd = &cobra.Command{
	Use:     "follow <org-id>",
	Short:   "Tail an organization's events into stdout, S3, NATS or Kafka",
	GroupID: "events",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orgID := args[0]
		after, _ := cmd.Flags().GetInt64("after")
		pageSize, _ := cmd.Flags().GetInt("page-size")
		interval, _ := cmd.Flags().GetDuration("interval")
		once, _ := cmd.Flags().GetBool("once")
		quiet, _ := cmd.Flags().GetBool("quiet")
		bucket, _ := cmd.Flags().GetString("s3-bucket")
		prefix, _ := cmd.Flags().GetString("s3-prefix")
		region, _ := cmd.Flags().GetString("s3-region")
		endpoint, _ := cmd.Flags().GetString("s3-endpoint")
		natsURL, _ := cmd.Flags().GetString("nats")
		brokers, _ := cmd.Flags().GetString("kafka-brokers")
		topic, _ := cmd.Flags().GetString("kafka-topic")

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var dests []follow.Destination
		if !quiet {
			dests = append(dests, follow.NewWriterDestination(cmd.OutOrStdout()))
		}

		if bucket != "" {
			aws, err := awsclient.Load(ctx, awsclient.Options{Region: region, Endpoint: endpoint})
			if err != nil {
				return err
			}
			dests = append(dests, follow.NewS3Destination(aws.S3(), bucket, prefix))
			logger.Info("s3 destination enabled", "bucket", bucket, "prefix", prefix)
		}

		if natsURL != "" {
			pub, err := events.NewNATSPublisher(natsURL)
			if err != nil {
				return err
			}
			defer pub.Close()
			dests = append(dests, follow.NewNATSDestination(pub))
			logger.Info("nats destination enabled", "nats_url", natsURL)
		}

		if brokers != "" {
			if topic == "" {
				return fmt.Errorf("--kafka-topic is required with --kafka-brokers")
			}
			kd, err := follow.NewKafkaDestination(strings.Split(brokers, ","), topic)
			if err != nil {
				return err
			}
			defer kd.Close()
			dests = append(dests, kd)
			logger.Info("kafka destination enabled", "brokers", brokers, "topic", topic)
		}

		if len(dests) == 0 {
			return fmt.Errorf("no destinations: drop --quiet or configure --s3-bucket, --nats or --kafka-brokers")
		}

		sched := follow.NewScheduler(eventsClient, dests, follow.Options{
			OrgID:    orgID,
			Cursor:   after,
			PageSize: pageSize,
			Interval: interval,
		}, logger)

		if once {
			_, err := sched.PollOnce(ctx)
			return err
		}
		sched.Run(ctx)
		logger.Info("follow stopped", "org_id", orgID, "cursor", sched.Cursor())
		return nil
	},
}

func init() {
	followCmd.Flags().Int64("after", 0, "start after this event id")
	followCmd.Flags().Int("page-size", follow.DefaultPageSize, "events per request (maxEventsPerCall)")
	followCmd.Flags().Duration("interval", follow.DefaultInterval, "poll interval")
	followCmd.Flags().Bool("once", false, "drain the backlog once and exit")
	followCmd.Flags().BoolP("quiet", "q", false, "do not write events to stdout")
	followCmd.Flags().String("s3-bucket", "", "upload each page to this bucket")
	followCmd.Flags().String("s3-prefix", "listener", "object key prefix")
	followCmd.Flags().String("s3-region", "", "S3 region (SDK default when empty)")
	followCmd.Flags().String("s3-endpoint", "", "S3-compatible endpoint (enables path-style)")
	followCmd.Flags().String("nats", "", "publish events to listener.events.<org> on this NATS server")
	followCmd.Flags().String("kafka-brokers", "", "comma-separated Kafka seed brokers")
	followCmd.Flags().String("kafka-topic", "", "Kafka topic")
}
