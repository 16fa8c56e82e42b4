package queue

import (
	"context"
	"log/slog"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/alfredjeanlab/listener/internal/model"
)

// BatchFunc processes one received batch. A non-nil error leaves every
// message in the batch on the queue for redelivery.
type BatchFunc func(ctx context.Context, records []lambdaevents.SQSMessage) error

// Consumer long-polls a source queue and feeds batches to a BatchFunc,
// standing in for the Lambda SQS trigger when the listener runs as a server.
type Consumer struct {
	api      API
	queueURL string
	wait     time.Duration
	handle   BatchFunc
	logger   *slog.Logger

	// retryDelay is how long Run sleeps after a failed receive.
	retryDelay time.Duration
}

// NewConsumer creates a consumer for queueURL. wait is the long-poll
// duration per receive (0..20s).
func NewConsumer(api API, queueURL string, wait time.Duration, handle BatchFunc, logger *slog.Logger) *Consumer {
	return &Consumer{
		api:        api,
		queueURL:   queueURL,
		wait:       wait,
		handle:     handle,
		logger:     logger,
		retryDelay: time.Second,
	}
}

// Run polls until ctx is cancelled. Receive and handler failures are logged
// and polling continues after retryDelay. With a zero wait, empty receives
// also back off so the loop does not spin.
func (c *Consumer) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		n, err := c.PollOnce(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			c.logger.Error("queue poll failed", "queue_url", c.queueURL, "err", err)
			sleepCtx(ctx, c.retryDelay)
		case n == 0 && c.wait == 0:
			sleepCtx(ctx, c.retryDelay)
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// PollOnce receives one batch, hands it to the BatchFunc, and deletes the
// messages if the batch succeeded. It returns the number of messages handled.
func (c *Consumer) PollOnce(ctx context.Context) (int, error) {
	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:                    aws.String(c.queueURL),
		MaxNumberOfMessages:         MaxBatch,
		WaitTimeSeconds:             int32(c.wait / time.Second),
		MessageAttributeNames:       []string{"All"},
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{types.MessageSystemAttributeNameAll},
	})
	if err != nil {
		return 0, model.Queue("receive from "+c.queueURL, err)
	}
	if len(out.Messages) == 0 {
		return 0, nil
	}

	records := make([]lambdaevents.SQSMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		records = append(records, ToLambdaMessage(m))
	}

	if err := c.handle(ctx, records); err != nil {
		return 0, err
	}

	for _, m := range out.Messages {
		if _, err := c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(c.queueURL),
			ReceiptHandle: m.ReceiptHandle,
		}); err != nil {
			return 0, model.Queue("delete from "+c.queueURL, err)
		}
	}
	c.logger.Debug("queue batch processed", "queue_url", c.queueURL, "messages", len(records))
	return len(records), nil
}
