package queue

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/alfredjeanlab/listener/internal/events"
	"github.com/alfredjeanlab/listener/internal/metrics"
	"github.com/alfredjeanlab/listener/internal/model"
)

// Drainer empties the dead-letter queue: every message found is logged,
// published, and deleted. Nothing is redriven.
type Drainer struct {
	api       API
	queueName string
	publisher events.Publisher
	logger    *slog.Logger
}

// NewDrainer returns a drainer for the queue named queueName.
func NewDrainer(api API, queueName string, publisher events.Publisher, logger *slog.Logger) *Drainer {
	return &Drainer{api: api, queueName: queueName, publisher: publisher, logger: logger}
}

// Drain performs one non-blocking receive of up to MaxBatch messages with a
// zero visibility timeout, then deletes each one by receipt handle. It returns
// the number of messages deleted. The queue URL is looked up on every call.
func (d *Drainer) Drain(ctx context.Context) (int, error) {
	urlOut, err := d.api.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(d.queueName)})
	if err != nil {
		return 0, model.Queue("get url of "+d.queueName, err)
	}
	queueURL := urlOut.QueueUrl

	out, err := d.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:                    queueURL,
		MaxNumberOfMessages:         MaxBatch,
		VisibilityTimeout:           0,
		WaitTimeSeconds:             0,
		MessageAttributeNames:       []string{"All"},
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{types.MessageSystemAttributeNameSentTimestamp},
	})
	if err != nil {
		return 0, model.Queue("receive from "+d.queueName, err)
	}

	deleted := 0
	for _, msg := range out.Messages {
		attrs := stringAttributes(msg.MessageAttributes)
		d.logger.Info("dead-letter message",
			"queue", d.queueName,
			"message_id", deref(msg.MessageId),
			"sent_timestamp", msg.Attributes[string(types.MessageSystemAttributeNameSentTimestamp)],
			"attributes", attrs,
			"body", deref(msg.Body),
		)

		if _, err := d.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      queueURL,
			ReceiptHandle: msg.ReceiptHandle,
		}); err != nil {
			return deleted, model.Queue("delete from "+d.queueName, err)
		}
		deleted++
		metrics.DeadLettersDrained.Inc()

		if err := d.publisher.Publish(ctx, events.TopicDeadLetterDrained, events.DeadLetterDrained{
			Queue:     d.queueName,
			MessageID: deref(msg.MessageId),
			Body:      deref(msg.Body),
			OrgID:     attrs[model.OrgIDAttribute],
			Attrs:     attrs,
		}); err != nil {
			d.logger.Warn("failed to publish event", "topic", events.TopicDeadLetterDrained, "error", err)
		}
	}
	return deleted, nil
}
