// Package queue wraps the SQS operations the listener performs: draining the
// dead-letter queue, consuming the source queue outside Lambda, and sending
// test messages.
package queue

import (
	"context"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// API is the subset of the SQS client used by this package.
type API interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// MaxBatch is the most messages a single ReceiveMessage call returns.
const MaxBatch = 10

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToLambdaMessage converts a received SQS message into the record shape a
// Lambda SQS trigger delivers, so one ingest code path serves both.
func ToLambdaMessage(m types.Message) lambdaevents.SQSMessage {
	out := lambdaevents.SQSMessage{
		MessageId:     deref(m.MessageId),
		ReceiptHandle: deref(m.ReceiptHandle),
		Body:          deref(m.Body),
		Md5OfBody:     deref(m.MD5OfBody),
		Attributes:    m.Attributes,
		EventSource:   "aws:sqs",
	}
	if len(m.MessageAttributes) > 0 {
		out.MessageAttributes = make(map[string]lambdaevents.SQSMessageAttribute, len(m.MessageAttributes))
		for name, v := range m.MessageAttributes {
			out.MessageAttributes[name] = lambdaevents.SQSMessageAttribute{
				StringValue:      v.StringValue,
				BinaryValue:      v.BinaryValue,
				StringListValues: v.StringListValues,
				BinaryListValues: v.BinaryListValues,
				DataType:         deref(v.DataType),
			}
		}
	}
	return out
}

// stringAttributes flattens the string-typed message attributes for logging.
func stringAttributes(attrs map[string]types.MessageAttributeValue) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for name, v := range attrs {
		if v.StringValue != nil {
			out[name] = *v.StringValue
		}
	}
	return out
}
