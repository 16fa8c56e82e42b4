package queue

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// fakeSQS is an in-memory set of named queues implementing API.
type fakeSQS struct {
	mu     sync.Mutex
	queues map[string][]types.Message // keyed by URL
	nextID int

	receives []*sqs.ReceiveMessageInput
	deletes  []string // receipt handles

	getURLErr  error
	receiveErr error
	deleteErr  error
}

func newFakeSQS(names ...string) *fakeSQS {
	f := &fakeSQS{queues: make(map[string][]types.Message)}
	for _, n := range names {
		f.queues[queueURL(n)] = nil
	}
	return f
}

func queueURL(name string) string {
	return "https://sqs.eu-west-2.amazonaws.com/123456789012/" + name
}

func (f *fakeSQS) put(name, body string, attrs map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("msg-%d", f.nextID)
	m := types.Message{
		MessageId:     aws.String(id),
		ReceiptHandle: aws.String("rh-" + id),
		Body:          aws.String(body),
		Attributes:    map[string]string{"SentTimestamp": "1601424000000"},
	}
	if len(attrs) > 0 {
		m.MessageAttributes = make(map[string]types.MessageAttributeValue)
		for k, v := range attrs {
			m.MessageAttributes[k] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
		}
	}
	url := queueURL(name)
	f.queues[url] = append(f.queues[url], m)
}

func (f *fakeSQS) depth(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queues[queueURL(name)])
}

func (f *fakeSQS) GetQueueUrl(_ context.Context, in *sqs.GetQueueUrlInput, _ ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	if f.getURLErr != nil {
		return nil, f.getURLErr
	}
	url := queueURL(*in.QueueName)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.queues[url]; !ok {
		return nil, &types.QueueDoesNotExist{Message: aws.String("queue does not exist")}
	}
	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String(url)}, nil
}

// ReceiveMessage returns up to MaxNumberOfMessages without hiding them,
// as a zero visibility timeout would.
func (f *fakeSQS) ReceiveMessage(_ context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receives = append(f.receives, in)
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	msgs := f.queues[*in.QueueUrl]
	n := min(int(in.MaxNumberOfMessages), len(msgs))
	out := make([]types.Message, n)
	copy(out, msgs[:n])
	return &sqs.ReceiveMessageOutput{Messages: out}, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deletes = append(f.deletes, *in.ReceiptHandle)
	msgs := f.queues[*in.QueueUrl]
	for i, m := range msgs {
		if *m.ReceiptHandle == *in.ReceiptHandle {
			f.queues[*in.QueueUrl] = append(msgs[:i:i], msgs[i+1:]...)
			break
		}
	}
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	url := *in.QueueUrl
	if _, ok := f.queues[url]; !ok {
		return nil, &types.QueueDoesNotExist{Message: aws.String("queue does not exist")}
	}
	f.nextID++
	id := fmt.Sprintf("msg-%d", f.nextID)
	f.queues[url] = append(f.queues[url], types.Message{
		MessageId:         aws.String(id),
		ReceiptHandle:     aws.String("rh-" + id),
		Body:              in.MessageBody,
		MessageAttributes: in.MessageAttributes,
	})
	return &sqs.SendMessageOutput{MessageId: aws.String(id)}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
