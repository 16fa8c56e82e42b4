package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/alfredjeanlab/listener/internal/model"
)

const sourceName = "ListenerQueue"

func TestToLambdaMessage(t *testing.T) {
	m := types.Message{
		MessageId:     aws.String("m-1"),
		ReceiptHandle: aws.String("rh"),
		Body:          aws.String(`{"x":1}`),
		MD5OfBody:     aws.String("abc"),
		Attributes:    map[string]string{"SentTimestamp": "1"},
		MessageAttributes: map[string]types.MessageAttributeValue{
			"OrgId": {DataType: aws.String("String"), StringValue: aws.String("42")},
		},
	}
	got := ToLambdaMessage(m)
	if got.MessageId != "m-1" || got.ReceiptHandle != "rh" || got.Body != `{"x":1}` || got.Md5OfBody != "abc" {
		t.Errorf("got %+v", got)
	}
	if got.EventSource != "aws:sqs" {
		t.Errorf("EventSource = %q", got.EventSource)
	}
	attr, ok := got.MessageAttributes["OrgId"]
	if !ok || attr.StringValue == nil || *attr.StringValue != "42" || attr.DataType != "String" {
		t.Errorf("OrgId attribute = %+v", attr)
	}
}

func TestToLambdaMessage_NoAttributes(t *testing.T) {
	got := ToLambdaMessage(types.Message{MessageId: aws.String("m")})
	if got.MessageAttributes != nil {
		t.Errorf("MessageAttributes = %v, want nil", got.MessageAttributes)
	}
}

func TestPollOnce_DeletesOnSuccess(t *testing.T) {
	api := newFakeSQS(sourceName)
	api.put(sourceName, "a", map[string]string{"OrgId": "1"})
	api.put(sourceName, "b", map[string]string{"OrgId": "1"})

	var got []lambdaevents.SQSMessage
	c := NewConsumer(api, queueURL(sourceName), 0, func(_ context.Context, records []lambdaevents.SQSMessage) error {
		got = records
		return nil
	}, discardLogger())

	n, err := c.PollOnce(context.Background())
	if err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if n != 2 || len(got) != 2 {
		t.Fatalf("handled %d, batch %d", n, len(got))
	}
	if got[0].Body != "a" || got[1].Body != "b" {
		t.Errorf("bodies = %q, %q", got[0].Body, got[1].Body)
	}
	if api.depth(sourceName) != 0 {
		t.Errorf("queue depth = %d, want 0", api.depth(sourceName))
	}
}

func TestPollOnce_KeepsMessagesOnFailure(t *testing.T) {
	api := newFakeSQS(sourceName)
	api.put(sourceName, "a", nil)

	boom := errors.New("insert failed")
	c := NewConsumer(api, queueURL(sourceName), 0, func(context.Context, []lambdaevents.SQSMessage) error {
		return boom
	}, discardLogger())

	if _, err := c.PollOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if api.depth(sourceName) != 1 || len(api.deletes) != 0 {
		t.Errorf("message should stay queued: depth %d, deletes %v", api.depth(sourceName), api.deletes)
	}
}

func TestPollOnce_Empty(t *testing.T) {
	api := newFakeSQS(sourceName)
	called := false
	c := NewConsumer(api, queueURL(sourceName), 5*time.Second, func(context.Context, []lambdaevents.SQSMessage) error {
		called = true
		return nil
	}, discardLogger())

	n, err := c.PollOnce(context.Background())
	if err != nil || n != 0 || called {
		t.Fatalf("PollOnce = %d, %v, called=%v", n, err, called)
	}
	if api.receives[0].WaitTimeSeconds != 5 {
		t.Errorf("WaitTimeSeconds = %d, want 5", api.receives[0].WaitTimeSeconds)
	}
}

func TestPollOnce_ReceiveError(t *testing.T) {
	api := newFakeSQS(sourceName)
	api.receiveErr = errors.New("throttled")
	c := NewConsumer(api, queueURL(sourceName), 0, func(context.Context, []lambdaevents.SQSMessage) error { return nil }, discardLogger())

	if _, err := c.PollOnce(context.Background()); !errors.Is(err, model.ErrQueue) {
		t.Fatalf("expected ErrQueue, got %v", err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	api := newFakeSQS(sourceName)
	api.put(sourceName, "a", nil)

	ctx, cancel := context.WithCancel(context.Background())
	handled := make(chan struct{}, 1)
	c := NewConsumer(api, queueURL(sourceName), 0, func(context.Context, []lambdaevents.SQSMessage) error {
		select {
		case handled <- struct{}{}:
		default:
		}
		return nil
	}, discardLogger())

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for batch")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRun_RetriesAfterError(t *testing.T) {
	api := newFakeSQS(sourceName)
	api.receiveErr = errors.New("throttled")

	c := NewConsumer(api, queueURL(sourceName), 0, func(context.Context, []lambdaevents.SQSMessage) error { return nil }, discardLogger())
	c.retryDelay = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.receives) < 2 {
		t.Errorf("expected repeated receives, got %d", len(api.receives))
	}
}
