package queue

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/alfredjeanlab/listener/internal/model"
)

// Sender enqueues messages tagged with an organization id.
type Sender struct {
	api      API
	queueURL string
}

func NewSender(api API, queueURL string) *Sender {
	return &Sender{api: api, queueURL: queueURL}
}

// Send enqueues body with the OrgId string attribute and returns the
// message id assigned by SQS.
func (s *Sender) Send(ctx context.Context, orgID, body string) (string, error) {
	out, err := s.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			model.OrgIDAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(orgID),
			},
		},
	})
	if err != nil {
		return "", model.Queue("send to "+s.queueURL, err)
	}
	return deref(out.MessageId), nil
}
