package follow

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/alfredjeanlab/listener/internal/model"
)

// Producer is the subset of *kgo.Client used by KafkaDestination.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaDestination produces one record per event, keyed by organization so a
// partition keeps each organization's order.
type KafkaDestination struct {
	producer Producer
	topic    string
	client   *kgo.Client
}

// NewKafkaDestination connects to brokers and produces to topic.
func NewKafkaDestination(brokers []string, topic string) (*KafkaDestination, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("listener-follow"),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &KafkaDestination{producer: cl, topic: topic, client: cl}, nil
}

// NewKafkaDestinationWithProducer uses an existing producer.
func NewKafkaDestinationWithProducer(p Producer, topic string) *KafkaDestination {
	return &KafkaDestination{producer: p, topic: topic}
}

func (d *KafkaDestination) Name() string { return "kafka:" + d.topic }

func (d *KafkaDestination) Write(ctx context.Context, orgID string, events []*model.Event) error {
	records := make([]*kgo.Record, 0, len(events))
	for _, ev := range events {
		value, err := json.Marshal(Line{OrgID: orgID, EventID: ev.EventID, EventData: ev.EventData})
		if err != nil {
			return fmt.Errorf("encode event %d: %w", ev.EventID, err)
		}
		records = append(records, &kgo.Record{
			Topic: d.topic,
			Key:   []byte(orgID),
			Value: value,
			Headers: []kgo.RecordHeader{
				{Key: "eventId", Value: []byte(strconv.FormatInt(ev.EventID, 10))},
			},
		})
	}
	if err := d.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("kafka produce to %s: %w", d.topic, err)
	}
	return nil
}

// Close flushes and closes the client when this destination owns one.
func (d *KafkaDestination) Close() error {
	if d.client != nil {
		d.client.Close()
	}
	return nil
}
