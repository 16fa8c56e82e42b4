package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes JSON-encoded events to NATS subjects.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("listener"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if err := p.conn.Publish(topic, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Flush waits until the server has processed everything published so far.
func (p *NATSPublisher) Flush(ctx context.Context) error {
	return p.conn.FlushWithContext(ctx)
}

// Close drains pending publishes before closing the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// DefaultSubscribeBuffer is the notification buffer used when none is given.
const DefaultSubscribeBuffer = 64

// NATSSubscriber delivers bus notifications to watchers.
type NATSSubscriber struct {
	conn   *nats.Conn
	buffer int
}

// NewNATSSubscriber connects to url, reconnecting forever. buffer bounds the
// notifications held for a slow reader; values below 1 use
// DefaultSubscribeBuffer. opts are appended to the connection defaults.
func NewNATSSubscriber(url string, buffer int, opts ...nats.Option) (*NATSSubscriber, error) {
	if buffer < 1 {
		buffer = DefaultSubscribeBuffer
	}
	defaults := []nats.Option{
		nats.Name("listener-watch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSSubscriber{conn: nc, buffer: buffer}, nil
}

// Subscribe streams notifications for topic, which may be a wildcard such as
// "listener.>", until ctx is done; the channel is then closed. When the
// buffer is full NATS drops new messages for this subscription.
func (s *NATSSubscriber) Subscribe(ctx context.Context, topic string) (<-chan Notification, error) {
	msgs := make(chan *nats.Msg, s.buffer)
	sub, err := s.conn.ChanSubscribe(topic, msgs)
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	// Round-trip so the interest is registered before returning.
	if err := s.conn.FlushTimeout(5 * time.Second); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("flushing subscription to %s: %w", topic, err)
	}

	out := make(chan Notification)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				n := Notification{Subject: msg.Subject, Data: msg.Data}
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
