// Package events publishes listener activity to an event bus so other
// services can react to ingested messages without polling the store.
package events

import "context"

// Event topic constants
const (
	TopicEventIngested     = "listener.event.ingested"
	TopicDeadLetterDrained = "listener.deadletter.drained"

	// TopicOrgEventsPrefix prefixes per-organization subjects carrying full
	// events forwarded by the follower ("listener.events.<orgId>").
	TopicOrgEventsPrefix = "listener.events."
)

// OrgEventsTopic returns the subject carrying forwarded events for orgID.
func OrgEventsTopic(orgID string) string {
	return TopicOrgEventsPrefix + orgID
}

// Event types

type EventIngested struct {
	OrgID     string `json:"org_id"`
	MessageID string `json:"message_id"`
	Table     string `json:"table"`
}

type DeadLetterDrained struct {
	Queue     string            `json:"queue"`
	MessageID string            `json:"message_id"`
	Body      string            `json:"body"`
	OrgID     string            `json:"org_id,omitempty"`
	Attrs     map[string]string `json:"attributes,omitempty"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Notification is one message seen on the bus.
type Notification struct {
	Subject string
	Data    []byte
}

// Subscriber streams bus notifications.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan Notification, error)
	Close() error
}

// NoopPublisher drops every event. It stands in when LISTENER_NATS_URL is unset.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }
