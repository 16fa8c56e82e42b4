package follow

import (
	"context"

	"github.com/alfredjeanlab/listener/internal/events"
	"github.com/alfredjeanlab/listener/internal/model"
)

// NATSDestination publishes every event to listener.events.<org>.
type NATSDestination struct {
	publisher events.Publisher
}

// NewNATSDestination publishes through p.
func NewNATSDestination(p events.Publisher) *NATSDestination {
	return &NATSDestination{publisher: p}
}

func (d *NATSDestination) Name() string { return "nats" }

func (d *NATSDestination) Write(ctx context.Context, orgID string, evs []*model.Event) error {
	topic := events.OrgEventsTopic(orgID)
	for _, ev := range evs {
		line := Line{OrgID: orgID, EventID: ev.EventID, EventData: ev.EventData}
		if err := d.publisher.Publish(ctx, topic, line); err != nil {
			return err
		}
	}
	return nil
}
