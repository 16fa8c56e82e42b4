// Package client talks to a running listener over its HTTP/JSON API and its
// gRPC health service.
package client

import (
	"context"
	"time"

	"github.com/alfredjeanlab/listener/internal/activity"
	"github.com/alfredjeanlab/listener/internal/model"
)

// EventsClient reads events from a listener. It is implemented by HTTPClient
// and can be backed by any transport.
type EventsClient interface {
	// ListEvents returns at most max events of orgID with ids greater than
	// firstEvent, in ascending order.
	ListEvents(ctx context.Context, orgID string, firstEvent int64, max int) ([]*model.Event, error)

	// ListOrgs returns the organizations the server has ingested for,
	// limited to those active within the given window when it is non-zero.
	ListOrgs(ctx context.Context, within time.Duration) ([]activity.Entry, error)

	// Health reports the server status string.
	Health(ctx context.Context) (string, error)

	Close() error
}
