package store

import (
	"context"

	"github.com/alfredjeanlab/listener/internal/model"
)

// Store defines the persistence interface for per-organization event tables.
// Tables are named model.TableName(orgID) and must already exist.
type Store interface {
	// InsertMessage writes one (message id, body) row into the message's
	// organization table.
	InsertMessage(ctx context.Context, msg *model.Message) error

	// ListEvents returns up to filter.MaxEvents events with an id greater than
	// filter.FirstEvent, ordered by id ascending. The result is never nil.
	ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.Event, error)

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}
