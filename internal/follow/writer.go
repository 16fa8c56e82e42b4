package follow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/alfredjeanlab/listener/internal/model"
)

// Line is one JSONL record written by EncodeJSONL.
type Line struct {
	OrgID     string          `json:"orgId"`
	EventID   int64           `json:"eventId"`
	EventData json.RawMessage `json:"eventData"`
}

// EncodeJSONL writes one line per event to w.
func EncodeJSONL(w io.Writer, orgID string, events []*model.Event) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, ev := range events {
		if err := enc.Encode(Line{OrgID: orgID, EventID: ev.EventID, EventData: ev.EventData}); err != nil {
			return fmt.Errorf("encode event %d: %w", ev.EventID, err)
		}
	}
	return nil
}

// WriterDestination writes pages as JSONL to an io.Writer such as stdout.
type WriterDestination struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterDestination wraps w.
func NewWriterDestination(w io.Writer) *WriterDestination {
	return &WriterDestination{w: w}
}

func (d *WriterDestination) Name() string { return "writer" }

func (d *WriterDestination) Write(_ context.Context, orgID string, events []*model.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return EncodeJSONL(d.w, orgID, events)
}
