// Package ingest stores queued messages in their organization's event table.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	lambdaevents "github.com/aws/aws-lambda-go/events"

	"github.com/alfredjeanlab/listener/internal/events"
	"github.com/alfredjeanlab/listener/internal/metrics"
	"github.com/alfredjeanlab/listener/internal/model"
	"github.com/alfredjeanlab/listener/internal/store"
)

// Response is returned to the invoker.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

var (
	Success    = Response{StatusCode: http.StatusOK, Body: "Success"}
	BadRequest = Response{StatusCode: http.StatusBadRequest, Body: "Bad Request"}
)

// Drainer empties the dead-letter queue.
type Drainer interface {
	Drain(ctx context.Context) (int, error)
}

// Recorder is told about every stored message.
type Recorder interface {
	Record(orgID, messageID string)
}

// batch is the trigger payload. Records is a pointer so an absent key can be
// told apart from an empty list. Elements stay raw so one badly typed record
// cannot fail the whole batch.
type batch struct {
	Records *[]json.RawMessage `json:"Records"`
}

// looseRecord accepts any JSON type for the body.
type looseRecord struct {
	MessageID         string                     `json:"messageId"`
	Body              json.RawMessage            `json:"body"`
	MessageAttributes map[string]json.RawMessage `json:"messageAttributes"`
}

// Handler writes each complete record to its organization's table, then
// drains the dead-letter queue once.
type Handler struct {
	store     store.Store
	drainer   Drainer
	publisher events.Publisher
	recorder  Recorder
	logger    *slog.Logger
}

// NewHandler creates an ingest handler. drainer may be nil to skip the
// dead-letter maintenance step.
func NewHandler(s store.Store, drainer Drainer, publisher events.Publisher, logger *slog.Logger) *Handler {
	return &Handler{store: s, drainer: drainer, publisher: publisher, logger: logger}
}

// SetRecorder attaches an activity recorder.
func (h *Handler) SetRecorder(r Recorder) {
	h.recorder = r
}

// Handle is the Lambda entry point. A payload without a Records key gets
// BadRequest and causes no downstream calls. Store and queue errors are
// returned so the trigger redelivers the batch.
func (h *Handler) Handle(ctx context.Context, payload json.RawMessage) (Response, error) {
	var b batch
	if err := json.Unmarshal(payload, &b); err != nil || b.Records == nil {
		return BadRequest, nil
	}
	records := make([]lambdaevents.SQSMessage, 0, len(*b.Records))
	for i, raw := range *b.Records {
		r, err := decodeRecord(raw)
		if err != nil {
			metrics.RecordsSkipped.Inc()
			h.logger.Debug("record skipped", "index", i, "error", err)
			continue
		}
		records = append(records, r)
	}
	if err := h.ProcessBatch(ctx, records); err != nil {
		return Response{}, err
	}
	return Success, nil
}

// decodeRecord decodes one trigger record. A body that is not a JSON string
// is kept as its JSON text; null counts as absent. Attributes that do not
// decode are dropped, which leaves the record incomplete if OrgId is among
// them.
func decodeRecord(raw json.RawMessage) (lambdaevents.SQSMessage, error) {
	var lr looseRecord
	if err := json.Unmarshal(raw, &lr); err != nil {
		return lambdaevents.SQSMessage{}, err
	}
	msg := lambdaevents.SQSMessage{MessageId: lr.MessageID, Body: bodyText(lr.Body)}
	if lr.MessageAttributes != nil {
		msg.MessageAttributes = make(map[string]lambdaevents.SQSMessageAttribute, len(lr.MessageAttributes))
		for name, v := range lr.MessageAttributes {
			var attr lambdaevents.SQSMessageAttribute
			if err := json.Unmarshal(v, &attr); err != nil {
				continue
			}
			msg.MessageAttributes[name] = attr
		}
	}
	return msg, nil
}

func bodyText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ProcessBatch inserts every complete record in order, stopping at the first
// store error, then runs the dead-letter drain.
func (h *Handler) ProcessBatch(ctx context.Context, records []lambdaevents.SQSMessage) error {
	inserted := 0
	for i := range records {
		msg, ok := messageFromRecord(&records[i])
		if !ok {
			metrics.RecordsSkipped.Inc()
			h.logger.Debug("record skipped", "index", i, "message_id", records[i].MessageId)
			continue
		}
		if err := h.store.InsertMessage(ctx, msg); err != nil {
			return err
		}
		inserted++
		metrics.RecordsInserted.WithLabelValues(msg.OrgID).Inc()
		if h.recorder != nil {
			h.recorder.Record(msg.OrgID, msg.MessageID)
		}

		ev := events.EventIngested{OrgID: msg.OrgID, MessageID: msg.MessageID, Table: model.TableName(msg.OrgID)}
		if err := h.publisher.Publish(ctx, events.TopicEventIngested, ev); err != nil {
			h.logger.Warn("failed to publish event", "topic", events.TopicEventIngested, "message_id", msg.MessageID, "error", err)
		}
	}

	if h.drainer != nil {
		drained, err := h.drainer.Drain(ctx)
		if err != nil {
			return err
		}
		if drained > 0 {
			h.logger.Info("dead-letter queue drained", "messages", drained)
		}
	}

	h.logger.Debug("batch ingested", "records", len(records), "inserted", inserted)
	return nil
}

// messageFromRecord extracts a storable message, reporting false when the
// record lacks an id, a body, message attributes, or a string OrgId.
// SQS never delivers an empty id or body, so empty strings count as missing.
func messageFromRecord(r *lambdaevents.SQSMessage) (*model.Message, bool) {
	if r.MessageId == "" || r.Body == "" || r.MessageAttributes == nil {
		return nil, false
	}
	org, ok := r.MessageAttributes[model.OrgIDAttribute]
	if !ok || org.StringValue == nil {
		return nil, false
	}
	return &model.Message{
		MessageID: r.MessageId,
		OrgID:     *org.StringValue,
		Body:      r.Body,
	}, true
}
