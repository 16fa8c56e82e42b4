package query

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	lambdaevents "github.com/aws/aws-lambda-go/events"

	"github.com/alfredjeanlab/listener/internal/model"
)

type mockStore struct {
	filters []model.EventFilter
	events  []*model.Event
	err     error
}

func (m *mockStore) InsertMessage(context.Context, *model.Message) error { return nil }

func (m *mockStore) ListEvents(_ context.Context, f model.EventFilter) ([]*model.Event, error) {
	m.filters = append(m.filters, f)
	return m.events, m.err
}

func (m *mockStore) Ping(context.Context) error { return nil }
func (m *mockStore) Close() error               { return nil }

func newTestHandler(s *mockStore) *Handler {
	return NewHandler(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]string
		want    model.EventFilter
		wantErr bool
	}{
		{
			name:   "valid",
			params: map[string]string{"orgId": "42", "firstEvent": "100", "maxEventsPerCall": "5"},
			want:   model.EventFilter{OrgID: "42", FirstEvent: 100, MaxEvents: 5},
		},
		{
			name:   "zero limit",
			params: map[string]string{"orgId": "a", "firstEvent": "0", "maxEventsPerCall": "0"},
			want:   model.EventFilter{OrgID: "a"},
		},
		{
			name:   "negative first event",
			params: map[string]string{"orgId": "a", "firstEvent": "-1", "maxEventsPerCall": "10"},
			want:   model.EventFilter{OrgID: "a", FirstEvent: -1, MaxEvents: 10},
		},
		{name: "nil params", params: nil, wantErr: true},
		{name: "missing org", params: map[string]string{"firstEvent": "1", "maxEventsPerCall": "1"}, wantErr: true},
		{name: "empty org", params: map[string]string{"orgId": "", "firstEvent": "1", "maxEventsPerCall": "1"}, wantErr: true},
		{name: "missing first", params: map[string]string{"orgId": "1", "maxEventsPerCall": "1"}, wantErr: true},
		{name: "missing max", params: map[string]string{"orgId": "1", "firstEvent": "1"}, wantErr: true},
		{name: "non-numeric first", params: map[string]string{"orgId": "1", "firstEvent": "abc", "maxEventsPerCall": "1"}, wantErr: true},
		{name: "float max", params: map[string]string{"orgId": "1", "firstEvent": "1", "maxEventsPerCall": "1.5"}, wantErr: true},
		{name: "negative max", params: map[string]string{"orgId": "1", "firstEvent": "1", "maxEventsPerCall": "-3"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilter(tt.params)
			if tt.wantErr {
				if !errors.Is(err, model.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHandle_ReturnsEvents(t *testing.T) {
	s := &mockStore{events: []*model.Event{
		{EventID: 101, EventData: json.RawMessage(`{"a":1}`)},
		{EventID: 102, EventData: json.RawMessage(`[1,2]`)},
	}}
	h := newTestHandler(s)

	resp, err := h.Handle(context.Background(), lambdaevents.APIGatewayProxyRequest{
		QueryStringParameters: map[string]string{"orgId": "42", "firstEvent": "100", "maxEventsPerCall": "5"},
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Headers["Access-Control-Allow-Origin"] != "*" {
		t.Errorf("headers = %v", resp.Headers)
	}
	want := `[{"eventId":101,"eventData":{"a":1}},{"eventId":102,"eventData":[1,2]}]`
	if resp.Body != want {
		t.Errorf("body = %s\nwant  %s", resp.Body, want)
	}
	if len(s.filters) != 1 || s.filters[0] != (model.EventFilter{OrgID: "42", FirstEvent: 100, MaxEvents: 5}) {
		t.Errorf("filters = %+v", s.filters)
	}
}

func TestHandle_EmptyResult(t *testing.T) {
	for _, evs := range [][]*model.Event{nil, {}} {
		h := newTestHandler(&mockStore{events: evs})
		resp, err := h.Handle(context.Background(), lambdaevents.APIGatewayProxyRequest{
			QueryStringParameters: map[string]string{"orgId": "7", "firstEvent": "0", "maxEventsPerCall": "10"},
		})
		if err != nil {
			t.Fatalf("Handle: %v", err)
		}
		if resp.StatusCode != 200 || resp.Body != "[]" {
			t.Errorf("resp = %d %q, want 200 []", resp.StatusCode, resp.Body)
		}
	}
}

func TestHandle_InvalidParamsIsInvocationError(t *testing.T) {
	s := &mockStore{}
	h := newTestHandler(s)
	_, err := h.Handle(context.Background(), lambdaevents.APIGatewayProxyRequest{
		QueryStringParameters: map[string]string{"orgId": "7"},
	})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(s.filters) != 0 {
		t.Error("store should not be queried for invalid parameters")
	}
}

func TestHandle_StoreError(t *testing.T) {
	h := newTestHandler(&mockStore{err: model.Database("select from RxEvents7", errors.New("no such table"))})
	_, err := h.Handle(context.Background(), lambdaevents.APIGatewayProxyRequest{
		QueryStringParameters: map[string]string{"orgId": "7", "firstEvent": "0", "maxEventsPerCall": "10"},
	})
	if !errors.Is(err, model.ErrDatabase) {
		t.Fatalf("expected ErrDatabase, got %v", err)
	}
}
