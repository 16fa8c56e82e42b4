// Package query reads back pages of stored events for one organization.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"

	"github.com/alfredjeanlab/listener/internal/metrics"
	"github.com/alfredjeanlab/listener/internal/model"
	"github.com/alfredjeanlab/listener/internal/store"
)

// Query parameter names.
const (
	ParamOrgID      = "orgId"
	ParamFirstEvent = "firstEvent"
	ParamMaxEvents  = "maxEventsPerCall"
)

// Handler serves event pages from a store.
type Handler struct {
	store  store.Store
	logger *slog.Logger
}

// NewHandler creates a query handler.
func NewHandler(s store.Store, logger *slog.Logger) *Handler {
	return &Handler{store: s, logger: logger}
}

// ParseFilter reads the three required parameters. Missing or non-integer
// values yield an ErrValidation-kind error.
func ParseFilter(params map[string]string) (model.EventFilter, error) {
	var f model.EventFilter

	orgID, ok := params[ParamOrgID]
	if !ok || orgID == "" {
		return f, model.Validation("parse query", fmt.Errorf("%s is required", ParamOrgID))
	}
	first, err := intParam(params, ParamFirstEvent, 64)
	if err != nil {
		return f, err
	}
	max, err := intParam(params, ParamMaxEvents, 32)
	if err != nil {
		return f, err
	}
	if max < 0 {
		return f, model.Validation("parse query", fmt.Errorf("%s must not be negative", ParamMaxEvents))
	}

	f.OrgID = orgID
	f.FirstEvent = first
	f.MaxEvents = int(max)
	return f, nil
}

func intParam(params map[string]string, name string, bits int) (int64, error) {
	raw, ok := params[name]
	if !ok {
		return 0, model.Validation("parse query", fmt.Errorf("%s is required", name))
	}
	n, err := strconv.ParseInt(raw, 10, bits)
	if err != nil {
		return 0, model.Validation("parse query", fmt.Errorf("%s: %q is not an integer", name, raw))
	}
	return n, nil
}

// Fetch returns events after filter.FirstEvent in ascending id order, at most
// filter.MaxEvents of them. The result is never nil.
func (h *Handler) Fetch(ctx context.Context, filter model.EventFilter) ([]*model.Event, error) {
	start := time.Now()
	events, err := h.store.ListEvents(ctx, filter)
	metrics.QueryLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []*model.Event{}
	}
	metrics.EventsServed.WithLabelValues(filter.OrgID).Add(float64(len(events)))
	h.logger.Debug("events fetched", "org_id", filter.OrgID, "first_event", filter.FirstEvent, "count", len(events))
	return events, nil
}

// Headers are set on every successful response.
func Headers() map[string]string {
	return map[string]string{"Access-Control-Allow-Origin": "*"}
}

// Handle is the API Gateway entry point. Parameter and store errors are
// returned as invocation errors.
func (h *Handler) Handle(ctx context.Context, req lambdaevents.APIGatewayProxyRequest) (lambdaevents.APIGatewayProxyResponse, error) {
	filter, err := ParseFilter(req.QueryStringParameters)
	if err != nil {
		return lambdaevents.APIGatewayProxyResponse{}, err
	}
	events, err := h.Fetch(ctx, filter)
	if err != nil {
		return lambdaevents.APIGatewayProxyResponse{}, err
	}
	body, err := json.Marshal(events)
	if err != nil {
		return lambdaevents.APIGatewayProxyResponse{}, fmt.Errorf("encode events: %w", err)
	}
	return lambdaevents.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    Headers(),
		Body:       string(body),
	}, nil
}
