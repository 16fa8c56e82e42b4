package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/alfredjeanlab/listener/internal/metrics"
	"github.com/alfredjeanlab/listener/internal/model"
	"github.com/alfredjeanlab/listener/internal/query"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests other than health and metrics must
// include a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/events", s.handleListEvents)
	mux.HandleFunc("GET /v1/orgs", s.handleListOrgs)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	return LoggingMiddleware(s.logger, AuthMiddleware(authToken, mux))
}

// handleListEvents handles GET /v1/events?orgId=&firstEvent=&maxEventsPerCall=.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := query.ParseFilter(flatten(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.query.Fetch(r.Context(), filter)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrValidation) {
			status = http.StatusBadRequest
		}
		s.logger.Error("list events failed", "org_id", filter.OrgID, "error", err)
		writeError(w, status, err.Error())
		return
	}

	body, err := json.Marshal(events)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode events")
		return
	}
	for k, v := range query.Headers() {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleListOrgs handles GET /v1/orgs?within=<duration>.
func (s *Server) handleListOrgs(w http.ResponseWriter, r *http.Request) {
	var within time.Duration
	if v := r.URL.Query().Get("within"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			writeError(w, http.StatusBadRequest, "invalid within duration")
			return
		}
		within = d
	}
	writeJSON(w, http.StatusOK, s.activity.Roster(within))
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.CheckHealth(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// flatten keeps the first value of each query parameter.
func flatten(q url.Values) map[string]string {
	params := make(map[string]string, len(q))
	for k, v := range q {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
