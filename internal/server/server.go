// Package server exposes the query handler over HTTP and a gRPC health
// service for a long-running listener process.
package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/alfredjeanlab/listener/internal/activity"
	"github.com/alfredjeanlab/listener/internal/query"
	"github.com/alfredjeanlab/listener/internal/store"
)

// ServiceName is the gRPC health service name reported for the listener.
const ServiceName = "listener.v1.Listener"

// Server holds the handlers shared by the HTTP and gRPC surfaces.
type Server struct {
	store    store.Store
	query    *query.Handler
	health   *health.Server
	activity *activity.Tracker
	logger   *slog.Logger
}

// New returns a server reading events from s.
func New(s store.Store, logger *slog.Logger) *Server {
	return &Server{
		store:    s,
		query:    query.NewHandler(s, logger),
		health:   health.NewServer(),
		activity: activity.New(),
		logger:   logger,
	}
}

// Activity returns the tracker served by GET /v1/orgs. Wire it into the
// ingest handler so consumed messages show up there.
func (s *Server) Activity() *activity.Tracker {
	return s.activity
}

// CheckHealth pings the store and updates the gRPC serving status to match.
func (s *Server) CheckHealth(ctx context.Context) error {
	err := s.store.Ping(ctx)
	st := healthpb.HealthCheckResponse_SERVING
	if err != nil {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	return err
}

// WatchHealth re-checks the store every interval until ctx is done.
func (s *Server) WatchHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := s.CheckHealth(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("store health check failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Shutdown marks every service NOT_SERVING so health watchers see the drain.
func (s *Server) Shutdown() {
	s.health.Shutdown()
}
