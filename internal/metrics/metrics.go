// Package metrics exposes Prometheus instrumentation for ingest and query.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsInserted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listener_records_inserted_total",
		Help: "Queue records written to an organization event table",
	}, []string{"org"})

	RecordsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "listener_records_skipped_total",
		Help: "Queue records skipped for a missing id, body or OrgId attribute",
	})

	DeadLettersDrained = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "listener_deadletters_drained_total",
		Help: "Messages logged and deleted from the dead-letter queue",
	})

	EventsServed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listener_events_served_total",
		Help: "Events returned by the query handler",
	}, []string{"org"})

	QueryLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "listener_query_latency_seconds",
		Help:    "Time to read one page of events",
		Buckets: prometheus.DefBuckets,
	})
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RecordsInserted, RecordsSkipped, DeadLettersDrained, EventsServed, QueryLatency)
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
