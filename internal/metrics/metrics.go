package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// View ingestion
	viewEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_view_events_total",
			Help: "View events by entity kind and outcome (counted, duplicate, dropped)",
		},
		[]string{"kind", "outcome"},
	)

	ingestQueueRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engagement_ingest_queue_rejected_total",
			Help: "View batches dropped because the ingest queue was full",
		},
	)

	// Reactions
	reactionTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_reaction_toggles_total",
			Help: "Reaction toggles by type and resulting state",
		},
		[]string{"type", "state"},
	)

	aggregateCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_reaction_aggregate_cache_total",
			Help: "Reaction aggregate cache lookups by result",
		},
		[]string{"result"},
	)

	// Sync
	syncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_sync_runs_total",
			Help: "Sync reconciler runs by result",
		},
		[]string{"result"},
	)

	syncRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_sync_rows_total",
			Help: "Durable view rows updated by the reconciler",
		},
		[]string{"kind"},
	)

	syncErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engagement_sync_entity_errors_total",
			Help: "Per-entity failures during sync (deltas restored to the hot store)",
		},
	)

	syncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engagement_sync_duration_seconds",
			Help:    "Sync reconciler run duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 120},
		},
	)

	// Circuit breaker
	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engagement_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func RecordViewEvent(kind, outcome string) {
	viewEventsTotal.WithLabelValues(kind, outcome).Inc()
}

func RecordIngestRejected() {
	ingestQueueRejected.Inc()
}

func RecordReactionToggle(reactionType string, active bool) {
	state := "off"
	if active {
		state = "on"
	}
	reactionTogglesTotal.WithLabelValues(reactionType, state).Inc()
}

func RecordAggregateCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	aggregateCacheTotal.WithLabelValues(result).Inc()
}

// RecordSyncRun records a finished reconciler pass.
func RecordSyncRun(lists, items, errs int, d time.Duration) {
	result := "ok"
	if errs > 0 {
		result = "partial"
	}
	syncRunsTotal.WithLabelValues(result).Inc()
	syncRowsTotal.WithLabelValues("list").Add(float64(lists))
	syncRowsTotal.WithLabelValues("item").Add(float64(items))
	syncErrorsTotal.Add(float64(errs))
	syncDuration.Observe(d.Seconds())
}

func RecordSyncFailed() {
	syncRunsTotal.WithLabelValues("failed").Inc()
}

func SetBreakerState(name string, state float64) {
	breakerState.WithLabelValues(name).Set(state)
}

// MetricsHandler returns the Prometheus metrics handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
