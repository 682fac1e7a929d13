// Package metrics defines and registers all custom Prometheus metrics for the
// taskdesk service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskdesk"

// ── Backend client metrics ───────────────────────────────────────────────────

// BackendRequestsTotal counts calls to the REST backend.
// Labels:
//   - endpoint: route template (e.g. "/tasks/{id}/")
//   - outcome: "ok", "http_4xx", "http_5xx" or "network"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of backend API calls, by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

// BackendRequestDuration measures backend round-trip time.
// Label:
//   - endpoint: route template
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend API calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// ── Task sync metrics ────────────────────────────────────────────────────────

// TaskSyncTotal counts background reconciliation attempts.
// Label:
//   - result: "synced", "failed", "stale" or "dropped"
var TaskSyncTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_sync_total",
		Help:      "Total number of board task sync attempts, by result.",
	},
	[]string{"result"},
)

// SyncQueueDepth tracks jobs waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var SyncQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sync_queue_depth",
		Help:      "Current number of sync jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// SyncDuration measures one sync job from dequeue to persistence.
var SyncDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "task_sync_duration_seconds",
		Help:      "Duration of board task sync jobs.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Session and guard metrics ────────────────────────────────────────────────

// SessionEventsTotal counts session lifecycle events.
// Label:
//   - event: "login", "signup", "logout", "refresh", "refresh_failed"
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session lifecycle events.",
	},
	[]string{"event"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - section: required role ("admin", "staff", "sales")
//   - result: "allowed", "login" or "home"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by section and result.",
	},
	[]string{"section", "result"},
)
