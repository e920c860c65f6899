// Package metrics defines and registers all custom Prometheus metrics for the
// TransportConnect API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "transportconnect"

// ── Workflow metrics ──────────────────────────────────────────────────────────

// DemandesCreatedTotal counts demandes submitted by shippers.
var DemandesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "demandes_created_total",
		Help:      "Total number of demandes created.",
	},
)

// TransitionsTotal counts applied status transitions.
// Labels:
//   - from: status before the transition (e.g. "en_attente")
//   - to:   status after the transition (e.g. "acceptee")
var TransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "demande_transitions_total",
		Help:      "Total number of demande status transitions applied.",
	},
	[]string{"from", "to"},
)

// TransitionRejectionsTotal counts transitions refused by the guard.
// Label:
//   - reason: "illegal_transition", "forbidden" or "other"
var TransitionRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "demande_transition_rejections_total",
		Help:      "Total number of status transitions rejected, by reason.",
	},
	[]string{"reason"},
)

// TransitionConflictsTotal counts version conflicts hit while persisting a transition.
var TransitionConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "demande_transition_conflicts_total",
		Help:      "Total number of optimistic concurrency conflicts on status transitions.",
	},
)

// ── Position metrics ──────────────────────────────────────────────────────────

// PositionsProcessedTotal counts position pings persisted.
var PositionsProcessedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "positions_processed_total",
		Help:      "Total number of driver position pings successfully processed.",
	},
)

// PositionErrorsTotal counts position pings that failed processing.
// Label:
//   - reason: "demande_not_found", "forbidden", "not_in_progress", "update_failed"
var PositionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "position_errors_total",
		Help:      "Total number of position pings that failed processing.",
	},
	[]string{"reason"},
)

// PositionDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new ping, processed)
var PositionDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "position_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// PositionQueueDepth tracks the number of pings waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var PositionQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "position_queue_depth",
		Help:      "Current number of position pings pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// PositionPingsDroppedTotal counts pings refused because their worker queue was full.
var PositionPingsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "position_pings_dropped_total",
		Help:      "Position pings rejected with 503 because the worker queue was full.",
	},
)

// PositionProcessingDuration measures how long a single ping takes to process.
var PositionProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "position_processing_duration_seconds",
		Help:      "Duration of position processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Notification and auth metrics ─────────────────────────────────────────────

// NotificationsSentTotal counts stored in-app notifications.
// Label:
//   - type: notification type (e.g. "demande_acceptee")
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of in-app notifications stored, by type.",
	},
	[]string{"type"},
)

// LoginRateLimitedTotal counts login attempts rejected by the rate limiter.
var LoginRateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_rate_limited_total",
		Help:      "Total number of login attempts rejected by the rate limiter.",
	},
)

// AnnoncesExpiredTotal counts annonces deactivated by the expiry job.
var AnnoncesExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "annonces_expired_total",
		Help:      "Total number of annonces deactivated after their departure date.",
	},
)
