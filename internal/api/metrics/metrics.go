// Package metrics defines and registers all custom Prometheus metrics for the
// profile service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "profile"

// ── Authentication ────────────────────────────────────────────────────────────

// AuthOutcomesTotal counts identity resolution results.
// Label:
//   - result: "missing_credential", "invalid_credential", "user" or "admin"
var AuthOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_outcomes_total",
		Help:      "Total number of requests by authentication outcome.",
	},
	[]string{"result"},
)

// ImpersonationsTotal counts admin requests acting on another user id.
var ImpersonationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "impersonations_total",
		Help:      "Total number of admin requests made on behalf of another user.",
	},
)

// RateLimitRejectedTotal counts requests rejected by the per-caller limiter.
var RateLimitRejectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejected_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)

// ── Profile store ─────────────────────────────────────────────────────────────

// ProfileOperationsTotal counts profile field operations.
// Labels:
//   - operation: "get" or "set"
//   - result: "ok", "not_found", "rejected" or "error"
var ProfileOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of profile field operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Audit queue ───────────────────────────────────────────────────────────────

// AuditQueueDepth tracks events waiting in each audit worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsDroppedTotal counts audit events that were never queued.
// Label:
//   - reason: "queue_full" or "stopped"
var AuditEventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped before persistence.",
	},
	[]string{"reason"},
)

// AuditEventsFailedTotal counts audit events whose persistence failed.
var AuditEventsFailedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_failed_total",
		Help:      "Total number of audit events that failed to persist.",
	},
)
