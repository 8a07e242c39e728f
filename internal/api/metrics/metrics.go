// Package metrics defines and registers the custom Prometheus metrics of the
// task tracker. It is the single source of truth for metric names, labels and
// help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskdesk"

// ── Task metrics ──────────────────────────────────────────────────────────────

// TaskMutationsTotal counts successful task list changes.
// Label:
//   - operation: "create", "update", "delete", "move_up" or "move_down"
var TaskMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_mutations_total",
		Help:      "Total number of task list mutations, by operation.",
	},
	[]string{"operation"},
)

// TaskMoveNoopsTotal counts reorder requests that changed nothing.
// Label:
//   - reason: "boundary" (already first/last) or "missing_partner" (gap in ordering)
var TaskMoveNoopsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_move_noops_total",
		Help:      "Total number of move requests that left the ordering unchanged.",
	},
	[]string{"reason"},
)

// TaskRenumberedTotal counts display orders rewritten after deletions.
var TaskRenumberedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_renumbered_total",
		Help:      "Total number of display_order values rewritten to close gaps.",
	},
)

// ── Generation metrics ────────────────────────────────────────────────────────

// GenerationRequestsTotal counts calls to the text-generation service.
// Labels:
//   - kind: "report" or "chat"
//   - result: "ok" or "error"
var GenerationRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generation_requests_total",
		Help:      "Total number of text-generation calls, by kind and result.",
	},
	[]string{"kind", "result"},
)

// GenerationDuration measures the latency of text-generation calls.
var GenerationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Duration of text-generation calls.",
		Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 80},
	},
	[]string{"kind"},
)

// MessagesStoredTotal counts chat messages appended to transcripts.
// Label:
//   - role: "user" or "assistant"
var MessagesStoredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_stored_total",
		Help:      "Total number of chat messages stored, by role.",
	},
	[]string{"role"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// UsersRegisteredTotal counts created accounts.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of registered users.",
	},
)

// LoginsTotal counts authentication attempts.
// Label:
//   - result: "ok" or "failed"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
