// Package metrics defines the Prometheus metrics exposed on /metrics.
//
// Metrics register with the default registry when the package is loaded.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "flowtrack"

// TasksCreatedTotal counts created tasks.
// Label:
//   - assigned: "true" when the task was created with an assignee
var TasksCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created.",
	},
	[]string{"assigned"},
)

// TaskStatusTransitionsTotal counts applied status changes.
// Labels:
//   - from, to: the previous and new status
//   - role: the role of the caller that applied the change
var TaskStatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_status_transitions_total",
		Help:      "Total number of task status changes, by edge and caller role.",
	},
	[]string{"from", "to", "role"},
)

// TaskTransitionsRejectedTotal counts status changes refused by the workflow.
var TaskTransitionsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_transitions_rejected_total",
		Help:      "Total number of status changes rejected by the transition table.",
	},
	[]string{"from", "to"},
)

// TaskAssignmentsTotal counts assignee changes.
var TaskAssignmentsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_assignments_total",
		Help:      "Total number of task assignments.",
	},
)

// AuthLoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "rate_limited"
var AuthLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// HTTPRequestDuration measures request latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginRateLimited        = "rate_limited"
)
