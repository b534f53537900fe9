// Package metrics defines and registers all custom Prometheus metrics for the
// client portal. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry at package init via
// promauto; RegisterSessionGauge wires the live-session gauge at startup.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ──────────────────────────────────────────────────────────

// SessionsOpenedTotal counts portal sessions handed out by POST /v1/sessions.
// Label:
//   - outcome: "created" (new or restored id) or "reused" (already live)
var SessionsOpenedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_opened_total",
		Help:      "Total number of portal session open requests, by outcome.",
	},
	[]string{"outcome"},
)

// AuthAttemptsTotal counts sign-in and sign-up attempts.
// Labels:
//   - method: "password", "signup" or "federated"
//   - result: "ok" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts.",
	},
	[]string{"method", "result"},
)

// ── Editor metrics ───────────────────────────────────────────────────────────

// EditorCommitsTotal counts editor saves.
// Label:
//   - result: "ok", "busy" or "error"
var EditorCommitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "editor_commits_total",
		Help:      "Total number of client document commits.",
	},
	[]string{"result"},
)

// EditorCommitDuration measures the document store round trip of a commit.
var EditorCommitDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "editor_commit_duration_seconds",
		Help:      "Duration of client document commits.",
		Buckets:   prometheus.DefBuckets,
	},
)

// EditorUploadsTotal counts file uploads into the editor.
// Label:
//   - result: "ok" or "error"
var EditorUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "editor_uploads_total",
		Help:      "Total number of editor file uploads.",
	},
	[]string{"result"},
)

// ── Contact metrics ──────────────────────────────────────────────────────────

// ContactRequestsTotal counts accepted contact requests.
// Label:
//   - category: the request category (e.g. "Design Revision")
var ContactRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_requests_total",
		Help:      "Total number of contact requests accepted.",
	},
	[]string{"category"},
)

// ContactNotificationsTotal counts agency notification deliveries.
// Label:
//   - result: "ok" or "error"
var ContactNotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_notifications_total",
		Help:      "Total number of contact notification deliveries.",
	},
	[]string{"result"},
)

// RegisterSessionGauge exposes the number of live portal sessions.
func RegisterSessionGauge(live func() int) prometheus.GaugeFunc {
	return promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_live",
			Help:      "Current number of live portal sessions.",
		},
		func() float64 { return float64(live()) },
	)
}

// Result maps an error to the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
