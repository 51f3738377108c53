// Package metrics defines and registers all custom Prometheus metrics for
// the backdrop studio API. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backdrop"

// ── Generation metrics ────────────────────────────────────────────────────────

// GenerationsSubmittedTotal counts jobs accepted by admission.
// Label:
//   - source: "style" (preset only), "custom" (prompt only), or "combined"
var GenerationsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_submitted_total",
		Help:      "Total number of generation jobs accepted for processing.",
	},
	[]string{"source"},
)

// GenerationsFinishedTotal counts jobs that reached a terminal state.
// Labels:
//   - status: "completed" or "failed"
//   - stage: the stage that failed, "settlement", or "none" on success
var GenerationsFinishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_finished_total",
		Help:      "Total number of generation jobs that reached a terminal state.",
	},
	[]string{"status", "stage"},
)

// StageDuration measures how long each pipeline stage takes.
// Label:
//   - stage: "remove_background", "generate_background", or "composite"
var StageDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_stage_duration_seconds",
		Help:      "Duration of individual pipeline stages.",
		Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	},
	[]string{"stage"},
)

// PipelineQueueDepth tracks the jobs waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var PipelineQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pipeline_queue_depth",
		Help:      "Current number of jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Credit metrics ────────────────────────────────────────────────────────────

// SettlementsTotal counts settlement attempts by outcome.
// Label:
//   - result: "settled", "insufficient_credits", or "duplicate"
var SettlementsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credit_settlements_total",
		Help:      "Total number of settlement attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// CreditsMovedTotal sums the absolute credit amounts written to the ledger.
// Label:
//   - kind: "trial", "generation", "purchase", "refund", or "expiry"
var CreditsMovedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_moved_total",
		Help:      "Total credits moved through the ledger, by transaction kind.",
	},
	[]string{"kind"},
)
