// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	RepairAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_build_repair_attempts_total",
			Help: "Platform submissions made by the resource mutator",
		},
		[]string{"kind", "outcome"},
	)

	Builds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_build_builds_total",
			Help: "Bot locale builds by outcome",
		},
		[]string{"outcome"},
	)

	FailureReasons = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_build_failure_reasons_total",
			Help: "Build failure reasons processed by the fixer, by resource type",
		},
		[]string{"resource_type"},
	)

	BuildWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_build_wait_seconds",
			Help:    "Time spent polling the platform for builds and exports",
			Buckets: prometheus.ExponentialBuckets(5, 2, 8),
		},
		[]string{"phase"},
	)
)

// Repair outcome labels.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeFatal     = "fatal"
	OutcomeExhausted = "exhausted"
	OutcomeFailed    = "failed"
	OutcomeBuilt     = "built"
)
