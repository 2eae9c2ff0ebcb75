package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// contractSubmissions counts submissions by category and outcome
	// (accepted, partial, duplicate, invalid, error)
	contractSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assurance",
		Subsystem: "ledger",
		Name:      "contract_submissions_total",
		Help:      "Contract submissions by category and outcome",
	}, []string{"category", "outcome"})

	// secondaryWriteFailures counts detail or credit writes that failed after the ledger write
	secondaryWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assurance",
		Subsystem: "ledger",
		Name:      "secondary_write_failures_total",
		Help:      "Best-effort writes that failed after the ledger entry was stored",
	}, []string{"step"})

	submitLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "assurance",
		Subsystem: "ledger",
		Name:      "submit_duration_seconds",
		Help:      "Contract submission latency in seconds",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"category"})

	creditPayments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assurance",
		Subsystem: "credit",
		Name:      "payments_total",
		Help:      "Credit payments by resulting status or failure reason",
	}, []string{"outcome"})

	creditsMarkedOverdue = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "assurance",
		Subsystem: "credit",
		Name:      "marked_overdue_total",
		Help:      "Credits moved to overdue by the scheduled job",
	})
)
