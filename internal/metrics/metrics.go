// Package metrics defines the prometheus instruments exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsTotal counts created transactions by kind.
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tally",
		Name:      "transactions_total",
		Help:      "Number of ledger transactions created, by kind.",
	}, []string{"kind"})

	// UndosTotal counts reversed transactions.
	UndosTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tally",
		Name:      "undos_total",
		Help:      "Number of transactions reversed.",
	})

	// LimitViolationsTotal counts rejected operations by violation kind.
	LimitViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tally",
		Name:      "limit_violations_total",
		Help:      "Number of operations rejected by the balance limit policy.",
	}, []string{"kind"})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tally",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and path pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
)
