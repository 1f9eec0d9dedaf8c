// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "splitledger"

var (
	// RPCRequests counts handled RPCs by procedure and Connect code.
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rpc_requests_total",
		Help:      "Handled RPCs by procedure and result code.",
	}, []string{"procedure", "code"})

	// RPCDuration observes handler latency by procedure.
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "RPC handler latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure"})

	// ExpensesCreated counts recorded expenses by kind.
	ExpensesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expenses_created_total",
		Help:      "Expenses recorded, by kind.",
	}, []string{"kind"})

	// AllocationsSettled counts allocations that transitioned to settled.
	AllocationsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "allocations_settled_total",
		Help:      "Allocations that transitioned to settled.",
	})

	// CacheLookups counts stats cache lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_cache_lookups_total",
		Help:      "Stats cache lookups by result.",
	}, []string{"result"})

	// EventsPublished counts ledger events by type and outcome (ok, error).
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Ledger events published, by type and outcome.",
	}, []string{"type", "outcome"})
)
