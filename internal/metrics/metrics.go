// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BillParses counts bill scans by outcome (success, no_text, no_amount, error).
	BillParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynion_bill_parse_total",
		Help: "Bills run through OCR extraction, by outcome.",
	}, []string{"outcome"})

	// SettlementsReconciled counts Pending records created or deleted by reconciliation.
	SettlementsReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynion_settlements_reconciled_total",
		Help: "Pending settlements created or deleted while reconciling a group.",
	}, []string{"action"})

	// SettlementTransitions counts lifecycle transitions (request, confirm, reject).
	SettlementTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynion_settlement_transitions_total",
		Help: "Settlement state transitions.",
	}, []string{"transition"})

	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynion_rpc_requests_total",
		Help: "Connect RPCs handled, by procedure and result code.",
	}, []string{"procedure", "code"})

	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paynion_rpc_duration_seconds",
		Help:    "Connect RPC latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"procedure"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
