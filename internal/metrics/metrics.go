// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billing_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BillsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_bills_created_total",
			Help: "Bills committed, split by GST and non-GST.",
		},
		[]string{"gst"},
	)

	BillFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_bill_failures_total",
			Help: "Rejected or failed bill attempts by reason.",
		},
		[]string{"reason"},
	)

	BillGrandTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_bill_grand_total_rupees",
			Help: "Sum of grand totals of committed bills.",
		},
	)

	InvoiceNumberCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_invoice_number_collisions_total",
			Help: "Invoice numbers that were already taken at insert time.",
		},
	)

	StockMovements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_stock_movements_total",
			Help: "Stock history rows written by change type.",
		},
		[]string{"change_type"},
	)

	IdempotentReplays = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_idempotent_replays_total",
			Help: "Requests answered from the idempotency cache.",
		},
	)
)
