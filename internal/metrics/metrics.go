package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jeetbot"

// Dispatch pipeline metrics
var (
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Total number of orders submitted to the panel",
		},
		[]string{"service", "status"},
	)

	AdmissionDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admission_denials_total",
			Help:      "Total number of requests rejected by the admission chain",
		},
		[]string{"command", "reason"},
	)

	PanelRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "panel_request_duration_seconds",
			Help:      "Panel API request latency distribution",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20},
		},
	)
)
