// Package metrics holds the Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts API requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgscout_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes API request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imgscout_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ScansTotal counts scan outcomes by fetch mode.
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgscout_scans_total",
			Help: "Total number of scan attempts.",
		},
		[]string{"mode", "status"},
	)

	// ScanDuration observes end-to-end scan duration.
	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "imgscout_scan_duration_seconds",
			Help:    "Duration of scan operations.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		},
	)

	// ProbesTotal counts size-probe outcomes.
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgscout_probes_total",
			Help: "Total number of image size probes.",
		},
		[]string{"outcome"}, // "sized" or "unknown"
	)
)
