package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result sources for DailyResults.
const (
	SourceCache    = "cache"
	SourceComputed = "computed"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talkspace_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "talkspace_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5, 30},
		},
		[]string{"method", "path"},
	)

	// Pipeline metrics
	DailyResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talkspace_daily_results_total",
			Help: "Daily results served, by where they came from",
		},
		[]string{"source"}, // "cache" or "computed"
	)

	TransformDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "talkspace_transform_duration_seconds",
			Help:    "Time to read messages and compute engagement rows",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
		},
	)

	RowsEmitted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "talkspace_rows_emitted",
			Help: "Rows in the most recently computed result",
		},
	)
)
