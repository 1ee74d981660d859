package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdash_uploads_total",
			Help: "Total dataset uploads by outcome",
		},
		[]string{"status"},
	)

	RowsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherdash_rows_ingested_total",
			Help: "Total observation rows parsed from accepted uploads",
		},
	)

	DatasetFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdash_dataset_fetches_total",
			Help: "Startup dataset fetches by scheme and outcome",
		},
		[]string{"scheme", "status"},
	)

	ChartRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdash_chart_renders_total",
			Help: "Total chart renders by chart and outcome",
		},
		[]string{"chart", "status"},
	)

	ChartLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherdash_chart_render_seconds",
			Help:    "Chart render latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chart"},
	)

	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdash_downloads_total",
			Help: "Total filtered data downloads by format",
		},
		[]string{"format"},
	)
)
